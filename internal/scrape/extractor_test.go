package scrape

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pricepulse/internal/platform"
	"pricepulse/pkg/errors"
	"pricepulse/services/cache"
)

const amazonProductHTML = `<html><body>
	<span id="productTitle"> Acme Widget Pro X5000 (Black) </span>
	<span class="a-price-whole">1,499</span>
	<img id="landingImage" src="https://img.example.com/x500.jpg">
	<a id="bylineInfo">Visit the Acme Store</a>
</body></html>`

// Price only present in a fallback selector, no image, no byline
const amazonFallbackHTML = `<html><body>
	<span id="productTitle">Acme Widget Lite</span>
	<span class="a-price"><span class="a-offscreen">₹899.00</span></span>
</body></html>`

const amazonNoPriceHTML = `<html><body>
	<span id="productTitle">Acme Widget Lite</span>
</body></html>`

func TestExtract(t *testing.T) {
	nav := newFakeNavigator()
	url := "https://www.amazon.in/dp/B0X500"
	nav.pages[url] = amazonProductHTML

	extractor := NewExtractor(nav, nil, "")
	info, err := extractor.Extract(context.Background(), url)
	assert.NoError(t, err)

	assert.Equal(t, platform.Amazon, info.Platform)
	assert.Equal(t, url, info.URL)
	assert.Equal(t, "Acme Widget Pro X5000 (Black)", info.Name)
	assert.Equal(t, int64(149900), info.Price)
	assert.Equal(t, "https://img.example.com/x500.jpg", info.ImageURL)
	assert.Equal(t, "Acme", info.Brand)
	assert.Equal(t, "X5000", info.Model)
}

func TestExtractSelectorFallback(t *testing.T) {
	nav := newFakeNavigator()
	url := "https://www.amazon.in/dp/B0LITE"
	nav.pages[url] = amazonFallbackHTML

	extractor := NewExtractor(nav, nil, "")
	info, err := extractor.Extract(context.Background(), url)
	assert.NoError(t, err)

	// Primary price selector missed; the offscreen fallback was used
	assert.Equal(t, int64(89900), info.Price)

	// Optional fields degrade to empty, never to an error
	assert.Empty(t, info.ImageURL)
	assert.Empty(t, info.Brand)
}

func TestExtractMissingRequiredField(t *testing.T) {
	nav := newFakeNavigator()
	url := "https://www.amazon.in/dp/B0BARE"
	nav.pages[url] = amazonNoPriceHTML

	extractor := NewExtractor(nav, nil, "")
	_, err := extractor.Extract(context.Background(), url)
	assert.Error(t, err)
	assert.Equal(t, errors.ErrorTypeMissingField, errors.TypeOf(err))

	var te *errors.TrackerError
	assert.ErrorAs(t, err, &te)
	assert.Equal(t, "price", te.Field)
}

func TestExtractFailureCapturesSnapshot(t *testing.T) {
	nav := newFakeNavigator()
	url := "https://www.amazon.in/dp/B0BARE"
	nav.pages[url] = amazonNoPriceHTML

	dir := t.TempDir()
	extractor := NewExtractor(nav, nil, dir)

	_, err := extractor.Extract(context.Background(), url)
	assert.Error(t, err)

	// The snapshot is written off the error path, so wait for it
	assert.Eventually(t, func() bool {
		entries, readErr := os.ReadDir(dir)
		return readErr == nil && len(entries) == 1
	}, time.Second, 10*time.Millisecond)

	entries, readErr := os.ReadDir(dir)
	assert.NoError(t, readErr)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "error_amazon_"))
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".html"))

	content, readErr := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	assert.NoError(t, readErr)
	assert.Equal(t, amazonNoPriceHTML, string(content))
}

func TestExtractUnsupportedPlatform(t *testing.T) {
	extractor := NewExtractor(newFakeNavigator(), nil, "")
	_, err := extractor.Extract(context.Background(), "https://www.ebay.com/itm/1")
	assert.Equal(t, errors.ErrorTypeUnsupportedPlatform, errors.TypeOf(err))
}

func TestExtractBlockWindow(t *testing.T) {
	nav := newFakeNavigator()
	url := "https://www.amazon.in/dp/B0X500"
	nav.pages[url] = amazonProductHTML

	blocks := cache.NewBlockList(newMemoryCache(), time.Minute)
	extractor := NewExtractor(nav, blocks, "")

	// A timeout opens the block window
	nav.failWith = errors.NewTimeout("Amazon", "navigation", nil)
	_, err := extractor.Extract(context.Background(), url)
	assert.Equal(t, errors.ErrorTypeTimeout, errors.TypeOf(err))

	// The next attempt short-circuits without navigating again
	nav.failWith = nil
	before := len(nav.opened)
	_, err = extractor.Extract(context.Background(), url)
	assert.Equal(t, errors.ErrorTypeUpstreamBlocked, errors.TypeOf(err))
	assert.Equal(t, before, len(nav.opened))
}
