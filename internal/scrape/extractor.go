package scrape

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pricepulse/internal/browser"
	"pricepulse/internal/platform"
	"pricepulse/logger"
	"pricepulse/pkg/errors"
	"pricepulse/services/cache"
)

// ProductInfo is the structured record produced by extraction
type ProductInfo struct {
	Platform platform.Platform
	URL      string
	Name     string
	Price    int64
	ImageURL string
	Brand    string
	Model    string
}

// brandNoise lists boilerplate substrings stripped from brand text
var brandNoise = []string{"Visit the", "Store"}

// Extractor turns a loaded product page into a structured record by applying
// the platform's selector table with fallback
type Extractor struct {
	nav         browser.Navigator
	blocks      *cache.BlockList
	snapshotDir string
	log         *logger.Logger
}

// NewExtractor creates an extractor over the given navigation surface.
// blocks may be nil when no block-window cache is configured.
func NewExtractor(nav browser.Navigator, blocks *cache.BlockList, snapshotDir string) *Extractor {
	return &Extractor{
		nav:         nav,
		blocks:      blocks,
		snapshotDir: snapshotDir,
		log:         logger.ForComponent("extractor"),
	}
}

// Extract loads the product URL and produces its structured record. Required
// fields (name, price) fail the extraction; optional fields degrade silently.
func (e *Extractor) Extract(ctx context.Context, url string) (*ProductInfo, error) {
	pf, err := platform.Detect(url)
	if err != nil {
		return nil, err
	}

	if e.blocks != nil {
		if remaining, blocked := e.blocks.Blocked(pf.String()); blocked {
			return nil, errors.NewUpstreamBlocked(pf.String(), remaining)
		}
	}

	profile := platform.ProfileFor(pf)

	doc, err := e.nav.Open(ctx, url, profile.WaitSelector)
	if err != nil {
		e.noteUpstreamFailure(pf, err)
		return nil, err
	}

	info, err := e.extractFields(doc, profile)
	if err != nil {
		e.captureSnapshot(pf, doc)
		return nil, err
	}

	info.URL = url
	return info, nil
}

// extractFields applies the selector table to an already loaded document
func (e *Extractor) extractFields(doc browser.Element, profile platform.Profile) (*ProductInfo, error) {
	pf := profile.Platform

	name, ok := FirstValue(doc, profile.Fields.Name)
	if !ok {
		return nil, errors.NewMissingField(pf.String(), "name")
	}

	priceText, ok := FirstValue(doc, profile.Fields.Price)
	if !ok {
		return nil, errors.NewMissingField(pf.String(), "price")
	}

	price, err := NormalizePrice(priceText)
	if err != nil {
		return nil, errors.NewPriceParse(pf.String(), priceText)
	}

	imageURL, _ := FirstValue(doc, profile.Fields.Image)

	brand, _ := FirstValue(doc, profile.Fields.Brand)
	brand = cleanBrand(brand)

	return &ProductInfo{
		Platform: pf,
		Name:     name,
		Price:    price,
		ImageURL: imageURL,
		Brand:    brand,
		Model:    ExtractModel(name),
	}, nil
}

// FirstValue tries candidate locators in declared order and returns the first
// non-empty value. The boolean result is the per-attempt outcome; true error
// propagation is reserved for all candidates exhausted on a required field.
func FirstValue(el browser.Element, candidates []platform.Locator) (string, bool) {
	for _, loc := range candidates {
		var value string
		var found bool
		if loc.Attr == "" {
			value, found = el.Text(loc.Selector)
		} else {
			value, found = el.Attr(loc.Selector, loc.Attr)
		}
		if found {
			return value, true
		}
	}
	return "", false
}

// cleanBrand strips known boilerplate from brand byline text
func cleanBrand(brand string) string {
	for _, noise := range brandNoise {
		brand = strings.ReplaceAll(brand, noise, "")
	}
	return strings.TrimSpace(brand)
}

// noteUpstreamFailure opens a block window after a timeout or explicit block
// so the next scheduled scrape short-circuits instead of hammering the site
func (e *Extractor) noteUpstreamFailure(pf platform.Platform, err error) {
	if e.blocks == nil {
		return
	}
	switch errors.TypeOf(err) {
	case errors.ErrorTypeTimeout, errors.ErrorTypeUpstreamBlocked:
		e.blocks.Block(pf.String())
	}
}

// captureSnapshot writes the rendered page to a timestamp-keyed file for
// later debugging. Runs detached so error propagation is never blocked.
func (e *Extractor) captureSnapshot(pf platform.Platform, doc *browser.Document) {
	if e.snapshotDir == "" {
		return
	}

	html := doc.HTML()
	name := fmt.Sprintf("error_%s_%d.html", strings.ToLower(pf.String()), time.Now().Unix())
	path := filepath.Join(e.snapshotDir, name)
	log := logger.ForPlatform(pf.String())

	go func() {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			log.Warn().Err(err).Msg("Unable to create snapshot directory")
			return
		}
		if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Unable to write page snapshot")
			return
		}
		log.Debug().Str("path", path).Msg("Captured page snapshot")
	}()
}
