package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pricepulse/pkg/errors"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		url      string
		expected Platform
	}{
		{"https://www.amazon.in/dp/B0ABC12345", Amazon},
		{"https://amazon.com/gp/product/B0XYZ", Amazon},
		{"https://www.flipkart.com/widget-pro/p/itm123", Flipkart},
		{"https://www.meesho.com/widget/p/456", Meesho},
	}

	for _, tt := range tests {
		pf, err := Detect(tt.url)
		assert.NoError(t, err, tt.url)
		assert.Equal(t, tt.expected, pf, tt.url)
	}
}

func TestDetectUnsupported(t *testing.T) {
	_, err := Detect("https://www.ebay.com/itm/123")
	assert.Error(t, err)
	assert.Equal(t, errors.ErrorTypeUnsupportedPlatform, errors.TypeOf(err))
}

func TestCompetitors(t *testing.T) {
	competitors := Competitors(Amazon)
	assert.Len(t, competitors, 2)
	assert.NotContains(t, competitors, Amazon)
	assert.Contains(t, competitors, Flipkart)
	assert.Contains(t, competitors, Meesho)
}

func TestSearchURL(t *testing.T) {
	profile := ProfileFor(Amazon)
	assert.Equal(t, "https://www.amazon.in/s?k=Acme+WIDGET500", profile.SearchURL("Acme WIDGET500"))
}

func TestProfilesComplete(t *testing.T) {
	for _, pf := range All() {
		profile := ProfileFor(pf)
		assert.Equal(t, pf, profile.Platform)
		assert.NotEmpty(t, profile.BaseURL, pf)
		assert.NotEmpty(t, profile.WaitSelector, pf)
		assert.NotEmpty(t, profile.Fields.Name, pf)
		assert.NotEmpty(t, profile.Fields.Price, pf)
		assert.NotEmpty(t, profile.Search.URLPrefix, pf)
		assert.NotEmpty(t, profile.Search.Card, pf)
	}
}
