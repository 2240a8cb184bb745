package platform

import (
	"net/url"
	"strings"

	"pricepulse/pkg/errors"
)

// Platform identifies a supported e-commerce platform
type Platform string

const (
	Amazon   Platform = "Amazon"
	Flipkart Platform = "Flipkart"
	Meesho   Platform = "Meesho"
)

// Detect resolves the platform a product URL belongs to
func Detect(rawURL string) (Platform, error) {
	switch {
	case strings.Contains(rawURL, "amazon."):
		return Amazon, nil
	case strings.Contains(rawURL, "flipkart.com"):
		return Flipkart, nil
	case strings.Contains(rawURL, "meesho.com"):
		return Meesho, nil
	}
	return "", errors.NewUnsupportedPlatform(rawURL)
}

// All returns every supported platform
func All() []Platform {
	return []Platform{Amazon, Flipkart, Meesho}
}

// Competitors returns every supported platform except the given one
func Competitors(p Platform) []Platform {
	var out []Platform
	for _, other := range All() {
		if other != p {
			out = append(out, other)
		}
	}
	return out
}

// SearchURL builds the platform's search navigation URL for a query
func (p Profile) SearchURL(query string) string {
	return p.Search.URLPrefix + url.QueryEscape(query)
}

// String returns the platform name
func (p Platform) String() string {
	return string(p)
}
