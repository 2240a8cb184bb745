package scrape

import (
	"regexp"
	"strings"
)

var (
	modelPattern    = regexp.MustCompile(`\b[A-Z0-9]{5,}\b`)
	coreTitleSplits = regexp.MustCompile(`[(|,-]`)
)

// ExtractModel finds a model-code token of at least five uppercase
// alphanumerics in a product name. Hyphenated codes like "X123-Y" count once
// the hyphen is collapsed. Returns "" when no code is present.
func ExtractModel(name string) string {
	if m := modelPattern.FindString(name); m != "" {
		return m
	}
	return modelPattern.FindString(strings.ReplaceAll(name, "-", ""))
}

// CoreTitle returns the leading segment of a product name before the first
// '(', '|', '-' or ','
func CoreTitle(name string) string {
	if loc := coreTitleSplits.FindStringIndex(name); loc != nil {
		return strings.TrimSpace(name[:loc[0]])
	}
	return strings.TrimSpace(name)
}

// BuildQuery derives the canonical search string for a product. A model code
// wins outright; otherwise the core title is used, prefixed with the brand
// unless the title already contains it.
func BuildQuery(name, brand string) string {
	brand = strings.TrimSpace(brand)

	if model := ExtractModel(name); model != "" {
		return strings.TrimSpace(brand + " " + model)
	}

	core := CoreTitle(name)
	if brand == "" || strings.Contains(strings.ToLower(core), strings.ToLower(brand)) {
		return core
	}
	return strings.TrimSpace(brand + " " + core)
}
