package scrape

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"pricepulse/pkg/errors"
)

// Currency markers stripped before the numeric scan. The mis-encoded rupee
// glyph shows up when upstream pages declare the wrong charset.
var currencyMarkers = []string{
	"₹", "â‚¹", "Rs.", "Rs", "INR", "$", "€", "£", "&nbsp;",
}

var numberPattern = regexp.MustCompile(`[0-9][0-9,]*\.?[0-9]*`)

// NormalizePrice parses locale-formatted currency text into an exact integer
// minor-unit amount: "₹1,499.00" becomes 149900. The result is lossless for
// two-decimal amounts; callers never re-parse it as currency text.
func NormalizePrice(text string) (int64, error) {
	cleaned := text
	for _, marker := range currencyMarkers {
		cleaned = strings.ReplaceAll(cleaned, marker, "")
	}
	cleaned = strings.TrimSpace(cleaned)

	match := numberPattern.FindString(cleaned)
	if match == "" {
		return 0, errors.NewPriceParse("", text)
	}

	match = strings.ReplaceAll(match, ",", "")
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, errors.NewPriceParse("", text)
	}

	return int64(math.Round(value * 100)), nil
}
