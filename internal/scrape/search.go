package scrape

import (
	"context"
	"strings"

	"pricepulse/internal/browser"
	"pricepulse/internal/platform"
	"pricepulse/logger"
)

// MaxResultsPerPlatform caps how many result cards are read per search page
const MaxResultsPerPlatform = 3

// Candidate is one listing found on a competing platform's search surface
type Candidate struct {
	Platform platform.Platform
	Name     string
	Price    int64
	URL      string
}

// Searcher issues the canonical query against each competing platform's
// search surface and extracts candidate listings with the same
// fallback+normalize discipline as product-page extraction
type Searcher struct {
	nav browser.Navigator
	log *logger.Logger
}

// NewSearcher creates a searcher over the given navigation surface
func NewSearcher(nav browser.Navigator) *Searcher {
	return &Searcher{
		nav: nav,
		log: logger.ForComponent("searcher"),
	}
}

// Search runs the query on every platform except exclude. A failure on one
// platform is isolated: it is logged and contributes an empty slice, never
// aborting the other platforms.
func (s *Searcher) Search(ctx context.Context, query string, exclude platform.Platform) []Candidate {
	var candidates []Candidate
	for _, pf := range platform.Competitors(exclude) {
		results, err := s.searchPlatform(ctx, pf, query)
		if err != nil {
			s.log.WithError(err).Warn().
				Str("platform", pf.String()).
				Str("query", query).
				Msg("Cross-platform search failed")
			continue
		}
		candidates = append(candidates, results...)
	}
	return candidates
}

// searchPlatform reads the first result cards from one platform's search page.
// Cards that fail to extract are skipped, not fatal to the batch.
func (s *Searcher) searchPlatform(ctx context.Context, pf platform.Platform, query string) ([]Candidate, error) {
	profile := platform.ProfileFor(pf)

	doc, err := s.nav.Open(ctx, profile.SearchURL(query), profile.Search.Card)
	if err != nil {
		return nil, err
	}

	var results []Candidate
	for _, card := range doc.Cards(profile.Search.Card, MaxResultsPerPlatform) {
		name, ok := FirstValue(card, profile.Search.Name)
		if !ok {
			continue
		}

		priceText, ok := FirstValue(card, profile.Search.Price)
		if !ok {
			continue
		}
		price, err := NormalizePrice(priceText)
		if err != nil {
			s.log.Debug().
				Str("platform", pf.String()).
				Str("price_text", priceText).
				Msg("Skipping result card with unparseable price")
			continue
		}

		link, ok := card.Attr(profile.Search.Link.Selector, profile.Search.Link.Attr)
		if !ok {
			continue
		}

		results = append(results, Candidate{
			Platform: pf,
			Name:     name,
			Price:    price,
			URL:      resolveLink(profile.BaseURL, link),
		})
	}

	return results, nil
}

// resolveLink makes relative result links absolute against the platform base
func resolveLink(baseURL, link string) string {
	if strings.HasPrefix(link, "/") {
		return baseURL + link
	}
	return link
}
