// Package reconcile drives the periodic scrape-match-persist cycles against
// the tracked catalog. Each reconciler owns one cycle kind and writes
// through the store only after its upstream reads have fully succeeded.
package reconcile

import (
	"context"

	"pricepulse/internal/platform"
	"pricepulse/internal/scrape"
)

// ProductExtractor produces a structured record from a live product page
type ProductExtractor interface {
	Extract(ctx context.Context, url string) (*scrape.ProductInfo, error)
}

// CandidateSearcher queries competing platforms for candidate listings
type CandidateSearcher interface {
	Search(ctx context.Context, query string, exclude platform.Platform) []scrape.Candidate
}
