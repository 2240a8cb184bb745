package reconcile

import (
	"context"
	"time"

	"pricepulse/internal/platform"
	"pricepulse/internal/scrape"
	"pricepulse/internal/store"
	"pricepulse/logger"
	"pricepulse/pkg/errors"
)

// ComparisonReconciler refreshes a product's cross-platform comparison set
type ComparisonReconciler struct {
	store     store.Store
	searcher  CandidateSearcher
	threshold int
	log       *logger.Logger
}

// NewComparisonReconciler wires the comparison cycle at the given match
// threshold. Pass scrape.DefaultMatchThreshold unless tuning.
func NewComparisonReconciler(st store.Store, searcher CandidateSearcher, threshold int) *ComparisonReconciler {
	return &ComparisonReconciler{
		store:     st,
		searcher:  searcher,
		threshold: threshold,
		log:       logger.ForComponent("comparison-reconciler"),
	}
}

// UpdateComparison searches competing platforms for the product and replaces
// its stored comparison set with the per-platform best matches. An empty
// result set is a legitimate outcome and still replaces the old set.
func (r *ComparisonReconciler) UpdateComparison(ctx context.Context, productID string) error {
	product, err := r.store.Product(ctx, productID)
	if errors.IsNotFound(err) {
		r.log.Warn().
			Str("product_id", productID).
			Msg("Skipping comparison for product no longer tracked")
		return nil
	}
	if err != nil {
		return err
	}

	query := scrape.BuildQuery(product.Name, product.Brand)
	if query == "" {
		r.log.Warn().
			Str("product_id", productID).
			Msg("Product name yields an empty search query, skipping comparison")
		return nil
	}

	candidates := r.searcher.Search(ctx, query, platform.Platform(product.Platform))

	now := time.Now().UTC()
	var results []store.ComparisonResult
	byPlatform := groupByPlatform(candidates)
	for pf, group := range byPlatform {
		match, ok := scrape.BestMatch(query, group, r.threshold)
		if !ok {
			r.log.Debug().
				Str("product_id", productID).
				Str("platform", pf).
				Str("query", query).
				Msg("No candidate met the match threshold")
			continue
		}
		results = append(results, store.ComparisonResult{
			ProductID:   productID,
			Platform:    pf,
			FoundName:   match.Name,
			FoundPrice:  match.Price,
			FoundURL:    match.URL,
			MatchScore:  match.Score,
			LastChecked: now,
		})
	}

	if err := r.store.ReplaceComparisons(ctx, productID, results); err != nil {
		return err
	}

	r.log.Info().
		Str("product_id", productID).
		Str("query", query).
		Int("matches", len(results)).
		Msg("Replaced comparison set")
	return nil
}

// groupByPlatform partitions candidates so each competing platform gets its
// own best-match selection
func groupByPlatform(candidates []scrape.Candidate) map[string][]scrape.Candidate {
	groups := make(map[string][]scrape.Candidate)
	for _, c := range candidates {
		key := c.Platform.String()
		groups[key] = append(groups[key], c)
	}
	return groups
}
