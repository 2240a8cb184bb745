package store

import (
	"context"
	"time"
)

// TriggeredAlert is an alert that crossed its threshold during a price
// update, joined with the owner's contact for delivery
type TriggeredAlert struct {
	Alert PriceAlert
	Email string
	Name  string
}

// Store is the persistence collaborator for the scrape-match-reconcile
// pipeline. Multi-row writes (ApplyPriceUpdate, ReplaceComparisons,
// CreateProduct) run in a single transaction each; a unit of work is never
// shared across concurrent callers.
type Store interface {
	// CreateProduct inserts a product together with its initial price point.
	// A duplicate tracked URL is a conflict.
	CreateProduct(ctx context.Context, product *TrackedProduct) error

	// Product loads one product by id
	Product(ctx context.Context, productID string) (*TrackedProduct, error)

	// ProductByURL loads one product by its canonical URL
	ProductByURL(ctx context.Context, url string) (*TrackedProduct, error)

	// Products lists tracked products
	Products(ctx context.Context, limit, offset int) ([]TrackedProduct, error)

	// DeleteProduct removes a product and cascades to its price points,
	// alerts and comparison results
	DeleteProduct(ctx context.Context, productID string) error

	// History returns a product's price points, newest first
	History(ctx context.Context, productID string, limit int) ([]PricePoint, error)

	// Comparisons returns a product's current comparison set
	Comparisons(ctx context.Context, productID string) ([]ComparisonResult, error)

	// EnsureUser finds or creates the user owning an alert contact
	EnsureUser(ctx context.Context, email, name string) (*User, error)

	// CreateAlert inserts an alert. A duplicate (user, product, target)
	// tuple is a conflict, not a second alert.
	CreateAlert(ctx context.Context, alert *PriceAlert) error

	// Alert loads one alert by id
	Alert(ctx context.Context, alertID string) (*PriceAlert, error)

	// AlertsForProduct lists a product's alerts
	AlertsForProduct(ctx context.Context, productID string) ([]PriceAlert, error)

	// DeleteAlert removes an alert
	DeleteAlert(ctx context.Context, alertID string) error

	// ApplyPriceUpdate records a fresh observation in one transaction:
	// update the product's current price, append a price point, and mark
	// every active untriggered alert whose target is at or above the new
	// price as triggered. Returns the newly triggered alerts with contact
	// data; delivery happens after commit.
	ApplyPriceUpdate(ctx context.Context, productID string, price int64, at time.Time) ([]TriggeredAlert, error)

	// ReplaceComparisons swaps a product's full comparison set in one
	// transaction: old rows deleted, new rows inserted. An empty slice
	// legitimately empties the set.
	ReplaceComparisons(ctx context.Context, productID string, results []ComparisonResult) error

	// PruneHistory deletes price points observed before the cutoff and
	// returns how many rows were removed. Zero is success.
	PruneHistory(ctx context.Context, cutoff time.Time) (int64, error)
}
