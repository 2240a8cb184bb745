package reconcile

import (
	"context"
	"time"

	"pricepulse/internal/store"
	"pricepulse/logger"
	"pricepulse/pkg/errors"
	"pricepulse/services/notify"
)

// PriceReconciler refreshes one product's live price and fans triggered
// alerts out to the notifier
type PriceReconciler struct {
	store     store.Store
	extractor ProductExtractor
	notifier  notify.Notifier
	log       *logger.Logger
}

// NewPriceReconciler wires the price refresh cycle. notifier may be nil when
// no delivery channel is configured; triggered alerts are still recorded.
func NewPriceReconciler(st store.Store, extractor ProductExtractor, notifier notify.Notifier) *PriceReconciler {
	return &PriceReconciler{
		store:     st,
		extractor: extractor,
		notifier:  notifier,
		log:       logger.ForComponent("price-reconciler"),
	}
}

// UpdatePrice scrapes the product's page and records the observation. A
// product deleted between scheduling and firing is not an error. An
// extraction failure leaves the store untouched.
func (r *PriceReconciler) UpdatePrice(ctx context.Context, productID string) error {
	product, err := r.store.Product(ctx, productID)
	if errors.IsNotFound(err) {
		r.log.Warn().
			Str("product_id", productID).
			Msg("Skipping price update for product no longer tracked")
		return nil
	}
	if err != nil {
		return err
	}

	info, err := r.extractor.Extract(ctx, product.URL)
	if err != nil {
		r.log.Error().
			Err(err).
			Str("product_id", productID).
			Str("platform", product.Platform).
			Msg("Price extraction failed, keeping last known price")
		return err
	}

	now := time.Now().UTC()
	triggered, err := r.store.ApplyPriceUpdate(ctx, productID, info.Price, now)
	if err != nil {
		return err
	}

	r.log.Info().
		Str("product_id", productID).
		Str("platform", product.Platform).
		Int64("price", info.Price).
		Int("alerts_triggered", len(triggered)).
		Msg("Recorded price observation")

	// Alerts are already committed as triggered; a delivery failure must
	// not roll that back or fail the cycle
	for _, t := range triggered {
		r.deliver(ctx, product, t, info.Price, now)
	}

	return nil
}

func (r *PriceReconciler) deliver(ctx context.Context, product *store.TrackedProduct, t store.TriggeredAlert, price int64, at time.Time) {
	if r.notifier == nil {
		return
	}

	drop := notify.PriceDrop{
		Email:        t.Email,
		Name:         t.Name,
		ProductName:  product.Name,
		ProductImage: product.ImageURL,
		ProductURL:   product.URL,
		CurrentPrice: price,
		TargetPrice:  t.Alert.TargetPrice,
		TriggeredAt:  at,
	}

	if err := r.notifier.SendPriceDrop(ctx, drop); err != nil {
		r.log.Error().
			Err(err).
			Str("alert_id", t.Alert.AlertID).
			Str("email", t.Email).
			Msg("Price drop notification failed")
	}
}
