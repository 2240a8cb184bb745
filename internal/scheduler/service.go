package scheduler

import (
	"context"
	"time"

	"pricepulse/config"
	"pricepulse/internal/store"
	"pricepulse/logger"
)

// PriceUpdater refreshes one product's live price
type PriceUpdater interface {
	UpdatePrice(ctx context.Context, productID string) error
}

// ComparisonUpdater refreshes one product's comparison set
type ComparisonUpdater interface {
	UpdateComparison(ctx context.Context, productID string) error
}

// Service binds the job table to the tracker's recurring work: the two
// per-product cycles plus the retention sweep and liveness probe
type Service struct {
	sched       *Scheduler
	store       store.Store
	prices      PriceUpdater
	comparisons ComparisonUpdater
	cfg         config.Config
	log         *logger.Logger
}

// NewService wires the scheduling layer
func NewService(st store.Store, prices PriceUpdater, comparisons ComparisonUpdater, cfg config.Config) *Service {
	return &Service{
		sched:       New(cfg.JobTimeout),
		store:       st,
		prices:      prices,
		comparisons: comparisons,
		cfg:         cfg,
		log:         logger.ForComponent("scheduler-service"),
	}
}

// Start registers the global maintenance jobs, reschedules every tracked
// product, and launches the tick loop
func (s *Service) Start(ctx context.Context) error {
	s.sched.Upsert(KindRetention, "", s.cfg.SweepInterval, s.retentionSweep)
	s.sched.Upsert(KindLiveness, "", s.cfg.LivenessInterval, s.livenessProbe)

	products, err := s.store.Products(ctx, 0, 0)
	if err != nil {
		return err
	}
	for _, p := range products {
		s.ScheduleProduct(p.ProductID)
	}
	s.log.Info().
		Int("products", len(products)).
		Msg("Rescheduled tracked products")

	s.sched.Start()
	return nil
}

// Stop halts scheduling, waiting for in-flight jobs up to the context deadline
func (s *Service) Stop(ctx context.Context) error {
	return s.sched.Stop(ctx)
}

// ScheduleProduct registers or refreshes both recurring jobs for a product.
// Safe to call again for an already scheduled product.
func (s *Service) ScheduleProduct(productID string) {
	id := productID
	s.sched.Upsert(KindPrice, id, s.cfg.PriceInterval, func(ctx context.Context) error {
		return s.prices.UpdatePrice(ctx, id)
	})
	s.sched.Upsert(KindComparison, id, s.cfg.ComparisonInterval(), func(ctx context.Context) error {
		return s.comparisons.UpdateComparison(ctx, id)
	})
}

// RemoveProduct drops both recurring jobs for a product
func (s *Service) RemoveProduct(productID string) {
	s.sched.Remove(KindPrice, productID)
	s.sched.Remove(KindComparison, productID)
}

// TriggerPriceUpdate fires the product's price job immediately
func (s *Service) TriggerPriceUpdate(productID string) error {
	return s.sched.TriggerNow(KindPrice, productID)
}

// Status reports the scheduler state for the health endpoint
func (s *Service) Status() Status {
	return s.sched.Status()
}

func (s *Service) retentionSweep(ctx context.Context) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.RetentionDays)
	removed, err := s.store.PruneHistory(ctx, cutoff)
	if err != nil {
		return err
	}
	s.log.Info().
		Int64("removed", removed).
		Time("cutoff", cutoff).
		Msg("Pruned price history")
	return nil
}

func (s *Service) livenessProbe(ctx context.Context) error {
	s.log.Info().
		Int("active_jobs", s.sched.ActiveJobCount()).
		Msg("Scheduler alive")
	return nil
}
