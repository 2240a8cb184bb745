package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pricepulse/config"
	"pricepulse/internal/store"
)

// fakeStore covers only the calls the scheduling layer makes; anything else
// panics through the embedded nil interface
type fakeStore struct {
	store.Store
	products []store.TrackedProduct
	pruned   int64
	cutoff   time.Time
}

func (f *fakeStore) Products(ctx context.Context, limit, offset int) ([]store.TrackedProduct, error) {
	return f.products, nil
}

func (f *fakeStore) PruneHistory(ctx context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.pruned, nil
}

type fakeUpdater struct {
	priceCalls      []string
	comparisonCalls []string
}

func (f *fakeUpdater) UpdatePrice(ctx context.Context, productID string) error {
	f.priceCalls = append(f.priceCalls, productID)
	return nil
}

func (f *fakeUpdater) UpdateComparison(ctx context.Context, productID string) error {
	f.comparisonCalls = append(f.comparisonCalls, productID)
	return nil
}

func testConfig() config.Config {
	return config.Config{
		PriceInterval:      time.Hour,
		ComparisonMultiple: 6,
		RetentionDays:      30,
		SweepInterval:      24 * time.Hour,
		LivenessInterval:   30 * time.Minute,
	}
}

func TestServiceStartReschedulesTrackedProducts(t *testing.T) {
	st := &fakeStore{products: []store.TrackedProduct{
		{ProductID: "p1"},
		{ProductID: "p2"},
	}}
	updater := &fakeUpdater{}

	svc := NewService(st, updater, updater, testConfig())
	assert.NoError(t, svc.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, svc.Stop(ctx))
	}()

	// Two jobs per product plus the retention sweep and liveness probe
	assert.Equal(t, 6, svc.sched.ActiveJobCount())
}

func TestServiceScheduleAndRemoveProduct(t *testing.T) {
	svc := NewService(&fakeStore{}, &fakeUpdater{}, &fakeUpdater{}, testConfig())

	svc.ScheduleProduct("p1")
	assert.Equal(t, 2, svc.sched.ActiveJobCount())

	// Re-scheduling is idempotent
	svc.ScheduleProduct("p1")
	assert.Equal(t, 2, svc.sched.ActiveJobCount())

	svc.RemoveProduct("p1")
	assert.Equal(t, 0, svc.sched.ActiveJobCount())
}

func TestServiceTriggerPriceUpdate(t *testing.T) {
	updater := &fakeUpdater{}
	svc := NewService(&fakeStore{}, updater, updater, testConfig())

	svc.ScheduleProduct("p1")
	assert.NoError(t, svc.TriggerPriceUpdate("p1"))
	svc.sched.wg.Wait()

	assert.Equal(t, []string{"p1"}, updater.priceCalls)
	assert.Empty(t, updater.comparisonCalls)

	assert.Error(t, svc.TriggerPriceUpdate("never-tracked"))
}

func TestRetentionSweep(t *testing.T) {
	st := &fakeStore{pruned: 42}
	svc := NewService(st, &fakeUpdater{}, &fakeUpdater{}, testConfig())

	assert.NoError(t, svc.retentionSweep(context.Background()))

	expected := time.Now().UTC().AddDate(0, 0, -30)
	assert.WithinDuration(t, expected, st.cutoff, time.Minute)
}

func TestComparisonUsesLongerInterval(t *testing.T) {
	svc := NewService(&fakeStore{}, &fakeUpdater{}, &fakeUpdater{}, testConfig())
	svc.ScheduleProduct("p1")

	st := svc.Status()
	next := make(map[string]time.Time)
	for _, j := range st.Jobs {
		next[j.Key] = j.NextRun
	}

	priceNext := next["scrape_price:p1"]
	comparisonNext := next["compare_price:p1"]
	assert.WithinDuration(t, priceNext.Add(5*time.Hour), comparisonNext, time.Minute)
}
