package reconcile

import (
	"context"
	"time"

	"pricepulse/internal/platform"
	"pricepulse/internal/scrape"
	"pricepulse/internal/store"
	"pricepulse/pkg/errors"
	"pricepulse/services/notify"
)

// mockStore is an in-memory Store for reconciler tests
type mockStore struct {
	products    map[string]*store.TrackedProduct
	points      []store.PricePoint
	alerts      map[string]*store.PriceAlert
	users       map[string]*store.User
	comparisons map[string][]store.ComparisonResult
	applyErr    error
}

var _ store.Store = (*mockStore)(nil)

func newMockStore() *mockStore {
	return &mockStore{
		products:    make(map[string]*store.TrackedProduct),
		alerts:      make(map[string]*store.PriceAlert),
		users:       make(map[string]*store.User),
		comparisons: make(map[string][]store.ComparisonResult),
	}
}

func (m *mockStore) CreateProduct(ctx context.Context, product *store.TrackedProduct) error {
	m.products[product.ProductID] = product
	return nil
}

func (m *mockStore) Product(ctx context.Context, productID string) (*store.TrackedProduct, error) {
	if p, ok := m.products[productID]; ok {
		return p, nil
	}
	return nil, errors.NewNotFound("product", productID)
}

func (m *mockStore) ProductByURL(ctx context.Context, url string) (*store.TrackedProduct, error) {
	for _, p := range m.products {
		if p.URL == url {
			return p, nil
		}
	}
	return nil, errors.NewNotFound("product", url)
}

func (m *mockStore) Products(ctx context.Context, limit, offset int) ([]store.TrackedProduct, error) {
	var out []store.TrackedProduct
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockStore) DeleteProduct(ctx context.Context, productID string) error {
	delete(m.products, productID)
	return nil
}

func (m *mockStore) History(ctx context.Context, productID string, limit int) ([]store.PricePoint, error) {
	var out []store.PricePoint
	for _, p := range m.points {
		if p.ProductID == productID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockStore) Comparisons(ctx context.Context, productID string) ([]store.ComparisonResult, error) {
	return m.comparisons[productID], nil
}

func (m *mockStore) EnsureUser(ctx context.Context, email, name string) (*store.User, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	u := &store.User{UserID: "u-" + email, Email: email, Name: name}
	m.users[email] = u
	return u, nil
}

func (m *mockStore) CreateAlert(ctx context.Context, alert *store.PriceAlert) error {
	m.alerts[alert.AlertID] = alert
	return nil
}

func (m *mockStore) Alert(ctx context.Context, alertID string) (*store.PriceAlert, error) {
	if a, ok := m.alerts[alertID]; ok {
		return a, nil
	}
	return nil, errors.NewNotFound("alert", alertID)
}

func (m *mockStore) AlertsForProduct(ctx context.Context, productID string) ([]store.PriceAlert, error) {
	var out []store.PriceAlert
	for _, a := range m.alerts {
		if a.ProductID == productID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockStore) DeleteAlert(ctx context.Context, alertID string) error {
	delete(m.alerts, alertID)
	return nil
}

func (m *mockStore) ApplyPriceUpdate(ctx context.Context, productID string, price int64, at time.Time) ([]store.TriggeredAlert, error) {
	if m.applyErr != nil {
		return nil, m.applyErr
	}
	product, ok := m.products[productID]
	if !ok {
		return nil, errors.NewNotFound("product", productID)
	}

	product.CurrentPrice = price
	product.UpdatedAt = at
	m.points = append(m.points, store.PricePoint{
		ProductID: productID,
		Price:     price,
		Platform:  product.Platform,
		Timestamp: at,
	})

	var triggered []store.TriggeredAlert
	for _, a := range m.alerts {
		if a.ProductID != productID || !a.Active || a.Triggered || a.TargetPrice < price {
			continue
		}
		a.Triggered = true
		ts := at
		a.DateTriggered = &ts

		var email, name string
		for _, u := range m.users {
			if u.UserID == a.UserID {
				email, name = u.Email, u.Name
			}
		}
		triggered = append(triggered, store.TriggeredAlert{Alert: *a, Email: email, Name: name})
	}
	return triggered, nil
}

func (m *mockStore) ReplaceComparisons(ctx context.Context, productID string, results []store.ComparisonResult) error {
	m.comparisons[productID] = results
	return nil
}

func (m *mockStore) PruneHistory(ctx context.Context, cutoff time.Time) (int64, error) {
	var kept []store.PricePoint
	var removed int64
	for _, p := range m.points {
		if p.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	m.points = kept
	return removed, nil
}

// mockExtractor returns a fixed result or error
type mockExtractor struct {
	info  *scrape.ProductInfo
	err   error
	calls int
}

var _ ProductExtractor = (*mockExtractor)(nil)

func (m *mockExtractor) Extract(ctx context.Context, url string) (*scrape.ProductInfo, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.info, nil
}

// mockSearcher returns fixed candidates
type mockSearcher struct {
	candidates []scrape.Candidate
	lastQuery  string
	excluded   platform.Platform
}

var _ CandidateSearcher = (*mockSearcher)(nil)

func (m *mockSearcher) Search(ctx context.Context, query string, exclude platform.Platform) []scrape.Candidate {
	m.lastQuery = query
	m.excluded = exclude
	return m.candidates
}

// mockNotifier records deliveries and can fail on demand
type mockNotifier struct {
	sent []notify.PriceDrop
	err  error
}

var _ notify.Notifier = (*mockNotifier)(nil)

func (m *mockNotifier) SendPriceDrop(ctx context.Context, drop notify.PriceDrop) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, drop)
	return nil
}

func (m *mockNotifier) Close() error {
	return nil
}
