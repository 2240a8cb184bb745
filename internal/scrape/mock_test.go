package scrape

import (
	"context"
	"time"

	"pricepulse/internal/browser"
	"pricepulse/services/cache"
)

// fakeNavigator serves canned HTML keyed by URL
type fakeNavigator struct {
	pages    map[string]string
	failWith error
	opened   []string
}

var _ browser.Navigator = (*fakeNavigator)(nil)

func newFakeNavigator() *fakeNavigator {
	return &fakeNavigator{pages: make(map[string]string)}
}

func (f *fakeNavigator) Open(ctx context.Context, url, waitSelector string) (*browser.Document, error) {
	f.opened = append(f.opened, url)
	if f.failWith != nil {
		return nil, f.failWith
	}
	html, ok := f.pages[url]
	if !ok {
		return nil, context.DeadlineExceeded
	}
	return browser.NewDocument(url, html)
}

func (f *fakeNavigator) Close(ctx context.Context) error {
	return nil
}

// memoryCache is an in-memory CacheService for block window tests
type memoryCache struct {
	values map[string][]byte
}

var _ cache.CacheService = (*memoryCache)(nil)

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string][]byte)}
}

func (m *memoryCache) Get(key string) ([]byte, error) {
	if val, ok := m.values[key]; ok {
		return val, nil
	}
	return nil, cacheMiss{}
}

func (m *memoryCache) Set(key string, value []byte, expiration time.Duration) error {
	m.values[key] = value
	return nil
}

func (m *memoryCache) Delete(key string) error {
	delete(m.values, key)
	return nil
}

type cacheMiss struct{}

func (cacheMiss) Error() string { return "cache miss" }
