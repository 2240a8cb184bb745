package cache

import (
	"strconv"
	"time"
)

const blockKeyPrefix = "blocked:"

// BlockList records which platforms are inside a scrape block window. After a
// timeout or an explicit upstream refusal the platform is marked blocked for
// the window, and subsequent scrapes short-circuit until it expires.
type BlockList struct {
	cache  CacheService
	window time.Duration
}

// NewBlockList creates a block list over the given cache with a fixed window
func NewBlockList(cache CacheService, window time.Duration) *BlockList {
	return &BlockList{cache: cache, window: window}
}

// Block opens the block window for a platform
func (b *BlockList) Block(platform string) {
	value := []byte(strconv.FormatInt(time.Now().Add(b.window).Unix(), 10))
	// A failed cache write just means the next scrape is attempted anyway
	_ = b.cache.Set(blockKeyPrefix+platform, value, b.window)
}

// Blocked reports whether a platform is inside its block window and how long
// remains until it expires
func (b *BlockList) Blocked(platform string) (time.Duration, bool) {
	value, err := b.cache.Get(blockKeyPrefix + platform)
	if err != nil {
		return 0, false
	}

	until, err := strconv.ParseInt(string(value), 10, 64)
	if err != nil {
		return b.window, true
	}

	// The cache entry may outlive the window when the backend rounds
	// expirations up, so the recorded expiry is authoritative
	remaining := time.Until(time.Unix(until, 0))
	if remaining <= 0 {
		return 0, false
	}
	return remaining, true
}
