package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// This test requires a running Redis instance
// If Redis is not available, the test will be skipped
func TestRedisNotifier(t *testing.T) {
	notifier := NewRedisNotifier("localhost:6379", 0, "price_alerts_test", 100)
	defer notifier.Close()

	ctx := context.Background()
	if err := notifier.Ping(ctx); err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	drop := PriceDrop{
		Email:        "buyer@example.com",
		Name:         "Buyer",
		ProductName:  "Acme Widget Pro X5000",
		ProductURL:   "https://www.amazon.in/dp/B0X500",
		CurrentPrice: 129900,
		TargetPrice:  130000,
		TriggeredAt:  time.Now().UTC(),
	}

	err := notifier.SendPriceDrop(ctx, drop)
	assert.NoError(t, err)
}

func TestPriceDropEncoding(t *testing.T) {
	drop := PriceDrop{
		Email:        "buyer@example.com",
		ProductName:  "Acme Widget Pro X5000",
		CurrentPrice: 129900,
		TargetPrice:  130000,
	}

	payload, err := json.Marshal(drop)
	assert.NoError(t, err)

	var decoded map[string]interface{}
	assert.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "buyer@example.com", decoded["email"])
	assert.Equal(t, float64(129900), decoded["current_price"])
	assert.Equal(t, float64(130000), decoded["target_price"])
}
