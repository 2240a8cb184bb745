package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"pricepulse/pkg/errors"
)

// RedisNotifier implements Notifier by publishing price-drop events onto a
// Redis stream consumed by the downstream mailer. The stream is kept to a
// bounded length so an offline consumer cannot grow it without limit.
type RedisNotifier struct {
	client    *redis.Client
	stream    string
	maxLength int
}

var _ Notifier = (*RedisNotifier)(nil)

// NewRedisNotifier creates a Redis-stream notifier
func NewRedisNotifier(addr string, db int, stream string, maxLength int) *RedisNotifier {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisNotifier{
		client:    client,
		stream:    stream,
		maxLength: maxLength,
	}
}

// SendPriceDrop publishes one price-drop event to the stream
func (n *RedisNotifier) SendPriceDrop(ctx context.Context, drop PriceDrop) error {
	payload, err := json.Marshal(drop)
	if err != nil {
		return errors.NewNotification("encode price-drop event", err)
	}

	err = n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		MaxLen: int64(n.maxLength),
		Approx: true,
		Values: map[string]interface{}{
			"price_drop": payload,
		},
	}).Err()
	if err != nil {
		return errors.NewNotification("publish price-drop event", err)
	}

	return nil
}

// Ping verifies the Redis connection
func (n *RedisNotifier) Ping(ctx context.Context) error {
	return n.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
