package notify

import (
	"context"
	"time"
)

// PriceDrop is the payload delivered when an alert's threshold is crossed
type PriceDrop struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	ProductName  string    `json:"product_name"`
	ProductImage string    `json:"product_image,omitempty"`
	ProductURL   string    `json:"product_url"`
	CurrentPrice int64     `json:"current_price"`
	TargetPrice  int64     `json:"target_price"`
	TriggeredAt  time.Time `json:"triggered_at"`
}

// Notifier represents the alert delivery channel. Delivery failure is never
// fatal to the caller: an alert fires at most once even when the channel is
// unreliable.
type Notifier interface {
	// SendPriceDrop delivers one price-drop message
	SendPriceDrop(ctx context.Context, drop PriceDrop) error

	// Close closes the delivery channel
	Close() error
}
