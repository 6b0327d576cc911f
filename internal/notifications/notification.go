// Package notifications delivers the user-facing messages the cart emits when an
// operation is refused or fails.
package notifications

import (
	"context"
	"time"

	"github.com/angelmondragon/rocketshoes/pkg/enums"
	"github.com/google/uuid"
)

// Notification is a single fire-and-forget message for the shopper.
type Notification struct {
	ID        uuid.UUID              `json:"id"`
	Severity  enums.Severity         `json:"severity"`
	Kind      enums.NotificationKind `json:"kind"`
	Message   string                 `json:"message"`
	ProductID int64                  `json:"product_id,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Sink consumes notifications. Delivery never reports back to the caller.
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

// SinkFunc adapts a function into a Sink.
type SinkFunc func(ctx context.Context, n Notification)

func (f SinkFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// NewError builds an error-severity notification.
func NewError(kind enums.NotificationKind, message string, productID int64) Notification {
	return Notification{
		ID:        uuid.New(),
		Severity:  enums.SeverityError,
		Kind:      kind,
		Message:   message,
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	}
}

// Fanout delivers each notification to every sink in order.
type Fanout []Sink

func (f Fanout) Notify(ctx context.Context, n Notification) {
	for _, sink := range f {
		if sink != nil {
			sink.Notify(ctx, n)
		}
	}
}
