package notifications

import (
	"context"

	"github.com/angelmondragon/rocketshoes/pkg/logger"
)

// LogSink writes notifications as structured log entries.
type LogSink struct {
	logg *logger.Logger
}

func NewLogSink(logg *logger.Logger) *LogSink {
	if logg == nil {
		logg = logger.Nop()
	}
	return &LogSink{logg: logg}
}

func (s *LogSink) Notify(ctx context.Context, n Notification) {
	fields := map[string]any{
		"notification_id": n.ID.String(),
		"kind":            n.Kind.String(),
		"severity":        n.Severity.String(),
		"message":         n.Message,
	}
	if n.ProductID != 0 {
		fields["product_id"] = n.ProductID
	}
	s.logg.Warn(s.logg.WithFields(ctx, fields), "cart.notification")
}
