package notification

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// publishTimeout bounds a single async publish.
const publishTimeout = 5 * time.Second

// ShutdownDrainDuration is how long shutdown waits for in-flight async publishes.
const ShutdownDrainDuration = publishTimeout

// Publisher delivers events. Callers treat delivery as best-effort.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// Multi fans events out to every publisher and joins their errors.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, events ...Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, events...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogPublisher writes each event's message to a slog logger.
type LogPublisher struct {
	Logger *slog.Logger
}

// Publish implements Publisher.
func (p LogPublisher) Publish(ctx context.Context, events ...Event) error {
	l := p.Logger
	if l == nil {
		l = slog.Default()
	}
	for _, e := range events {
		l.InfoContext(ctx, "[Notification] "+e.Message(), "component", "notification", "event_type", string(e.Type), "event_id", e.ID)
	}
	return nil
}

// PublishAsync publishes events in a goroutine with its own timeout so request
// cancellation does not abort delivery. Errors are logged.
func PublishAsync(p Publisher, events ...Event) {
	if p == nil || len(events) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.Publish(ctx, events...); err != nil {
			slog.Warn("notification: async publish failed", "error", err)
		}
	}()
}
