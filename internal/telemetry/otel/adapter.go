package otel

import (
	"context"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"promanage/backend/internal/notification"
)

// recordEmitter is the part of otellog.Logger the publisher needs.
type recordEmitter interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// NewEventPublisher returns a notification.Publisher that sends each event as
// an OTel log record. A nil provider yields a publisher that drops events.
func NewEventPublisher(provider *sdklog.LoggerProvider) notification.Publisher {
	if provider == nil {
		return noopPublisher{}
	}
	return NewEventPublisherWithLogger(provider.Logger("promanage.notification"))
}

// NewEventPublisherWithLogger builds the publisher on an existing logger.
func NewEventPublisherWithLogger(l recordEmitter) notification.Publisher {
	return &otelPublisher{logger: l}
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, ...notification.Event) error { return nil }

type otelPublisher struct {
	logger recordEmitter
}

// Publish emits one record per event: body is the human message, attributes
// carry the event type, id and payload.
func (p *otelPublisher) Publish(ctx context.Context, events ...notification.Event) error {
	for _, e := range events {
		rec := otellog.Record{}
		rec.SetTimestamp(e.OccurredAt)
		rec.SetSeverity(otellog.SeverityInfo)
		rec.SetBody(otellog.StringValue(e.Message()))
		rec.AddAttributes(
			otellog.String("event_type", string(e.Type)),
			otellog.String("event_id", e.ID),
		)
		for k, v := range e.Payload {
			rec.AddAttributes(otellog.String(k, v))
		}
		p.logger.Emit(ctx, rec)
	}
	return nil
}
