package services

import (
	"context"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
)

// notifier fans a committed change out to the dashboard cache and the
// event bus. Both are optional. Failures are logged and never returned.
type notifier struct {
	publisher  EventPublisher
	dashboards DashboardInvalidator
}

func (n notifier) changed(ctx context.Context, e amqp.Event) {
	if n.dashboards != nil {
		n.dashboards.Invalidate(e.UserID)
	}

	if n.publisher == nil {
		log.FromContext(ctx).DebugContext(ctx, "Event bus not configured, skipping event",
			log.FieldEventType, e.Type)
		return
	}

	if err := n.publisher.Publish(ctx, e); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Failed to publish event",
			log.FieldEventType, e.Type,
			log.FieldUserID, e.UserID,
			log.FieldOperation, log.OpPublish,
			log.FieldError, err)
	}
}
