package events

import (
	"context"
	"time"

	"soultrack/followup/internal/logging"
)

const publishTimeout = 3 * time.Second

// Emit publishes event with its own timeout, detached from the request so a
// finished request does not cancel it. Failures are logged.
func Emit(ctx context.Context, p Publisher, event LifecycleEvent) {
	if p == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.Publish(pubCtx, event); err != nil {
		logging.Warn("Failed to publish lifecycle event", "event", event.Name, "contact_key", event.ContactKey, "error", err)
	}
}
