// Package events publishes lifecycle events for downstream consumers.
// Publication never affects the outcome of the operation that emitted it.
package events

import (
	"context"
	"time"
)

// LifecycleEvent is the JSON body sent to the broker.
type LifecycleEvent struct {
	Name       string            `json:"name"`
	ContactKey string            `json:"contact_key,omitempty"`
	ChurchID   int64             `json:"church_id"`
	BranchID   int64             `json:"branch_id"`
	ActorID    string            `json:"actor_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event LifecycleEvent) error
	Close() error
}

// NoopPublisher drops every event. Used when AMQP_URL is empty.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, LifecycleEvent) error { return nil }
func (NoopPublisher) Close() error                                  { return nil }
