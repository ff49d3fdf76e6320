package events

import (
	"context"
	"errors"
	"testing"
)

type publisherFunc func(ctx context.Context, event LifecycleEvent) error

func (f publisherFunc) Publish(ctx context.Context, event LifecycleEvent) error { return f(ctx, event) }
func (f publisherFunc) Close() error                                            { return nil }

func TestEmit_DetachesFromCancelledRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got LifecycleEvent
	p := publisherFunc(func(ctx context.Context, event LifecycleEvent) error {
		if ctx.Err() != nil {
			t.Errorf("Expected publish context to outlive the request, got %v", ctx.Err())
		}
		got = event
		return nil
	})

	Emit(ctx, p, LifecycleEvent{Name: "contact.integrated", ContactKey: "k-1"})

	if got.Name != "contact.integrated" || got.OccurredAt.IsZero() {
		t.Errorf("Unexpected event: %+v", got)
	}
}

func TestEmit_SwallowsErrors(t *testing.T) {
	p := publisherFunc(func(context.Context, LifecycleEvent) error { return errors.New("broker down") })
	Emit(context.Background(), p, LifecycleEvent{Name: "contact.dispatched"})
	Emit(context.Background(), nil, LifecycleEvent{Name: "contact.dispatched"})
	Emit(context.Background(), NoopPublisher{}, LifecycleEvent{Name: "contact.dispatched"})
}
