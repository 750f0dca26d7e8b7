package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherInvokesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var seen []string
	d.Subscribe(EventRequestCreated, func(ctx context.Context, ev Event) error {
		seen = append(seen, ev.RequestID)
		return nil
	})
	d.Subscribe(EventRequestCreated, func(ctx context.Context, ev Event) error {
		seen = append(seen, ev.RequestID+"-second")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventRequestCreated, RequestID: "r1"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"r1", "r1-second"}, seen)
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	d := NewInMemoryDispatcher()

	called := false
	d.Subscribe(EventXPAwarded, func(ctx context.Context, ev Event) error {
		called = true
		return nil
	})

	_ = d.Publish(context.Background(), Event{Type: EventSessionEnded})
	assert.False(t, called)
}

func TestDispatcherContinuesPastHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()

	var order []int
	d.Subscribe(EventSessionEnded, func(ctx context.Context, ev Event) error {
		order = append(order, 1)
		return errors.New("boom")
	})
	d.Subscribe(EventSessionEnded, func(ctx context.Context, ev Event) error {
		order = append(order, 2)
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventSessionEnded})
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 2}, order)
}
