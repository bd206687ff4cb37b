package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(zaptest.NewLogger(t))

	var got []string
	d.Subscribe(EventDonorAlerted, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.ID)
		return errors.New("push gateway down")
	})
	d.Subscribe(EventDonorAlerted, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.ID)
		return nil
	})
	d.Subscribe(EventRequestCreated, func(_ context.Context, e Event) error {
		got = append(got, "other:"+e.ID)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{ID: "e1", Type: EventDonorAlerted}))
	assert.Equal(t, []string{"first:e1", "second:e1"}, got)
}

func TestDispatcherWithoutSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	assert.NoError(t, d.Publish(context.Background(), Event{ID: "e1", Type: EventHardLockReleased}))
}
