package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/spec-kit/redlink/internal/clock"
	"github.com/spec-kit/redlink/internal/events"
)

// publishEvents stamps and dispatches events in order. Callers must not hold
// store locks: handlers may call back into the services.
func publishEvents(ctx context.Context, dispatcher events.Dispatcher, clk clock.Clock, evts ...events.Event) {
	if dispatcher == nil {
		return
	}
	for _, event := range evts {
		if event.ID == "" {
			event.ID = uuid.NewString()
		}
		if event.Timestamp.IsZero() {
			event.Timestamp = clk.Now()
		}
		_ = dispatcher.Publish(ctx, event)
	}
}
