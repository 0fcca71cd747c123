package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"propertyvoice_backend/platform/logger"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestPublishInvokesSubscribedHandlers(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	var calls atomic.Int32
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, event Event) error {
		calls.Add(1)
		return nil
	}))
	bus.Subscribe("other.event", HandlerFunc(func(ctx context.Context, event Event) error {
		t.Error("handler for a different event name was invoked")
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "test.event"})
	bus.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("handler invoked %d times, want 1", got)
	}
}

func TestWaitBlocksUntilHandlersFinish(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	var done atomic.Bool
	bus.Subscribe("test.slow", HandlerFunc(func(ctx context.Context, event Event) error {
		time.Sleep(20 * time.Millisecond)
		done.Store(true)
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "test.slow"})
	bus.Wait()

	if !done.Load() {
		t.Error("Wait returned before the handler finished")
	}
}

func TestPublishSurvivesHandlerErrorAndPanic(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	var calls atomic.Int32
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, event Event) error {
		return errors.New("handler failed")
	}))
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, event Event) error {
		panic("handler panicked")
	}))
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, event Event) error {
		calls.Add(1)
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "test.event"})
	bus.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("healthy handler invoked %d times, want 1", got)
	}
}
