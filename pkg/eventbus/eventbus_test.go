package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type testEvent struct{ name string }

func (e testEvent) Name() string { return e.name }

func TestBus_PublishCallsAllSubscribers(t *testing.T) {
	bus := New(zap.NewNop())
	var calls atomic.Int32

	for i := 0; i < 3; i++ {
		bus.Subscribe("activity.recorded", func(ctx context.Context, e Event) error {
			calls.Add(1)
			return nil
		})
	}
	bus.Subscribe("other", func(ctx context.Context, e Event) error {
		t.Error("чужой слушатель не должен вызываться")
		return nil
	})

	bus.Publish(context.Background(), testEvent{name: "activity.recorded"})
	bus.Wait()

	assert.Equal(t, int32(3), calls.Load())
}

func TestBus_ListenerErrorDoesNotStopOthers(t *testing.T) {
	bus := New(zap.NewNop())
	var ok atomic.Bool

	bus.Subscribe("e", func(ctx context.Context, e Event) error { return errors.New("boom") })
	bus.Subscribe("e", func(ctx context.Context, e Event) error { ok.Store(true); return nil })

	bus.Publish(context.Background(), testEvent{name: "e"})
	bus.Wait()

	assert.True(t, ok.Load())
}

func TestBus_ListenerContextOutlivesPublisher(t *testing.T) {
	bus := New(zap.NewNop())
	var ctxErr atomic.Value

	bus.Subscribe("e", func(ctx context.Context, e Event) error {
		ctxErr.Store(ctx.Err() == nil)
		return nil
	})

	reqCtx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(reqCtx, testEvent{name: "e"})
	bus.Wait()

	assert.Equal(t, true, ctxErr.Load())
}
