package notify_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mediator/core/notify"
)

func TestHub_DispatcherPerTypeAndMode(t *testing.T) {
	t.Parallel()

	hub := notify.NewHub()

	assert.Same(t, notify.DispatcherFor[userCreated](hub), notify.DispatcherFor[userCreated](hub))
	assert.Same(t, notify.ContextDispatcherFor[userCreated](hub), notify.ContextDispatcherFor[userCreated](hub))
	assert.NotSame(t, notify.DispatcherFor[userCreated](hub), notify.ContextDispatcherFor[userCreated](hub))

	assert.Equal(t, notify.Immediate, notify.DispatcherFor[userCreated](hub).Mode())
	assert.Equal(t, notify.Contextual, notify.ContextDispatcherFor[userCreated](hub).Mode())
}

func TestHub_CaptureDefaultIsSetOnce(t *testing.T) {
	t.Parallel()

	hub := notify.NewHub()
	assert.Nil(t, hub.DefaultExecutionContext())

	first := notify.Inline()
	assert.True(t, hub.CaptureDefault(first))
	assert.False(t, hub.CaptureDefault(notify.Inline()))
	assert.False(t, hub.CaptureDefault(nil))
	assert.NotNil(t, hub.DefaultExecutionContext())
}

func TestHub_CallHandlersReachesBothModes(t *testing.T) {
	t.Parallel()

	hub := notify.NewHub(notify.WithDefaultExecutionContext(notify.Inline()))
	plain := notify.NewRegistry(hub)
	contextual := notify.NewContextRegistry(hub)
	t.Cleanup(func() {
		_ = plain.Close()
		_ = contextual.Close()
	})

	var calls atomic.Int32
	count := func(context.Context, userCreated) error {
		calls.Add(1)
		return nil
	}
	notify.Subscribe(plain, count)
	notify.Subscribe(contextual, count)

	require.NoError(t, notify.CallHandlers(context.Background(), hub, userCreated{}))
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 2, hub.RegisteredDelegateCount())
}

func TestHub_ExecutionContextFunc(t *testing.T) {
	t.Parallel()

	var routed atomic.Int32
	ec := notify.ExecutionContextFunc(func(ctx context.Context, fn func(context.Context) error) error {
		routed.Add(1)
		return fn(ctx)
	})

	hub := notify.NewHub()
	reg := notify.NewContextRegistry(hub, notify.WithExecutionContext(ec))
	t.Cleanup(func() { _ = reg.Close() })

	notify.Subscribe(reg, noop[orderPlaced])
	notify.SubscribeAsync(reg, noop[orderPlaced])

	require.NoError(t, notify.CallHandlers(context.Background(), hub, orderPlaced{}))
	assert.Equal(t, int32(2), routed.Load())
}
