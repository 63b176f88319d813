package mediator_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mediator/core/container"
	"github.com/dmitrymomot/mediator/core/mediator"
	"github.com/dmitrymomot/mediator/core/notify"
)

func TestSend_InterfaceTypedRequest(t *testing.T) {
	t.Parallel()

	newMediator := func(t *testing.T, tr *tracker) *mediator.Mediator {
		t.Helper()

		c := container.New()
		mediator.HandleRequest(c, func(context.Context, requestA) (float64, error) { return 1, nil })
		mediator.RegisterRequestHandler(c, func(container.Resolver) (mediator.RequestHandler[requestB, float64], error) {
			return mediator.RequestHandlerFunc[requestB, float64](func(context.Context, requestB) (float64, error) {
				return 2, nil
			}), nil
		})

		builder := mediator.NewPipelineBuilder(c)
		require.NoError(t, mediator.AddBehaviorFor(builder, func(container.Resolver) (*outerBehavior, error) {
			return &outerBehavior{t: tr}, nil
		}, mediator.TypeOf[requestA]()))
		return mediator.New(c, builder)
	}

	t.Run("routes by runtime type", func(t *testing.T) {
		t.Parallel()

		tr := &tracker{}
		m := newMediator(t, tr)

		var req any = requestA{}
		got, err := mediator.Send[float64](context.Background(), m, req)
		require.NoError(t, err)
		assert.Equal(t, 1.0, got)
		assert.Equal(t, []string{"outer enter requestA", "outer exit requestA"}, tr.all())

		req = requestB{}
		got, err = mediator.Send[float64](context.Background(), m, req)
		require.NoError(t, err)
		assert.Equal(t, 2.0, got)
	})

	t.Run("interface result accepts the handler result", func(t *testing.T) {
		t.Parallel()

		got, err := mediator.Send[any](context.Background(), newMediator(t, &tracker{}), any(requestB{}))
		require.NoError(t, err)
		assert.Equal(t, 2.0, got)
	})

	t.Run("unregistered runtime type", func(t *testing.T) {
		t.Parallel()

		_, err := mediator.Send[float64](context.Background(), newMediator(t, &tracker{}), any(getAnswer{}))
		require.ErrorIs(t, err, mediator.ErrHandlerNotFound)
		assert.ErrorIs(t, err, container.ErrNotRegistered)
		assert.Contains(t, err.Error(), "getAnswer")
		assert.NotContains(t, err.Error(), "interface {}")
	})

	t.Run("result type mismatch", func(t *testing.T) {
		t.Parallel()

		_, err := mediator.Send[string](context.Background(), newMediator(t, &tracker{}), any(requestA{}))
		assert.ErrorIs(t, err, mediator.ErrHandlerNotFound)
	})

	t.Run("nil interface", func(t *testing.T) {
		t.Parallel()

		_, err := mediator.Send[float64](context.Background(), newMediator(t, &tracker{}), any(nil))
		assert.ErrorIs(t, err, mediator.ErrNilMessage)
	})
}

func TestPublish_InterfaceTypedNotification(t *testing.T) {
	t.Parallel()

	t.Run("reaches every handler of the runtime type once", func(t *testing.T) {
		t.Parallel()

		c := container.New()
		var direct, factory, other atomic.Int32
		mediator.HandleNotification(c, func(_ context.Context, e userCreated) error {
			if e.ID == "7" {
				direct.Add(1)
			}
			return nil
		})
		mediator.RegisterNotificationHandler(c, func(container.Resolver) (mediator.NotificationHandler[userCreated], error) {
			return mediator.NotificationHandlerFunc[userCreated](func(context.Context, userCreated) error {
				factory.Add(1)
				return nil
			}), nil
		})
		mediator.HandleNotification(c, func(context.Context, requestA) error {
			other.Add(1)
			return nil
		})

		var n any = userCreated{ID: "7"}
		require.NoError(t, mediator.Publish(context.Background(), mediator.New(c, nil), n))
		assert.Equal(t, int32(1), direct.Load())
		assert.Equal(t, int32(1), factory.Load())
		assert.Zero(t, other.Load())
	})

	t.Run("failures are wrapped", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		c := container.New()
		mediator.HandleNotification(c, func(context.Context, userCreated) error { return boom })

		err := mediator.Publish(context.Background(), mediator.New(c, nil), any(userCreated{}))
		assert.ErrorIs(t, err, mediator.ErrHandlerFailed)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("reaches hub subscribers through a trigger", func(t *testing.T) {
		t.Parallel()

		hub := notify.NewHub()
		c := container.New()
		mediator.RegisterDispatcherTrigger[userCreated](c, hub)

		reg := notify.NewRegistry(hub)
		t.Cleanup(func() { _ = reg.Close() })

		var adhoc atomic.Int32
		notify.Subscribe(reg, func(context.Context, userCreated) error {
			adhoc.Add(1)
			return nil
		})

		require.NoError(t, mediator.Publish(context.Background(), mediator.New(c, nil), any(userCreated{})))
		assert.Equal(t, int32(1), adhoc.Load())
	})

	t.Run("no handlers for the runtime type", func(t *testing.T) {
		t.Parallel()

		c := container.New()
		mediator.HandleNotification(c, func(context.Context, userCreated) error { return nil })

		assert.NoError(t, mediator.Publish(context.Background(), mediator.New(c, nil), any(requestA{})))
	})
}

func TestStream_InterfaceTypedRequest(t *testing.T) {
	t.Parallel()

	c := container.New()
	mediator.HandleStream(c, counter)
	m := mediator.New(c, nil)

	t.Run("routes by runtime type", func(t *testing.T) {
		t.Parallel()

		var req any = countFrom{Start: 5, N: 3}
		assert.Equal(t, []int{5, 6, 7}, collect(t, mediator.Stream[int](context.Background(), m, req)))
	})

	t.Run("interface item type", func(t *testing.T) {
		t.Parallel()

		got := collect(t, mediator.Stream[any](context.Background(), m, any(countFrom{Start: 1, N: 2})))
		assert.Equal(t, []any{1, 2}, got)
	})

	t.Run("unregistered runtime type", func(t *testing.T) {
		t.Parallel()

		var errs []error
		for _, err := range mediator.Stream[int](context.Background(), m, any(countDown{})) {
			errs = append(errs, err)
		}
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], mediator.ErrHandlerNotFound)
		assert.Contains(t, errs[0].Error(), "countDown")
	})
}
