package mediator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mediator/core/container"
	"github.com/dmitrymomot/mediator/core/mediator"
)

func TestNewDefault(t *testing.T) {
	t.Parallel()

	t.Run("registers mediator and builder", func(t *testing.T) {
		t.Parallel()

		c := container.New()
		m, err := mediator.NewDefault(c, nil)
		require.NoError(t, err)

		resolved, err := container.Resolve[*mediator.Mediator](c)
		require.NoError(t, err)
		assert.Same(t, m, resolved)

		builder, err := container.Resolve[*mediator.PipelineBuilder](c)
		require.NoError(t, err)
		assert.Same(t, m.Pipeline(), builder)
	})

	t.Run("handlers can resolve the mediator", func(t *testing.T) {
		t.Parallel()

		c := container.New()
		mediator.RegisterRequestHandler(c, func(r container.Resolver) (mediator.RequestHandler[requestA, float64], error) {
			m, err := container.Resolve[*mediator.Mediator](r)
			if err != nil {
				return nil, err
			}
			return mediator.RequestHandlerFunc[requestA, float64](func(ctx context.Context, _ requestA) (float64, error) {
				b, err := mediator.Send[float64](ctx, m, requestB{})
				return b * 2, err
			}), nil
		})
		mediator.HandleRequest(c, func(context.Context, requestB) (float64, error) { return 21, nil })

		m, err := mediator.NewDefault(c, nil)
		require.NoError(t, err)

		got, err := mediator.Send[float64](context.Background(), m, requestA{})
		require.NoError(t, err)
		assert.Equal(t, 42.0, got)
	})

	t.Run("configure error", func(t *testing.T) {
		t.Parallel()

		want := errors.New("bad pipeline")
		_, err := mediator.NewDefault(container.New(), func(*mediator.PipelineBuilder) error { return want })
		assert.ErrorIs(t, err, want)
	})
}

func TestNew_NilResolverPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { mediator.New(nil, nil) })
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "request", mediator.KindRequest.String())
	assert.Equal(t, "notification", mediator.KindNotification.String())
	assert.Equal(t, "stream", mediator.KindStream.String())
	assert.Equal(t, "unknown", mediator.KindUnknown.String())
	assert.Equal(t, mediator.KindUnknown, mediator.MessageKind(context.Background()))
}
