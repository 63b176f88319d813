package mediator_test

import (
	"context"
	"errors"
	"iter"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mediator/core/container"
	"github.com/dmitrymomot/mediator/core/mediator"
)

func collect[T any](t *testing.T, seq iter.Seq2[T, error]) []T {
	t.Helper()

	var items []T
	for v, err := range seq {
		require.NoError(t, err)
		items = append(items, v)
	}
	return items
}

func TestStream(t *testing.T) {
	t.Parallel()

	t.Run("yields handler items in order", func(t *testing.T) {
		t.Parallel()

		c := container.New()
		mediator.HandleStream(c, counter)

		got := collect(t, mediator.Stream[int](context.Background(), mediator.New(c, nil), countFrom{Start: 41, N: 3}))
		assert.Equal(t, []int{41, 42, 43}, got)
	})

	t.Run("is restartable", func(t *testing.T) {
		t.Parallel()

		c := container.New()
		mediator.HandleStream(c, counter)
		seq := mediator.Stream[int](context.Background(), mediator.New(c, nil), countFrom{Start: 1, N: 2})

		assert.Equal(t, []int{1, 2}, collect(t, seq))
		assert.Equal(t, []int{1, 2}, collect(t, seq))
	})

	t.Run("handler not found", func(t *testing.T) {
		t.Parallel()

		var errs []error
		for _, err := range mediator.Stream[int](context.Background(), mediator.New(container.New(), nil), countFrom{}) {
			errs = append(errs, err)
		}
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], mediator.ErrHandlerNotFound)
	})

	t.Run("handler errors surface at the failing item", func(t *testing.T) {
		t.Parallel()

		failure := errors.New("source broken")
		c := container.New()
		mediator.HandleStream(c, func(context.Context, countFrom) iter.Seq2[int, error] {
			return func(yield func(int, error) bool) {
				if !yield(1, nil) {
					return
				}
				yield(0, failure)
			}
		})

		var (
			items []int
			err   error
		)
		for v, e := range mediator.Stream[int](context.Background(), mediator.New(c, nil), countFrom{}) {
			if e != nil {
				err = e
				break
			}
			items = append(items, v)
		}
		assert.Equal(t, []int{1}, items)
		assert.Equal(t, failure, err)
	})

	t.Run("producer panic becomes an error", func(t *testing.T) {
		t.Parallel()

		c := container.New()
		mediator.HandleStream(c, func(context.Context, countFrom) iter.Seq2[int, error] {
			return func(yield func(int, error) bool) {
				if !yield(1, nil) {
					return
				}
				panic("stream exploded")
			}
		})

		var errs []error
		for _, err := range mediator.Stream[int](context.Background(), mediator.New(c, nil), countFrom{}) {
			if err != nil {
				errs = append(errs, err)
			}
		}
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], mediator.ErrHandlerPanicked)
	})

	t.Run("consumer panic is not swallowed", func(t *testing.T) {
		t.Parallel()

		c := container.New()
		mediator.HandleStream(c, counter)
		m := mediator.New(c, nil)

		assert.PanicsWithValue(t, "consumer", func() {
			for range mediator.Stream[int](context.Background(), m, countFrom{N: 3}) {
				panic("consumer")
			}
		})
	})
}

func TestStream_TrackingBehavior(t *testing.T) {
	t.Parallel()

	tr := &tracker{}
	c := container.New()
	mediator.HandleStream(c, counter)

	builder := mediator.NewPipelineBuilder(c)
	require.NoError(t, mediator.AddGlobalBehavior(builder, func(container.Resolver) (*streamTracker, error) {
		return &streamTracker{t: tr}, nil
	}))

	for v, err := range mediator.Stream[int](context.Background(), mediator.New(c, builder), countFrom{Start: 41, N: 3}) {
		require.NoError(t, err)
		tr.add("item %d", v)
	}

	assert.Equal(t, []string{
		"enter countFrom",
		"item 41",
		"item 42",
		"item 43",
		"exit countFrom",
	}, tr.all())
}

func TestStream_ScopedBehaviorTransformsItems(t *testing.T) {
	t.Parallel()

	c := container.New()
	mediator.HandleStream(c, counter)
	mediator.HandleStream(c, func(_ context.Context, q countDown) iter.Seq2[int, error] {
		return counter(context.Background(), countFrom(q))
	})

	builder := mediator.NewPipelineBuilder(c)
	require.NoError(t, mediator.AddBehaviorFor(builder, func(container.Resolver) (decrement, error) {
		return decrement{}, nil
	}, mediator.TypeOf[countDown]()))

	m := mediator.New(c, builder)
	assert.Equal(t, []int{41, 42, 43}, collect(t, mediator.Stream[int](context.Background(), m, countFrom{Start: 41, N: 3})))
	assert.Equal(t, []int{40, 41, 42}, collect(t, mediator.Stream[int](context.Background(), m, countDown{Start: 41, N: 3})))
}

func naturalsHandler(stopped *atomic.Bool) mediator.StreamHandlerFunc[naturals, int] {
	return func(ctx context.Context, _ naturals) iter.Seq2[int, error] {
		return func(yield func(int, error) bool) {
			defer stopped.Store(true)
			for i := 0; ; i++ {
				if ctx.Err() != nil {
					return
				}
				if !yield(i, nil) {
					return
				}
			}
		}
	}
}

func TestStream_Cancellation(t *testing.T) {
	t.Parallel()

	var stopped atomic.Bool
	c := container.New()
	mediator.HandleStream(c, naturalsHandler(&stopped))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		items []int
		last  error
	)
	for v, err := range mediator.Stream[int](ctx, mediator.New(c, nil), naturals{}) {
		if err != nil {
			last = err
			continue
		}
		items = append(items, v)
		if len(items) == 3 {
			cancel()
		}
	}

	assert.Equal(t, []int{0, 1, 2}, items)
	assert.ErrorIs(t, last, context.Canceled)
	assert.True(t, stopped.Load())
}

func TestStream_AlreadyCancelled(t *testing.T) {
	t.Parallel()

	var stopped atomic.Bool
	c := container.New()
	mediator.HandleStream(c, naturalsHandler(&stopped))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var errs []error
	for _, err := range mediator.Stream[int](ctx, mediator.New(c, nil), naturals{}) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
	assert.False(t, stopped.Load(), "producer must not start")
}

func TestStream_EarlyBreakStopsProducer(t *testing.T) {
	t.Parallel()

	var stopped atomic.Bool
	c := container.New()
	mediator.HandleStream(c, naturalsHandler(&stopped))

	for v, err := range mediator.Stream[int](context.Background(), mediator.New(c, nil), naturals{}) {
		require.NoError(t, err)
		if v == 1 {
			break
		}
	}
	assert.True(t, stopped.Load())
}
