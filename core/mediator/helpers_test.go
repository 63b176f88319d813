package mediator_test

import (
	"context"
	"fmt"
	"iter"
	"reflect"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/mediator/core/mediator"
)

type requestA struct{}

type requestB struct{}

type getAnswer struct{}

type userCreated struct {
	ID string
}

type countFrom struct {
	Start int
	N     int
}

type countDown struct {
	Start int
	N     int
}

type naturals struct{}

// tracker records events in order across goroutines.
type tracker struct {
	mu     sync.Mutex
	events []string
}

func (t *tracker) add(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, fmt.Sprintf(format, args...))
}

func (t *tracker) all() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.events...)
}

func typeName(msg any) string {
	return reflect.TypeOf(msg).Name()
}

// outerBehavior and innerBehavior are distinct behavior types so that both
// can be registered on the same builder.
type outerBehavior struct{ t *tracker }

func (b *outerBehavior) Handle(ctx context.Context, msg any, next mediator.Next) (any, error) {
	b.t.add("outer enter %s", typeName(msg))
	out, err := next(ctx)
	b.t.add("outer exit %s", typeName(msg))
	return out, err
}

type innerBehavior struct{ t *tracker }

func (b *innerBehavior) Handle(ctx context.Context, msg any, next mediator.Next) (any, error) {
	b.t.add("inner enter %s", typeName(msg))
	out, err := next(ctx)
	b.t.add("inner exit %s", typeName(msg))
	return out, err
}

// streamTracker records when a stream is entered and when it is exhausted.
type streamTracker struct{ t *tracker }

func (b *streamTracker) HandleStream(ctx context.Context, msg any, next mediator.StreamNext) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		b.t.add("enter %s", typeName(msg))
		defer b.t.add("exit %s", typeName(msg))
		for v, err := range next(ctx) {
			if !yield(v, err) {
				return
			}
		}
	}
}

// dualTracker implements both behavior shapes and records every message it wraps.
type dualTracker struct{ t *tracker }

func (b *dualTracker) Handle(ctx context.Context, msg any, next mediator.Next) (any, error) {
	b.t.add("wrap %s", typeName(msg))
	return next(ctx)
}

func (b *dualTracker) HandleStream(ctx context.Context, msg any, next mediator.StreamNext) iter.Seq2[any, error] {
	b.t.add("wrap %s", typeName(msg))
	return next(ctx)
}

// decrement maps every int item to item-1.
type decrement struct{}

func (decrement) HandleStream(ctx context.Context, _ any, next mediator.StreamNext) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for v, err := range next(ctx) {
			if n, ok := v.(int); ok && err == nil {
				v = n - 1
			}
			if !yield(v, err) {
				return
			}
		}
	}
}

func counter(_ context.Context, q countFrom) iter.Seq2[int, error] {
	return func(yield func(int, error) bool) {
		for i := range q.N {
			if !yield(q.Start+i, nil) {
				return
			}
		}
	}
}

type resolverMock struct {
	mock.Mock
}

func (m *resolverMock) ResolveRequired(key reflect.Type) (any, error) {
	args := m.Called(key)
	return args.Get(0), args.Error(1)
}

func (m *resolverMock) ResolveAll(key reflect.Type) ([]any, error) {
	args := m.Called(key)
	instances, _ := args.Get(0).([]any)
	return instances, args.Error(1)
}
