package mediator

import (
	"context"
	"iter"
)

// Unit is the result passed through the behavior chain of a Publish.
type Unit struct{}

// Next invokes the rest of the chain.
type Next func(ctx context.Context) (any, error)

// StreamNext produces the sequence of the rest of the stream chain.
type StreamNext func(ctx context.Context) iter.Seq2[any, error]

// Behavior wraps Send and Publish calls. The result is boxed: requests
// carry the handler's result, notifications carry Unit.
//
// A behavior may short-circuit by not calling next, or replace the result;
// a replacement must have the caller's result type.
type Behavior interface {
	Handle(ctx context.Context, msg any, next Next) (any, error)
}

// BehaviorFunc adapts a function to Behavior.
type BehaviorFunc func(ctx context.Context, msg any, next Next) (any, error)

// Handle implements Behavior.
func (f BehaviorFunc) Handle(ctx context.Context, msg any, next Next) (any, error) {
	return f(ctx, msg, next)
}

// StreamBehavior wraps Stream calls. It returns a sequence that usually
// ranges over next(ctx), filtering or transforming items lazily.
type StreamBehavior interface {
	HandleStream(ctx context.Context, msg any, next StreamNext) iter.Seq2[any, error]
}

// StreamBehaviorFunc adapts a function to StreamBehavior.
type StreamBehaviorFunc func(ctx context.Context, msg any, next StreamNext) iter.Seq2[any, error]

// HandleStream implements StreamBehavior.
func (f StreamBehaviorFunc) HandleStream(ctx context.Context, msg any, next StreamNext) iter.Seq2[any, error] {
	return f(ctx, msg, next)
}

// chain folds behaviors around terminal. The first behavior is the outermost.
func chain(behaviors []Behavior, msg any, terminal Next) Next {
	next := terminal
	for i := len(behaviors) - 1; i >= 0; i-- {
		b, inner := behaviors[i], next
		next = func(ctx context.Context) (any, error) {
			return b.Handle(ctx, msg, inner)
		}
	}
	return next
}

// chainStream is chain for stream behaviors.
func chainStream(behaviors []StreamBehavior, msg any, terminal StreamNext) StreamNext {
	next := terminal
	for i := len(behaviors) - 1; i >= 0; i-- {
		b, inner := behaviors[i], next
		next = func(ctx context.Context) iter.Seq2[any, error] {
			return b.HandleStream(ctx, msg, inner)
		}
	}
	return next
}
