package mediator

import (
	"context"
	"iter"
	"log/slog"
	"reflect"
	"time"

	"github.com/dmitrymomot/mediator/core/logger"
)

// LoggingBehavior logs the start, completion and failure of every
// dispatch it wraps. It applies to Send, Publish and Stream.
//
// Example:
//
//	err := mediator.AddGlobalBehavior(builder, func(container.Resolver) (*mediator.LoggingBehavior, error) {
//	    return mediator.NewLoggingBehavior(logger), nil
//	})
type LoggingBehavior struct {
	logger *slog.Logger
}

// NewLoggingBehavior creates a LoggingBehavior. A nil logger uses slog.Default().
func NewLoggingBehavior(l *slog.Logger) *LoggingBehavior {
	if l == nil {
		l = slog.Default()
	}
	return &LoggingBehavior{logger: l}
}

// Handle implements Behavior.
func (b *LoggingBehavior) Handle(ctx context.Context, msg any, next Next) (any, error) {
	start := time.Now()
	attrs := b.attrs(ctx, msg)

	b.logger.InfoContext(ctx, "message started", attrs...)

	out, err := next(ctx)
	if err != nil {
		b.logger.ErrorContext(ctx, "message failed", append(attrs, logger.Elapsed(start), logger.Error(err))...)
		return out, err
	}

	b.logger.InfoContext(ctx, "message completed", append(attrs, logger.Elapsed(start))...)
	return out, nil
}

// HandleStream implements StreamBehavior. Completion is logged after the
// consumer stops pulling, together with the number of items delivered.
func (b *LoggingBehavior) HandleStream(ctx context.Context, msg any, next StreamNext) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		start := time.Now()
		attrs := b.attrs(ctx, msg)

		b.logger.InfoContext(ctx, "stream started", attrs...)

		var (
			items   int
			lastErr error
		)
		for v, err := range next(ctx) {
			if err != nil {
				lastErr = err
			} else {
				items++
			}
			if !yield(v, err) {
				break
			}
		}

		attrs = append(attrs, logger.Elapsed(start), logger.Count("items", items))
		if lastErr != nil {
			b.logger.ErrorContext(ctx, "stream failed", append(attrs, logger.Error(lastErr))...)
			return
		}
		b.logger.InfoContext(ctx, "stream completed", attrs...)
	}
}

func (b *LoggingBehavior) attrs(ctx context.Context, msg any) []any {
	return []any{
		logger.Message(messageName(reflect.TypeOf(msg))),
		logger.MessageKind(MessageKind(ctx).String()),
		logger.MessageID(MessageID(ctx)),
	}
}

// TimeoutBehavior bounds the rest of a Send or Publish chain with a timeout.
// A zero Timeout disables it.
type TimeoutBehavior struct {
	Timeout time.Duration
}

// NewTimeoutBehavior creates a TimeoutBehavior.
func NewTimeoutBehavior(d time.Duration) *TimeoutBehavior {
	return &TimeoutBehavior{Timeout: d}
}

// Handle implements Behavior.
func (b *TimeoutBehavior) Handle(ctx context.Context, msg any, next Next) (any, error) {
	if b.Timeout <= 0 {
		return next(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()
	return next(ctx)
}
