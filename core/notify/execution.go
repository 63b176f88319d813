package notify

import (
	"context"
	"fmt"
	"sync"
)

// ExecutionContext runs work on behalf of a dispatcher, e.g. on a goroutine
// that owns some thread-affine resource. Run blocks until fn has finished
// or ctx is done.
type ExecutionContext interface {
	Run(ctx context.Context, fn func(context.Context) error) error
}

// ExecutionContextFunc adapts a function to ExecutionContext.
type ExecutionContextFunc func(ctx context.Context, fn func(context.Context) error) error

// Run implements ExecutionContext.
func (f ExecutionContextFunc) Run(ctx context.Context, fn func(context.Context) error) error {
	return f(ctx, fn)
}

// Inline returns an ExecutionContext that runs work on the calling goroutine.
func Inline() ExecutionContext {
	return ExecutionContextFunc(func(ctx context.Context, fn func(context.Context) error) error {
		return fn(ctx)
	})
}

type loopKey struct{}

type loopTask struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

// Loop is an ExecutionContext backed by a single goroutine that executes
// queued work one item at a time, in submission order.
//
// Work submitted from inside the loop runs inline to avoid self-deadlock.
type Loop struct {
	tasks     chan loopTask
	closed    chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewLoop starts a new loop goroutine. Call Close to stop it.
func NewLoop() *Loop {
	l := &Loop{
		tasks:   make(chan loopTask),
		closed:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go l.serve()
	return l
}

// Run schedules fn on the loop goroutine and waits for it to finish.
// If ctx is done first, Run returns ctx.Err(); fn may still run later.
func (l *Loop) Run(ctx context.Context, fn func(context.Context) error) error {
	if current, ok := ctx.Value(loopKey{}).(*Loop); ok && current == l {
		return fn(ctx)
	}

	t := loopTask{ctx: ctx, fn: fn, done: make(chan error, 1)}

	select {
	case <-l.closed:
		return ErrExecutionContextClosed
	default:
	}

	select {
	case l.tasks <- t:
	case <-l.closed:
		return ErrExecutionContextClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the loop after the task in progress, if any, has finished.
// It is safe to call Close more than once. Close must not be called from a
// task running on the loop; use Shutdown with the task's context there.
func (l *Loop) Close() {
	_ = l.Shutdown(context.Background())
}

// Shutdown stops the loop and waits for the task in progress to finish or
// for ctx to be done. Called with the context of a task running on l, it
// only stops the loop: the loop exits once that task returns.
func (l *Loop) Shutdown(ctx context.Context) error {
	l.closeOnce.Do(func() {
		close(l.closed)
	})
	if l.OnLoop(ctx) {
		return nil
	}

	select {
	case <-l.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnLoop reports whether ctx belongs to work currently executing on l.
func (l *Loop) OnLoop(ctx context.Context) bool {
	current, ok := ctx.Value(loopKey{}).(*Loop)
	return ok && current == l
}

func (l *Loop) serve() {
	defer close(l.stopped)

	for {
		select {
		case <-l.closed:
			return
		case t := <-l.tasks:
			t.done <- l.execute(t)
		}
	}
}

func (l *Loop) execute(t loopTask) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: loop task: %v", ErrSubscriberPanicked, r)
		}
	}()

	if err := t.ctx.Err(); err != nil {
		return err
	}
	return t.fn(context.WithValue(t.ctx, loopKey{}, l))
}
