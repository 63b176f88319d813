package mediator

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/dmitrymomot/mediator/core/container"
	"github.com/dmitrymomot/mediator/core/logger"
)

// Mediator routes requests, notifications and stream requests to the
// handlers registered in a container, wrapping each call in the matching
// behaviors from a PipelineBuilder.
//
// Use the package-level Send, Publish and Stream functions to dispatch.
//
// Example:
//
//	c := container.New()
//	mediator.HandleRequest(c, func(ctx context.Context, q GetUser) (User, error) {
//	    return repo.Find(ctx, q.ID)
//	})
//
//	builder := mediator.NewPipelineBuilder(c)
//	_ = mediator.AddGlobalBehavior(builder, func(container.Resolver) (*mediator.LoggingBehavior, error) {
//	    return mediator.NewLoggingBehavior(logger), nil
//	})
//
//	m := mediator.New(c, builder, mediator.WithLogger(logger))
//	user, err := mediator.Send[User](ctx, m, GetUser{ID: "42"})
type Mediator struct {
	resolver container.Resolver
	pipeline *PipelineBuilder
	logger   *slog.Logger

	publishLimit   int
	recoverPanics  bool
	handlerTimeout time.Duration
}

// New creates a mediator resolving handlers and behaviors from resolver.
// A nil builder means no behaviors.
func New(resolver container.Resolver, builder *PipelineBuilder, opts ...Option) *Mediator {
	if resolver == nil {
		panic("mediator: nil resolver")
	}

	m := &Mediator{
		resolver: resolver,
		pipeline: builder,
		logger:   slog.New(slog.DiscardHandler),
	}
	WithConfig(DefaultConfig())(m)

	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logger.Component("mediator"))
	return m
}

// NewDefault wires a mediator into c: it creates a PipelineBuilder, lets
// configure register behaviors on it, and registers both the builder and
// the mediator as singletons so handlers can resolve them.
//
// Example:
//
//	m, err := mediator.NewDefault(c, func(b *mediator.PipelineBuilder) error {
//	    return mediator.AddGlobalBehavior(b, func(container.Resolver) (*mediator.LoggingBehavior, error) {
//	        return mediator.NewLoggingBehavior(logger), nil
//	    })
//	})
func NewDefault(c *container.Container, configure func(*PipelineBuilder) error, opts ...Option) (*Mediator, error) {
	builder := NewPipelineBuilder(c)
	if configure != nil {
		if err := configure(builder); err != nil {
			return nil, fmt.Errorf("configure pipeline: %w", err)
		}
	}

	m := New(c, builder, opts...)
	container.ProvideValue(c, builder)
	container.ProvideValue(c, m)
	return m, nil
}

// Pipeline returns the builder the mediator reads behaviors from.
func (m *Mediator) Pipeline() *PipelineBuilder {
	return m.pipeline
}

func (m *Mediator) behaviors(msgType reflect.Type) ([]Behavior, error) {
	if m.pipeline == nil {
		return nil, nil
	}

	keys := m.pipeline.ResolveForMessage(msgType, false)
	behaviors := make([]Behavior, 0, len(keys))
	for _, key := range keys {
		instance, err := m.resolver.ResolveRequired(key)
		if err != nil {
			return nil, fmt.Errorf("resolve behavior %s: %w", key, err)
		}
		b, ok := instance.(Behavior)
		if !ok {
			return nil, fmt.Errorf("%w: %s resolved to %T", ErrInvalidBehaviorShape, key, instance)
		}
		behaviors = append(behaviors, b)
	}
	return behaviors, nil
}

func (m *Mediator) streamBehaviors(msgType reflect.Type) ([]StreamBehavior, error) {
	if m.pipeline == nil {
		return nil, nil
	}

	keys := m.pipeline.ResolveForMessage(msgType, true)
	behaviors := make([]StreamBehavior, 0, len(keys))
	for _, key := range keys {
		instance, err := m.resolver.ResolveRequired(key)
		if err != nil {
			return nil, fmt.Errorf("resolve stream behavior %s: %w", key, err)
		}
		b, ok := instance.(StreamBehavior)
		if !ok {
			return nil, fmt.Errorf("%w: %s resolved to %T", ErrInvalidBehaviorShape, key, instance)
		}
		behaviors = append(behaviors, b)
	}
	return behaviors, nil
}

var messageNameCache sync.Map

// messageName returns a readable name for a message type.
func messageName(t reflect.Type) string {
	if name, ok := messageNameCache.Load(t); ok {
		return name.(string)
	}

	original := t
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	name := t.String()
	if t.Name() != "" {
		name = t.Name()
	}

	messageNameCache.Store(original, name)
	return name
}
