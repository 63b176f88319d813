package mediator

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/dmitrymomot/mediator/core/container"
)

var (
	behaviorType       = reflect.TypeFor[Behavior]()
	streamBehaviorType = reflect.TypeFor[StreamBehavior]()
)

type ruleMode int

const (
	ruleGlobal ruleMode = iota
	ruleInclude
	ruleExclude
)

// Rule decides which message types a behavior applies to.
// Types are compared exactly; no interface or embedding compatibility.
type Rule struct {
	mode  ruleMode
	types map[reflect.Type]struct{}
}

// Global applies a behavior to every message type.
func Global() Rule {
	return Rule{mode: ruleGlobal}
}

// GlobalExcept applies a behavior to every message type except types.
func GlobalExcept(types ...reflect.Type) Rule {
	return Rule{mode: ruleExclude, types: typeSet(types)}
}

// For applies a behavior only to types.
func For(types ...reflect.Type) Rule {
	return Rule{mode: ruleInclude, types: typeSet(types)}
}

// TypeOf returns the message type key for T, for use with For and GlobalExcept.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Matches reports whether the rule applies to msgType.
func (r Rule) Matches(msgType reflect.Type) bool {
	switch r.mode {
	case ruleInclude:
		_, ok := r.types[msgType]
		return ok
	case ruleExclude:
		_, ok := r.types[msgType]
		return !ok
	default:
		return true
	}
}

func typeSet(types []reflect.Type) map[reflect.Type]struct{} {
	set := make(map[reflect.Type]struct{}, len(types))
	for _, t := range types {
		if t != nil {
			set[t] = struct{}{}
		}
	}
	return set
}

type behaviorEntry struct {
	key  reflect.Type
	rule Rule
}

// PipelineBuilder keeps the behavior registration tables: one for
// Send/Publish behaviors and one for stream behaviors. Behavior
// instances are registered with the container as transient services,
// so each dispatch gets fresh instances.
//
// Tables are copy-on-write; lookups never block registration for long
// and always see a consistent table.
type PipelineBuilder struct {
	registrar container.Registrar

	mu      sync.RWMutex
	request []behaviorEntry
	stream  []behaviorEntry
}

// NewPipelineBuilder creates a builder that registers behaviors with r.
func NewPipelineBuilder(r container.Registrar) *PipelineBuilder {
	if r == nil {
		panic("mediator: nil registrar")
	}
	return &PipelineBuilder{registrar: r}
}

// RegisterBehavior registers behavior type B with rule.
//
// B must implement Behavior, StreamBehavior, or both; it is added to each
// table whose interface it implements. Registering B again replaces its
// rule and factory but keeps its original position in the chain.
//
// Example:
//
//	err := mediator.RegisterBehavior(builder, func(container.Resolver) (*AuditBehavior, error) {
//	    return &AuditBehavior{}, nil
//	}, mediator.For(mediator.TypeOf[DeleteUser]()))
func RegisterBehavior[B any](b *PipelineBuilder, factory func(container.Resolver) (B, error), rule Rule) error {
	key := reflect.TypeFor[B]()

	isRequest := key.Implements(behaviorType)
	isStream := key.Implements(streamBehaviorType)
	if !isRequest && !isStream {
		return fmt.Errorf("%w: %s implements neither Behavior nor StreamBehavior", ErrInvalidBehaviorShape, key)
	}
	if factory == nil {
		return fmt.Errorf("%w: nil factory for %s", container.ErrInvalidFactory, key)
	}

	container.Provide(b.registrar, factory)

	b.mu.Lock()
	defer b.mu.Unlock()

	if isRequest {
		b.request = upsert(b.request, key, rule)
	}
	if isStream {
		b.stream = upsert(b.stream, key, rule)
	}
	return nil
}

// AddGlobalBehavior registers B for every message type.
func AddGlobalBehavior[B any](b *PipelineBuilder, factory func(container.Resolver) (B, error)) error {
	return RegisterBehavior(b, factory, Global())
}

// AddGlobalBehaviorExcept registers B for every message type except types.
func AddGlobalBehaviorExcept[B any](b *PipelineBuilder, factory func(container.Resolver) (B, error), types ...reflect.Type) error {
	return RegisterBehavior(b, factory, GlobalExcept(types...))
}

// AddBehaviorFor registers B only for types.
func AddBehaviorFor[B any](b *PipelineBuilder, factory func(container.Resolver) (B, error), types ...reflect.Type) error {
	return RegisterBehavior(b, factory, For(types...))
}

// ResolveForMessage returns, in registration order, the behavior keys whose
// rule matches msgType. isStream selects the stream table.
func (b *PipelineBuilder) ResolveForMessage(msgType reflect.Type, isStream bool) []reflect.Type {
	b.mu.RLock()
	table := b.request
	if isStream {
		table = b.stream
	}
	b.mu.RUnlock()

	var keys []reflect.Type
	for _, e := range table {
		if e.rule.Matches(msgType) {
			keys = append(keys, e.key)
		}
	}
	return keys
}

// Len returns the number of registered request and stream behaviors.
func (b *PipelineBuilder) Len() (request, stream int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.request), len(b.stream)
}

// upsert returns a new table with key's rule set, never mutating table.
func upsert(table []behaviorEntry, key reflect.Type, rule Rule) []behaviorEntry {
	next := slices.Clone(table)
	if i := slices.IndexFunc(next, func(e behaviorEntry) bool { return e.key == key }); i >= 0 {
		next[i].rule = rule
		return next
	}
	return append(next, behaviorEntry{key: key, rule: rule})
}
