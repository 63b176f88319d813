package metrics

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"reflect"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/mediator/core/container"
	"github.com/dmitrymomot/mediator/core/mediator"
	"github.com/dmitrymomot/mediator/core/notify"
)

const (
	statusSuccess  = "success"
	statusError    = "error"
	statusCanceled = "canceled"
)

// Collector holds the Prometheus metrics recorded by Behavior.
type Collector struct {
	dispatched  *prometheus.CounterVec   // message, kind, status
	duration    *prometheus.HistogramVec // message, kind
	inFlight    *prometheus.GaugeVec     // kind
	streamItems *prometheus.CounterVec   // message
}

// Option configures a Collector.
type Option func(*options)

type options struct {
	namespace string
	buckets   []float64
}

// WithNamespace sets the metric namespace. Defaults to "mediator".
func WithNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets ...float64) Option {
	return func(o *options) {
		if len(buckets) > 0 {
			o.buckets = buckets
		}
	}
}

// NewCollector creates the dispatch metrics and registers them with reg.
// Metrics already registered by an earlier collector are reused.
func NewCollector(reg prometheus.Registerer, opts ...Option) (*Collector, error) {
	o := options{
		namespace: "mediator",
		buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Collector{
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "messages_total",
			Help:      "Total number of dispatched messages",
		}, []string{"message", "kind", "status"}),

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Name:      "message_duration_seconds",
			Help:      "Time spent in the pipeline per message, in seconds",
			Buckets:   o.buckets,
		}, []string{"message", "kind"}),

		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: o.namespace,
			Name:      "messages_in_flight",
			Help:      "Number of messages currently in the pipeline",
		}, []string{"kind"}),

		streamItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "stream_items_total",
			Help:      "Total number of items delivered by streams",
		}, []string{"message"}),
	}

	var err error
	if c.dispatched, err = register(reg, c.dispatched); err != nil {
		return nil, err
	}
	if c.duration, err = register(reg, c.duration); err != nil {
		return nil, err
	}
	if c.inFlight, err = register(reg, c.inFlight); err != nil {
		return nil, err
	}
	if c.streamItems, err = register(reg, c.streamItems); err != nil {
		return nil, err
	}
	return c, nil
}

// Behavior returns a pipeline behavior that records into c.
func (c *Collector) Behavior() *Behavior {
	return &Behavior{c: c}
}

// Install registers the collector's behavior on builder for every message type.
func Install(builder *mediator.PipelineBuilder, c *Collector) error {
	return mediator.AddGlobalBehavior(builder, func(container.Resolver) (*Behavior, error) {
		return c.Behavior(), nil
	})
}

// RegisterHubGauge exposes the hub's live subscription count as a gauge.
func RegisterHubGauge(reg prometheus.Registerer, hub *notify.Hub, namespace string) error {
	if namespace == "" {
		namespace = "mediator"
	}
	gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "subscriptions",
		Help:      "Number of live ad-hoc notification subscriptions",
	}, func() float64 {
		return float64(hub.RegisteredDelegateCount())
	})

	if err := reg.Register(gauge); err != nil {
		return fmt.Errorf("register subscriptions gauge: %w", err)
	}
	return nil
}

// Behavior is a mediator behavior recording dispatch counts, durations and
// stream items. It applies to Send, Publish and Stream.
type Behavior struct {
	c *Collector
}

// Handle implements mediator.Behavior.
func (b *Behavior) Handle(ctx context.Context, msg any, next mediator.Next) (any, error) {
	name, kind := labels(ctx, msg)

	gauge := b.c.inFlight.WithLabelValues(kind)
	gauge.Inc()
	defer gauge.Dec()

	start := time.Now()
	out, err := next(ctx)

	b.c.duration.WithLabelValues(name, kind).Observe(time.Since(start).Seconds())
	b.c.dispatched.WithLabelValues(name, kind, status(err)).Inc()
	return out, err
}

// HandleStream implements mediator.StreamBehavior. The duration covers the
// whole time the consumer spends pulling the stream.
func (b *Behavior) HandleStream(ctx context.Context, msg any, next mediator.StreamNext) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		name, kind := labels(ctx, msg)

		gauge := b.c.inFlight.WithLabelValues(kind)
		gauge.Inc()
		defer gauge.Dec()

		start := time.Now()
		items := b.c.streamItems.WithLabelValues(name)

		var lastErr error
		for v, err := range next(ctx) {
			if err != nil {
				lastErr = err
			} else {
				items.Inc()
			}
			if !yield(v, err) {
				break
			}
		}

		b.c.duration.WithLabelValues(name, kind).Observe(time.Since(start).Seconds())
		b.c.dispatched.WithLabelValues(name, kind, status(lastErr)).Inc()
	}
}

func labels(ctx context.Context, msg any) (name, kind string) {
	name = mediator.MessageName(ctx)
	if name == "" {
		name = reflect.TypeOf(msg).String()
	}
	return name, mediator.MessageKind(ctx).String()
}

func status(err error) string {
	switch {
	case err == nil:
		return statusSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return statusCanceled
	default:
		return statusError
	}
}

// register registers col with reg, returning the already registered
// collector when an identical one exists.
func register[C prometheus.Collector](reg prometheus.Registerer, col C) (C, error) {
	if err := reg.Register(col); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return col, fmt.Errorf("register metric: %w", err)
	}
	return col, nil
}
