package mediator

import (
	"log/slog"
	"time"
)

// Option configures a Mediator.
type Option func(*Mediator)

// WithLogger sets the mediator logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mediator) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithConfig applies cfg. Options listed after it override its fields.
//
// Example:
//
//	cfg, err := mediator.LoadConfig()
//	if err != nil {
//	    return err
//	}
//	m := mediator.New(c, builder, mediator.WithConfig(cfg))
func WithConfig(cfg Config) Option {
	return func(m *Mediator) {
		m.publishLimit = cfg.PublishConcurrency
		m.recoverPanics = cfg.RecoverPanics
		m.handlerTimeout = cfg.HandlerTimeout
	}
}

// WithPublishConcurrency limits how many notification handlers run at once
// for a single Publish. n <= 0 means unbounded.
func WithPublishConcurrency(n int) Option {
	return func(m *Mediator) {
		m.publishLimit = n
	}
}

// WithRecoverPanics enables or disables panic recovery.
func WithRecoverPanics(enabled bool) Option {
	return func(m *Mediator) {
		m.recoverPanics = enabled
	}
}

// WithHandlerTimeout bounds every Send and Publish handler call with d.
func WithHandlerTimeout(d time.Duration) Option {
	return func(m *Mediator) {
		m.handlerTimeout = d
	}
}
