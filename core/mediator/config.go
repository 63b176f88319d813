package mediator

import (
	"time"

	"github.com/dmitrymomot/mediator/core/config"
)

// Config holds environment-driven mediator settings.
type Config struct {
	// PublishConcurrency limits concurrently running notification handlers
	// per Publish. Zero or negative means unbounded.
	PublishConcurrency int `env:"MEDIATOR_PUBLISH_CONCURRENCY" envDefault:"0"`

	// RecoverPanics converts handler and behavior panics into ErrHandlerPanicked.
	RecoverPanics bool `env:"MEDIATOR_RECOVER_PANICS" envDefault:"true"`

	// HandlerTimeout bounds every Send and Publish handler call. Zero disables it.
	HandlerTimeout time.Duration `env:"MEDIATOR_HANDLER_TIMEOUT" envDefault:"0s"`
}

// DefaultConfig returns the settings used when no configuration is applied.
func DefaultConfig() Config {
	return Config{RecoverPanics: true}
}

// LoadConfig reads Config from the environment (and .env, if present).
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
