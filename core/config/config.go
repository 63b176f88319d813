package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	cache      sync.Map // reflect.Type -> any (struct value)
	loadMu     sync.Mutex
	dotenvOnce sync.Once
)

// Load parses environment variables into cfg, caching the result per type.
// The first call for a given type reads the environment; later calls copy the
// cached value into cfg.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilConfig
	}

	key := reflect.TypeFor[T]()
	if cached, ok := cache.Load(key); ok {
		*cfg = cached.(T)
		return nil
	}

	loadMu.Lock()
	defer loadMu.Unlock()

	// Another goroutine may have loaded it while we waited
	if cached, ok := cache.Load(key); ok {
		*cfg = cached.(T)
		return nil
	}

	if err := Parse(cfg); err != nil {
		return err
	}

	cache.Store(key, *cfg)
	return nil
}

// MustLoad is like Load but panics on error.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

// Parse reads environment variables into cfg without touching the cache.
func Parse[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilConfig
	}

	loadDotenv()

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("%w: %T: %w", ErrParse, *cfg, err)
	}
	return nil
}

// loadDotenv loads .env once. A missing file is not an error.
func loadDotenv() {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})
}
