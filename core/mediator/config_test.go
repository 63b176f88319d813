package mediator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mediator/core/config"
	"github.com/dmitrymomot/mediator/core/mediator"
)

func TestConfig_FromEnvironment(t *testing.T) {
	t.Setenv("MEDIATOR_PUBLISH_CONCURRENCY", "8")
	t.Setenv("MEDIATOR_RECOVER_PANICS", "false")
	t.Setenv("MEDIATOR_HANDLER_TIMEOUT", "250ms")

	var cfg mediator.Config
	require.NoError(t, config.Parse(&cfg))

	assert.Equal(t, 8, cfg.PublishConcurrency)
	assert.False(t, cfg.RecoverPanics)
	assert.Equal(t, 250*time.Millisecond, cfg.HandlerTimeout)
}

func TestConfig_Defaults(t *testing.T) {
	var cfg mediator.Config
	require.NoError(t, config.Parse(&cfg))

	assert.Equal(t, mediator.DefaultConfig(), cfg)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := mediator.LoadConfig()
	require.NoError(t, err)

	again, err := mediator.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}
