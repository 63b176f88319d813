package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mediator/core/logger"
)

func TestErrorAttrs(t *testing.T) {
	t.Parallel()

	t.Run("nil error yields empty attr", func(t *testing.T) {
		t.Parallel()
		assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
	})

	t.Run("error attr", func(t *testing.T) {
		t.Parallel()
		err := errors.New("boom")
		attr := logger.Error(err)
		assert.Equal(t, "error", attr.Key)
		assert.Equal(t, err, attr.Value.Any())
	})

	t.Run("errors skips nil entries", func(t *testing.T) {
		t.Parallel()
		attr := logger.Errors(nil, errors.New("a"), nil, errors.New("b"))
		assert.Equal(t, "errors", attr.Key)

		group := attr.Value.Group()
		assert.Len(t, group, 2)
		assert.Equal(t, "1", group[0].Key)
		assert.Equal(t, "3", group[1].Key)
	})

	t.Run("errors with only nil", func(t *testing.T) {
		t.Parallel()
		assert.True(t, logger.Errors(nil, nil).Equal(slog.Attr{}))
	})
}

func TestMessagingAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "message", logger.Message("Ping").Key)
	assert.Equal(t, "Ping", logger.Message("Ping").Value.String())
	assert.True(t, logger.MessageID("").Equal(slog.Attr{}))
	assert.Equal(t, "abc", logger.MessageID("abc").Value.String())
	assert.True(t, logger.MessageKind("").Equal(slog.Attr{}))
	assert.Equal(t, "stream", logger.MessageKind("stream").Value.String())
	assert.True(t, logger.SubscriptionID("").Equal(slog.Attr{}))
	assert.True(t, logger.Panic(nil).Equal(slog.Attr{}))
	assert.Equal(t, "notify", logger.Component("notify").Value.String())
	assert.Equal(t, int64(4), logger.Count("live", 4).Value.Int64())
}
