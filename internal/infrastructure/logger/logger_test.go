package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestNew(t *testing.T) {
	for _, mode := range []string{"", "quiet", "development", "dev", "production", "PROD"} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		assert.NotNil(t, l.SugaredLogger)
	}

	_, err := New("verbose")
	assert.Error(t, err)
}

func TestLogger_WritesKeysAndValues(t *testing.T) {
	l, logs := observed()

	l.Info("created content from template", "template_id", "t1", "content_type", "node")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "created content from template", entries[0].Message)
	assert.Equal(t, map[string]any{"template_id": "t1", "content_type": "node"}, entries[0].ContextMap())
}

func TestLogger_RedactsSecrets(t *testing.T) {
	l, logs := observed()

	l.With("qdrant_api_key", "abc").Warn("connecting", "OPENAI_API_KEY", "sk-123", "host", "localhost")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "[REDACTED]", fields["qdrant_api_key"])
	assert.Equal(t, "[REDACTED]", fields["OPENAI_API_KEY"])
	assert.Equal(t, "localhost", fields["host"])
}

func TestRedact_OddLength(t *testing.T) {
	assert.Equal(t, []any{"a", 1, "dangling"}, redact([]any{"a", 1, "dangling"}))
	assert.Empty(t, redact(nil))
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Debug("nothing")
	l.Error("still nothing", "k", "v")
	l.Sync()
}
