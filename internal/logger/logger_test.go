package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs_RedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{"api_key", "sk-123", "model", "gpt-4o-mini", "Authorization", "Bearer x"})

	assert.Equal(t, []interface{}{"api_key", "[REDACTED]", "model", "gpt-4o-mini", "Authorization", "[REDACTED]"}, out)
}

func TestSanitizeKVs_OddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"session", "abc", "dangling"})

	assert.Equal(t, []interface{}{"session", "abc", "dangling"}, out)
}

func TestLogger_WritesRedactedFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("component", "test").Info("hello", "token", "secret-value", "count", 3)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "[REDACTED]", fields["token"])
	assert.Equal(t, int64(3), fields["count"])
	assert.Equal(t, "test", fields["component"])
}

func TestNew_Modes(t *testing.T) {
	for _, mode := range []string{"development", "production"} {
		l, err := New(mode, false)
		require.NoError(t, err)
		require.NotNil(t, l)
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Debug("ignored")
	l.Sync()
}
