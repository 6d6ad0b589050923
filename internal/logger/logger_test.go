package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "Production", ""} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		require.NotNil(t, l.SugaredLogger)
	}
}

func TestProdSkipsDebug(t *testing.T) {
	l, err := New("prod")
	require.NoError(t, err)
	assert.False(t, l.SugaredLogger.Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.SugaredLogger.Desugar().Core().Enabled(zapcore.InfoLevel))
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("service", "Engine").Warn("lock held", "user_id", "u1")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "lock held", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "Engine", fields["service"])
	assert.Equal(t, "u1", fields["user_id"])
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := Nop()
	assert.Same(t, l, OrNop(l))
	OrNop(nil).Info("discarded")
}
