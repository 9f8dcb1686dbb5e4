package log

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"":        LevelInfo,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLoggerFieldsAndLevel(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core), LevelInfo)

	l.Debug("hidden")
	l.With(String("component", "window")).Info("advanced",
		Int("len", 5),
		Vec3("cursor", mgl64.Vec3{0, 0, 60}),
		Error(errors.New("boom")))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "advanced", entry.Message)

	ctx := entry.ContextMap()
	assert.Equal(t, "window", ctx["component"])
	assert.EqualValues(t, 5, ctx["len"])
	assert.Equal(t, []interface{}{0.0, 0.0, 60.0}, ctx["cursor"])
	assert.Equal(t, "boom", ctx["error"])

	l.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, l.GetLevel())
	l.Debug("visible")
	assert.Equal(t, 2, logs.Len())
}

func TestNopLoggerDiscards(t *testing.T) {
	l := NewNop()
	l.Error("nothing", Bool("ok", true))
	assert.Equal(t, LevelError, l.GetLevel())
}
