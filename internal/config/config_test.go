package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/corridor/internal/core/catalog"
	"github.com/zeusync/corridor/internal/core/observability/log"
	"github.com/zeusync/corridor/internal/core/runner"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2, cfg.Window.StartingBlankTiles)
	assert.Equal(t, 5, cfg.Window.TotalTiles)
	assert.Equal(t, 25.0, cfg.Window.TileUpdateDistance)
	assert.Equal(t, 1.0, cfg.Window.TileKerning)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`
log:
  level: debug
window:
  total_world_tiles: 8
run:
  ticks: 10
  turns:
    - at_distance: 100
      yaw_degrees: 90
server:
  enabled: true
  shutdown_timeout: 2s
`))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Window.TotalTiles)
	assert.Equal(t, 2, cfg.Window.StartingBlankTiles)
	assert.Equal(t, 10, cfg.Run.Ticks)
	assert.Equal(t, []runner.Turn{{AtDistance: 100, YawDegrees: 90}}, cfg.Run.Turns)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, ":8089", cfg.Server.Addr)
	assert.Equal(t, log.LevelDebug, cfg.LogOptions().Level)
	assert.Equal(t, 10, cfg.RunnerConfig().Ticks)
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader("window:\n  tiles: 3\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Window.TileKerning = 0
	cfg.Run.Speed = 0
	cfg.Server.Enabled = true
	cfg.Server.ClientBuffer = 0

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, catalog.ErrConfiguration)
	for _, want := range []string{"loud", "kerning", "speed", "client buffer"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corridor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("run:\n  seed: abc\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.Run.Seed)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestShippedConfigIsValid(t *testing.T) {
	cfg, err := Load("../../configs/corridor.yaml")
	require.NoError(t, err)
	assert.Equal(t, "configs/catalog.yaml", cfg.Catalog.Path)
	assert.Len(t, cfg.Run.Turns, 1)
}
