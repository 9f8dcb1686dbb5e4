// Package config loads the corridor command's YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/corridor/internal/core/observability/log"
	"github.com/zeusync/corridor/internal/core/runner"
	"github.com/zeusync/corridor/internal/core/streaming"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Log     LogConfig        `yaml:"log"`
	Window  streaming.Config `yaml:"window"`
	Catalog CatalogConfig    `yaml:"catalog"`
	Run     RunConfig        `yaml:"run"`
	Soak    SoakConfig       `yaml:"soak"`
	Server  ServerConfig     `yaml:"server"`
	Replay  ReplayConfig     `yaml:"replay"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Encoding is "json" or "console".
	Encoding string `yaml:"encoding"`
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

type RunConfig struct {
	Ticks     int     `yaml:"ticks"`
	DeltaTime float64 `yaml:"dt"`
	// TickRate paces the run in hertz; zero runs as fast as possible.
	TickRate float64 `yaml:"tick_rate"`
	Seed     string  `yaml:"seed"`
	// Speed is the walker's speed in world units per second.
	Speed           float64       `yaml:"speed"`
	StartYawDegrees float64       `yaml:"start_yaw_degrees"`
	IntroHold       float64       `yaml:"intro_hold_seconds"`
	IntroFade       float64       `yaml:"intro_fade_seconds"`
	Turns           []runner.Turn `yaml:"turns"`
}

type SoakConfig struct {
	Runs        int `yaml:"runs"`
	Parallelism int `yaml:"parallelism"`
}

type ServerConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Addr            string        `yaml:"addr"`
	ClientBuffer    int           `yaml:"client_buffer"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type ReplayConfig struct {
	// Path is where run writes its recording; empty disables recording.
	Path string `yaml:"path"`
}

func Default() Config {
	return Config{
		Log:     LogConfig{Level: "info", Encoding: "console"},
		Window:  streaming.DefaultConfig(),
		Catalog: CatalogConfig{Path: "configs/catalog.yaml"},
		Run: RunConfig{
			Ticks:     3600,
			DeltaTime: 1.0 / 60,
			Seed:      "corridor",
			Speed:     12,
			IntroFade: 1,
		},
		Soak: SoakConfig{Runs: 32, Parallelism: 8},
		Server: ServerConfig{
			Addr:            ":8089",
			ClientBuffer:    64,
			ShutdownTimeout: 5 * time.Second,
		},
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(bytes.NewReader(data))
}

func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every problem found, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Encoding != "json" && c.Log.Encoding != "console" {
		errs = append(errs, fmt.Errorf("log encoding must be json or console, got %q", c.Log.Encoding))
	}
	if err := c.Window.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Catalog.Path == "" {
		errs = append(errs, errors.New("catalog path is required"))
	}
	if err := c.RunnerConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Run.Speed <= 0 {
		errs = append(errs, fmt.Errorf("run speed must be positive, got %g", c.Run.Speed))
	}
	if c.Soak.Runs <= 0 || c.Soak.Parallelism <= 0 {
		errs = append(errs, fmt.Errorf("soak runs and parallelism must be positive, got %d and %d",
			c.Soak.Runs, c.Soak.Parallelism))
	}
	if c.Server.Enabled {
		if c.Server.Addr == "" {
			errs = append(errs, errors.New("server addr is required when the server is enabled"))
		}
		if c.Server.ClientBuffer <= 0 {
			errs = append(errs, fmt.Errorf("server client buffer must be positive, got %d", c.Server.ClientBuffer))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func (c Config) RunnerConfig() runner.Config {
	return runner.Config{
		Ticks:     c.Run.Ticks,
		DeltaTime: c.Run.DeltaTime,
		TickRate:  c.Run.TickRate,
		IntroHold: c.Run.IntroHold,
		IntroFade: c.Run.IntroFade,
	}
}

func (c Config) LogOptions() log.Options {
	level, _ := log.ParseLevel(c.Log.Level)
	return log.Options{Level: level, Encoding: c.Log.Encoding}
}
