package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/corridor/internal/core/catalog"
	"github.com/zeusync/corridor/internal/core/observability/log"
	"github.com/zeusync/corridor/internal/core/runner"
)

func soakCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("soak", flag.ExitOnError)
	runs := fs.Int("runs", 0, "number of corridors, overrides soak.runs")
	parallelism := fs.Int("parallelism", 0, "concurrent corridors, overrides soak.parallelism")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	if *runs > 0 {
		cfg.Soak.Runs = *runs
	}
	if *parallelism > 0 {
		cfg.Soak.Parallelism = *parallelism
	}
	if cfg.Run.Ticks == 0 {
		return fmt.Errorf("soak needs a bounded run.ticks")
	}

	logger, err := log.NewWithOptions(cfg.LogOptions())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	doc, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	c, err := doc.Build()
	if err != nil {
		return err
	}

	results, err := runner.Soak(ctx, c, runner.SoakConfig{
		Runs:        cfg.Soak.Runs,
		Parallelism: cfg.Soak.Parallelism,
		Seed:        cfg.Run.Seed,
		Window:      cfg.Window,
		Run:         cfg.RunnerConfig(),
		NewActor: func() runner.Actor {
			return runner.NewWalker(mgl64.Vec3{}, cfg.Run.StartYawDegrees, cfg.Run.Speed, cfg.Run.Turns...)
		},
	}, logger)
	if err != nil {
		return err
	}

	var advances uint64
	for _, res := range results {
		advances += res.Stats.Advances
	}
	fmt.Printf("runs=%d ticks_per_run=%d total_advances=%d catalog=%s\n",
		len(results), cfg.Run.Ticks, advances, c.Digest())
	return nil
}
