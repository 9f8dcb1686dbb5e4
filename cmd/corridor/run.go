package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/zeusync/corridor/internal/config"
	"github.com/zeusync/corridor/internal/core/observability/log"
	"github.com/zeusync/corridor/internal/injector"
)

const ticksUsage = "ticks to run, overrides run.ticks (0 runs until interrupted and needs run.tick_rate > 0)"

// runConfig parses the run flags and applies them over the loaded config.
func runConfig(args []string) (config.Config, error) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	ticks := fs.Int("ticks", -1, ticksUsage)
	tickRate := fs.Float64("tick-rate", -1, "ticks per second, overrides run.tick_rate (0 runs unpaced)")
	record := fs.String("record", "", "write a replay to this path, overrides replay.path")
	serve := fs.Bool("serve", false, "start the viewer feed server")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return config.Config{}, err
	}
	if *ticks >= 0 {
		cfg.Run.Ticks = *ticks
	}
	if *tickRate >= 0 {
		cfg.Run.TickRate = *tickRate
	}
	if *record != "" {
		cfg.Replay.Path = *record
	}
	if *serve {
		cfg.Server.Enabled = true
	}
	return cfg, cfg.Validate()
}

func runCmd(ctx context.Context, args []string) error {
	cfg, err := runConfig(args)
	if err != nil {
		return err
	}

	app, cleanup, err := injector.InitializeApp(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if app.Server != nil {
		if err := app.Server.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := app.Server.Stop(context.Background()); err != nil {
				app.Logger.Warn("Server stop failed", log.Error(err))
			}
		}()
	}

	stats, err := app.Runner.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	fmt.Printf("ticks=%d advances=%d off_axis=%d cursor=%v elapsed=%s\n",
		stats.Ticks, stats.Advances, stats.OffAxisTicks, [3]float64(stats.Cursor), stats.Elapsed)
	return nil
}
