package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/zeusync/corridor/internal/core/catalog"
	"github.com/zeusync/corridor/internal/core/observability/log"
	"github.com/zeusync/corridor/internal/core/scene"
	"github.com/zeusync/corridor/internal/core/streaming"
	"github.com/zeusync/corridor/pkg/concurrent"
)

// SoakConfig runs many independent corridors over one shared catalog.
type SoakConfig struct {
	Runs        int
	Parallelism int
	// Seed is combined with the run index to seed each corridor.
	Seed   string
	Window streaming.Config
	Run    Config
	// NewActor builds a fresh actor for every run.
	NewActor func() Actor
}

type SoakResult struct {
	Run   int
	Seed  uint64
	Stats Stats
}

// Soak runs cfg.Runs corridors with invariant checks enabled on every tick
// and verifies that each one releases every scene instance when closed.
// Results are in run order.
func Soak(ctx context.Context, c *catalog.Catalog, cfg SoakConfig, logger log.Log) ([]SoakResult, error) {
	if cfg.Runs <= 0 || cfg.NewActor == nil {
		return nil, fmt.Errorf("%w: soak needs runs and an actor factory", ErrInvalidRun)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	logger = logger.With(log.String("component", "soak"))

	runCfg := cfg.Run
	runCfg.CheckInvariants = true
	runCfg.TickRate = 0
	if err := runCfg.Validate(); err != nil {
		return nil, err
	}

	runs := make([]int, cfg.Runs)
	for i := range runs {
		runs[i] = i
	}

	results, err := concurrent.Map(ctx, runs, cfg.Parallelism, func(ctx context.Context, i int) (SoakResult, error) {
		seed := catalog.SeedFrom(cfg.Seed, uint64(i))
		res := SoakResult{Run: i, Seed: seed}

		mem := scene.NewMemory()
		window, err := streaming.NewWindow(cfg.Window, catalog.NewSeededSampler(c, seed), mem)
		if err != nil {
			return res, err
		}
		r, err := New(runCfg, window, cfg.NewActor())
		if err != nil {
			return res, err
		}

		res.Stats, err = r.Run(ctx)
		err = errors.Join(err, window.Close())
		if err != nil {
			return res, fmt.Errorf("soak run %d (seed %d): %w", i, seed, err)
		}
		if live := mem.Stats().Live; live != 0 {
			return res, fmt.Errorf("%w: soak run %d leaked %d instances", ErrInvariant, i, live)
		}
		logger.Debug("Soak run finished",
			log.Int("run", i),
			log.Uint64("advances", res.Stats.Advances))
		return res, nil
	})
	if err != nil {
		logger.Error("Soak failed", log.Error(err))
		return nil, err
	}

	logger.Info("Soak finished", log.Int("runs", len(results)))
	return results, nil
}
