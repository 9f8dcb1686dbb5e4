package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/zeusync/corridor/internal/core/catalog"
	"github.com/zeusync/corridor/internal/core/observability/log"
	"github.com/zeusync/corridor/internal/core/replay"
	"github.com/zeusync/corridor/internal/core/scene"
	"github.com/zeusync/corridor/internal/core/streaming"
)

func replayCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	in := fs.String("in", "", "replay file, overrides replay.path")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	if *in != "" {
		cfg.Replay.Path = *in
	}
	if cfg.Replay.Path == "" {
		return fmt.Errorf("missing -in")
	}

	logger, err := log.NewWithOptions(cfg.LogOptions())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	r, err := replay.Open(cfg.Replay.Path)
	if err != nil {
		return err
	}
	defer r.Close()
	h := r.Header()

	doc, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	c, err := doc.Build()
	if err != nil {
		return err
	}
	if c.Digest() != h.CatalogDigest {
		return fmt.Errorf("%w: catalog digest %s, recording used %s", replay.ErrDivergence, c.Digest(), h.CatalogDigest)
	}

	window, err := streaming.NewWindow(h.Window,
		catalog.NewSeededSampler(c, catalog.SeedFrom(h.Seed, h.Stream)),
		scene.NewMemory(),
		streaming.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() { _ = window.Close() }()

	res, err := replay.Verify(ctx, r, window)
	if err != nil {
		return err
	}
	logger.Info("Replay verified",
		log.String("path", cfg.Replay.Path),
		log.Uint64("ticks", res.Ticks),
		log.Uint64("advances", res.Advances))
	fmt.Printf("ok ticks=%d advances=%d\n", res.Ticks, res.Advances)
	return nil
}
