package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/corridor/internal/config"
)

const usage = `usage: corridor <command> [flags]

commands:
  run       stream a corridor ahead of a scripted walker
  soak      run many seeded corridors in parallel with invariant checks
  replay    verify a recorded run against a fresh corridor
  validate  check a catalog file and print its digest
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "run":
		err = runCmd(ctx, os.Args[2:])
	case "soak":
		err = soakCmd(ctx, os.Args[2:])
	case "replay":
		err = replayCmd(ctx, os.Args[2:])
	case "validate":
		err = validateCmd(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "corridor:", err)
		os.Exit(1)
	}
}

// loadConfig parses the shared -config flag plus any command flags
// registered on fs, then applies overrides.
func loadConfig(fs *flag.FlagSet, args []string) (config.Config, error) {
	path := fs.String("config", "", "configuration file (defaults are used when empty)")
	catalogPath := fs.String("catalog", "", "catalog file, overrides catalog.path")
	seed := fs.String("seed", "", "seed string, overrides run.seed")
	level := fs.String("log-level", "", "log level, overrides log.level")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg := config.Default()
	if *path != "" {
		var err error
		if cfg, err = config.Load(*path); err != nil {
			return config.Config{}, err
		}
	}
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
	}
	if *seed != "" {
		cfg.Run.Seed = *seed
	}
	if *level != "" {
		cfg.Log.Level = *level
	}
	return cfg, cfg.Validate()
}
