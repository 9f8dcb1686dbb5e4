package injector

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/wire"

	"github.com/zeusync/corridor/internal/config"
	"github.com/zeusync/corridor/internal/core/catalog"
	"github.com/zeusync/corridor/internal/core/events/bus"
	"github.com/zeusync/corridor/internal/core/observability/log"
	"github.com/zeusync/corridor/internal/core/replay"
	"github.com/zeusync/corridor/internal/core/runner"
	"github.com/zeusync/corridor/internal/core/scene"
	"github.com/zeusync/corridor/internal/core/streaming"
	"github.com/zeusync/corridor/internal/server"
)

// App is everything the run command needs. Recorder and Server are nil when
// disabled in the configuration.
type App struct {
	Config   config.Config
	Logger   *log.Logger
	Catalog  *catalog.Catalog
	Events   bus.EventBus
	Scene    *scene.Memory
	Window   *streaming.Window
	Walker   *runner.Walker
	Recorder *replay.Writer
	Server   *server.Server
	Runner   *runner.Runner
}

var LoggingSet = wire.NewSet(ProvideLogger)

var CatalogSet = wire.NewSet(ProvideCatalog, ProvideSampler)

var AppSet = wire.NewSet(
	LoggingSet,
	CatalogSet,
	ProvideEventBus,
	ProvideScene,
	ProvideWindow,
	ProvideWalker,
	ProvideRecorder,
	ProvideServer,
	ProvideRunner,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg config.Config) (*log.Logger, func(), error) {
	logger, err := log.NewWithOptions(cfg.LogOptions())
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideCatalog loads, schema-checks and builds the configured catalog.
func ProvideCatalog(cfg config.Config, logger *log.Logger) (*catalog.Catalog, error) {
	doc, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	c, err := doc.Build()
	if err != nil {
		return nil, err
	}
	logger.Info("Catalog loaded",
		log.String("path", cfg.Catalog.Path),
		log.Int("environments", len(c.Environments())),
		log.Int("interactables", len(c.Interactables())),
		log.String("digest", c.Digest()))
	return c, nil
}

// ProvideSampler seeds stream 0 of the configured seed, the same stream a
// replay of this run uses.
func ProvideSampler(cfg config.Config, c *catalog.Catalog) *catalog.Sampler {
	return catalog.NewSeededSampler(c, catalog.SeedFrom(cfg.Run.Seed, 0))
}

func ProvideEventBus() bus.EventBus {
	return bus.New()
}

func ProvideScene() *scene.Memory {
	return scene.NewMemory()
}

func ProvideWindow(cfg config.Config, sampler *catalog.Sampler, scn *scene.Memory, events bus.EventBus, logger *log.Logger) (*streaming.Window, func(), error) {
	w, err := streaming.NewWindow(cfg.Window, sampler, scn,
		streaming.WithLogger(logger),
		streaming.WithEventBus(events))
	if err != nil {
		return nil, nil, err
	}
	return w, func() {
		if err := w.Close(); err != nil {
			logger.Error("Failed to release corridor", log.Error(err))
		}
	}, nil
}

func ProvideWalker(cfg config.Config) *runner.Walker {
	return runner.NewWalker(mgl64.Vec3{}, cfg.Run.StartYawDegrees, cfg.Run.Speed, cfg.Run.Turns...)
}

func ProvideRecorder(cfg config.Config, c *catalog.Catalog, walker *runner.Walker, logger *log.Logger) (*replay.Writer, func(), error) {
	if cfg.Replay.Path == "" {
		return nil, func() {}, nil
	}
	w, err := replay.Create(cfg.Replay.Path, replay.Header{
		Seed:          cfg.Run.Seed,
		Stream:        0,
		CatalogDigest: c.Digest(),
		Window:        cfg.Window,
		Start:         replay.FromPose(walker.Pose()),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create replay %s: %w", cfg.Replay.Path, err)
	}
	logger.Info("Recording run", log.String("path", cfg.Replay.Path))
	return w, func() {
		if err := w.Close(); err != nil {
			logger.Error("Failed to close replay", log.Error(err))
		}
	}, nil
}

// ProvideServer builds the viewer server without starting it. The cleanup
// releases its bus subscription whether or not it was started.
func ProvideServer(cfg config.Config, events bus.EventBus, logger *log.Logger) (*server.Server, func(), error) {
	if !cfg.Server.Enabled {
		return nil, func() {}, nil
	}
	s, err := server.NewServer(server.Config{
		Addr:            cfg.Server.Addr,
		ClientBuffer:    cfg.Server.ClientBuffer,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, events, logger)
	if err != nil {
		return nil, nil, err
	}
	return s, func() {
		if err := s.Close(); err != nil {
			logger.Warn("Failed to close viewer feed", log.Error(err))
		}
	}, nil
}

func ProvideRunner(cfg config.Config, window *streaming.Window, walker *runner.Walker, recorder *replay.Writer, logger *log.Logger) (*runner.Runner, error) {
	opts := []runner.Option{runner.WithLogger(logger)}
	if recorder != nil {
		opts = append(opts, runner.WithRecorder(recorder))
	}
	return runner.New(cfg.RunnerConfig(), window, walker, opts...)
}
