// Package runner drives a streaming window headlessly: each tick it advances
// timed effects, moves the actor, ticks the window and records the outcome.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/corridor/internal/core/effects"
	"github.com/zeusync/corridor/internal/core/observability/log"
	"github.com/zeusync/corridor/internal/core/replay"
	"github.com/zeusync/corridor/internal/core/streaming"
	"github.com/zeusync/corridor/internal/core/systems/physics"
)

const (
	introHoldEffect = "intro-hold"
	introEffect     = "intro"
)

var (
	ErrInvalidRun = errors.New("invalid run configuration")
	ErrInvariant  = errors.New("corridor invariant violated")
)

// Actor supplies the reference pose. Step moves it by one tick.
type Actor interface {
	Pose() physics.Pose
	Step(dt float64) physics.Pose
}

type Config struct {
	// Ticks to run; zero runs until the context is cancelled.
	Ticks int
	// DeltaTime is the simulated seconds per tick.
	DeltaTime float64
	// TickRate paces ticks in real time, in hertz. Zero runs unpaced.
	TickRate float64
	// IntroHold keeps the overlay opaque for this many simulated seconds
	// before the intro fade starts. The actor is held throughout.
	IntroHold float64
	// IntroFade holds the actor still for this many simulated seconds.
	IntroFade float64
	// CheckInvariants verifies queue length and blank prefix after every tick.
	CheckInvariants bool
}

func (c Config) Validate() error {
	var errs []error
	if c.Ticks < 0 {
		errs = append(errs, fmt.Errorf("ticks must not be negative, got %d", c.Ticks))
	}
	if c.DeltaTime <= 0 {
		errs = append(errs, fmt.Errorf("delta time must be positive, got %g", c.DeltaTime))
	}
	if c.TickRate < 0 {
		errs = append(errs, fmt.Errorf("tick rate must not be negative, got %g", c.TickRate))
	}
	if c.IntroHold < 0 {
		errs = append(errs, fmt.Errorf("intro hold must not be negative, got %g", c.IntroHold))
	}
	if c.IntroFade < 0 {
		errs = append(errs, fmt.Errorf("intro fade must not be negative, got %g", c.IntroFade))
	}
	if c.Ticks == 0 && c.TickRate == 0 {
		errs = append(errs, errors.New("an unbounded run needs a tick rate"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRun, errors.Join(errs...))
	}
	return nil
}

type Stats struct {
	Ticks        uint64
	Advances     uint64
	OffAxisTicks uint64
	HeldTicks    uint64
	Cursor       mgl64.Vec3
	Elapsed      time.Duration

	// ReleaseFailures counts advances whose evicted segment was not released.
	ReleaseFailures uint64
}

type Option func(*Runner)

func WithLogger(l log.Log) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRecorder writes a replay.TickRecord after every tick.
func WithRecorder(rec replay.Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

type Runner struct {
	cfg      Config
	window   *streaming.Window
	actor    Actor
	effects  *effects.Scheduler
	recorder replay.Recorder
	logger   log.Log
	started  time.Time
}

func New(cfg Config, window *streaming.Window, actor Actor, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if window == nil || actor == nil {
		return nil, fmt.Errorf("%w: window and actor are required", ErrInvalidRun)
	}
	r := &Runner{
		cfg:     cfg,
		window:  window,
		actor:   actor,
		effects: effects.NewScheduler(),
		logger:  log.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(log.String("component", "runner"))
	return r, nil
}

// Run initialises the window at the actor's pose and ticks until the
// configured count is reached, the context is cancelled or the window fails.
// Stats are valid even when an error is returned.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	r.started = time.Now()

	if err := r.window.Initialise(r.actor.Pose()); err != nil {
		return stats, err
	}
	if r.cfg.IntroHold > 0 {
		r.effects.Start(introHoldEffect, effects.NewDelay(r.cfg.IntroHold))
	} else {
		r.startIntroFade()
	}

	var pace <-chan time.Time
	if r.cfg.TickRate > 0 {
		ticker := time.NewTicker(time.Duration(float64(time.Second) / r.cfg.TickRate))
		defer ticker.Stop()
		pace = ticker.C
	}

	r.logger.Info("Run started",
		log.Int("ticks", r.cfg.Ticks),
		log.Float64("dt", r.cfg.DeltaTime),
		log.Float64("tick_rate", r.cfg.TickRate))

	offAxis := false
	for r.cfg.Ticks == 0 || stats.Ticks < uint64(r.cfg.Ticks) {
		if pace != nil {
			select {
			case <-ctx.Done():
				return r.finish(&stats, ctx.Err())
			case <-pace:
			}
		} else if err := ctx.Err(); err != nil {
			return r.finish(&stats, err)
		}

		stats.Ticks++
		if err := r.step(&stats, &offAxis); err != nil {
			return r.finish(&stats, err)
		}
	}
	return r.finish(&stats, nil)
}

func (r *Runner) startIntroFade() {
	if r.cfg.IntroFade > 0 {
		r.effects.Start(introEffect, effects.NewFade(1, 0, r.cfg.IntroFade))
	}
}

func (r *Runner) step(stats *Stats, offAxis *bool) error {
	for _, name := range r.effects.Advance(r.cfg.DeltaTime) {
		r.logger.Debug("Effect finished", log.String("effect", name), log.Uint64("tick", stats.Ticks))
		if name == introHoldEffect {
			r.startIntroFade()
		}
	}

	var pose physics.Pose
	if r.effects.Running(introHoldEffect) || r.effects.Running(introEffect) {
		pose = r.actor.Pose()
		stats.HeldTicks++
	} else {
		pose = r.actor.Step(r.cfg.DeltaTime)
	}

	aligned := physics.Classify(pose).Aligned()
	if !aligned {
		stats.OffAxisTicks++
		if !*offAxis {
			r.logger.Warn("Actor is off axis, corridor paused",
				log.Vec3("forward", pose.Forward), log.Uint64("tick", stats.Ticks))
		}
	}
	*offAxis = !aligned

	advanced, err := r.window.Tick(pose)
	switch {
	case errors.Is(err, streaming.ErrReleaseFailed):
		stats.ReleaseFailures++
	case err != nil:
		return err
	}
	if advanced {
		stats.Advances++
	}
	if r.cfg.CheckInvariants {
		if err := CheckInvariants(r.window); err != nil {
			return fmt.Errorf("tick %d: %w", stats.Ticks, err)
		}
	}

	if r.recorder != nil {
		rec := replay.TickRecord{
			Tick:     stats.Ticks,
			Pose:     replay.FromPose(pose),
			Advanced: advanced,
			Cursor:   [3]float64(r.window.Cursor()),
		}
		if head, ok := r.window.Head(); ok {
			rec.HeadSeq = head.Seq
		}
		if err := r.recorder.Record(rec); err != nil {
			return fmt.Errorf("record tick %d: %w", stats.Ticks, err)
		}
	}
	return nil
}

func (r *Runner) finish(stats *Stats, err error) (Stats, error) {
	stats.Cursor = r.window.Cursor()
	stats.Elapsed = time.Since(r.started)
	fields := []log.Field{
		log.Uint64("ticks", stats.Ticks),
		log.Uint64("advances", stats.Advances),
		log.Uint64("off_axis_ticks", stats.OffAxisTicks),
		log.Uint64("release_failures", stats.ReleaseFailures),
		log.Vec3("cursor", stats.Cursor),
	}
	switch {
	case err == nil:
		r.logger.Info("Run finished", fields...)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		r.logger.Info("Run cancelled", fields...)
	default:
		r.logger.Error("Run failed", append(fields, log.Error(err))...)
	}
	return *stats, err
}

// CheckInvariants verifies that the window holds exactly TotalTiles segments,
// ordered by sequence, with blank segments only in the initial prefix.
func CheckInvariants(w *streaming.Window) error {
	cfg := w.Config()
	segments := w.Segments()
	if len(segments) != cfg.TotalTiles {
		return fmt.Errorf("%w: %d segments, want %d", ErrInvariant, len(segments), cfg.TotalTiles)
	}
	for i, seg := range segments {
		if i > 0 && seg.Seq != segments[i-1].Seq+1 {
			return fmt.Errorf("%w: segment %d follows %d", ErrInvariant, seg.Seq, segments[i-1].Seq)
		}
		wantBlank := seg.Seq < uint64(cfg.StartingBlankTiles)
		if seg.Blank() != wantBlank {
			return fmt.Errorf("%w: segment %d blank=%t", ErrInvariant, seg.Seq, seg.Blank())
		}
		if seg.Position.Y() != 0 {
			return fmt.Errorf("%w: segment %d has height %g", ErrInvariant, seg.Seq, seg.Position.Y())
		}
	}
	return nil
}
