package streaming

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/corridor/internal/core/catalog"
	"github.com/zeusync/corridor/internal/core/events/bus"
	"github.com/zeusync/corridor/internal/core/observability/log"
	"github.com/zeusync/corridor/internal/core/scene"
	"github.com/zeusync/corridor/internal/core/systems/physics"
	"github.com/zeusync/corridor/pkg/sequence"
)

const (
	EventWindowInitialised = "corridor.window.initialised"
	EventSegmentAppended   = "corridor.segment.appended"
	EventSegmentEvicted    = "corridor.segment.evicted"

	eventSource = "streaming.window"
)

var (
	ErrNotInitialised = errors.New("streaming window is not initialised")
	// ErrHalted is returned by every Tick after a fatal failure.
	ErrHalted = errors.New("streaming window halted")
	// ErrReleaseFailed reports that an evicted segment could not be
	// released. The advance still happened and the window keeps running.
	ErrReleaseFailed = errors.New("evicted segment release failed")
)

// SegmentEvent is the payload of segment events.
type SegmentEvent struct {
	Segment SegmentInfo `json:"segment"`
	Cursor  [3]float64  `json:"cursor"`
	Facing  string      `json:"facing,omitempty"`
}

type Option func(*Window)

func WithLogger(l log.Log) Option {
	return func(w *Window) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithEventBus publishes segment lifecycle events to b.
func WithEventBus(b bus.EventBus) Option {
	return func(w *Window) { w.events = b }
}

// Window streams a fixed number of segments ahead of the reference actor.
// It is not safe for concurrent use: tick it from the goroutine that
// finalises the actor's pose, once per tick, after the pose is final.
type Window struct {
	cfg     Config
	sampler *catalog.Sampler
	scene   scene.Scene
	logger  log.Log
	events  bus.EventBus

	cursor           mgl64.Vec3
	segments         *sequence.Ring[*Segment]
	lastInteractable *catalog.InteractableTemplate
	nextSeq          uint64
	advances         uint64
	initialised      bool
	err              error
}

func NewWindow(cfg Config, sampler *catalog.Sampler, scn scene.Scene, opts ...Option) (*Window, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sampler == nil {
		return nil, fmt.Errorf("%w: sampler is required", catalog.ErrConfiguration)
	}
	if scn == nil {
		return nil, fmt.Errorf("%w: scene is required", catalog.ErrConfiguration)
	}

	w := &Window{
		cfg:      cfg,
		sampler:  sampler,
		scene:    scn,
		logger:   log.NewNop(),
		segments: sequence.NewRing[*Segment](cfg.TotalTiles),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(log.String("component", "streaming_window"))
	return w, nil
}

// Initialise rebuilds the corridor from the world origin: StartingBlankTiles
// environment-only segments followed by full segments until the queue holds
// TotalTiles. Existing segments are released first.
func (w *Window) Initialise(pose physics.Pose) error {
	if err := w.releaseAll(); err != nil {
		return err
	}
	w.cursor = mgl64.Vec3{}
	w.segments = sequence.NewRing[*Segment](w.cfg.TotalTiles)
	w.lastInteractable = nil
	w.nextSeq = 0
	w.advances = 0
	w.err = nil

	for i := 0; i < w.cfg.TotalTiles; i++ {
		seg, err := w.spawn(pose, i >= w.cfg.StartingBlankTiles)
		if err == nil {
			err = w.segments.Push(seg)
		}
		if err != nil {
			w.logger.Error("Failed to initialise corridor", log.Int("segment", i), log.Error(err))
			return errors.Join(err, w.releaseAll())
		}
		w.publish(EventSegmentAppended, seg, physics.Facing{})
	}
	w.initialised = true

	w.logger.Info("Corridor initialised",
		log.Int("segments", w.segments.Len()),
		log.Int("blank", w.cfg.StartingBlankTiles),
		log.Vec3("cursor", w.cursor))
	w.publishBatch(bus.NewEvent(EventWindowInitialised, eventSource, SegmentEvent{Cursor: [3]float64(w.cursor)}, nil))
	return nil
}

// Tick classifies the actor's facing and, when the actor is more than
// TileUpdateDistance past the head segment along it, evicts the head and
// appends one segment. It reports whether an advance happened. Off-axis
// facings do nothing.
func (w *Window) Tick(pose physics.Pose) (bool, error) {
	if w.err != nil {
		return false, w.err
	}
	if !w.initialised {
		return false, ErrNotInitialised
	}

	facing := physics.Classify(pose)
	if !facing.Aligned() {
		return false, nil
	}

	head, ok := w.segments.Peek()
	if !ok {
		return false, ErrNotInitialised
	}
	if !facing.AdvancedPast(pose.Position, head.Position, w.cfg.TileUpdateDistance) {
		return false, nil
	}

	advanced, err := w.advance(pose, facing)
	if err != nil && !advanced {
		w.err = fmt.Errorf("%w: %w", ErrHalted, err)
		w.logger.Error("Corridor halted", log.Error(err), log.String("facing", facing.String()))
		return false, w.err
	}
	if err != nil {
		w.logger.Warn("Evicted segment was not released", log.Error(err))
	}
	return advanced, err
}

// advance appends one full segment at the cursor and evicts the head. The
// replacement happens in a single ring rotation so the queue length never
// changes. It reports true once the rotation happened, even when releasing
// the evicted segment then fails with ErrReleaseFailed.
func (w *Window) advance(pose physics.Pose, facing physics.Facing) (bool, error) {
	next, err := w.spawn(pose, true)
	if err != nil {
		return false, err
	}

	old, err := w.segments.Rotate(next)
	if err != nil {
		return false, errors.Join(err, w.release(next))
	}
	w.advances++

	w.logger.Debug("Corridor advanced",
		log.Uint64("evicted", old.Seq),
		log.Uint64("appended", next.Seq),
		log.String("facing", facing.String()),
		log.Vec3("cursor", w.cursor))
	w.publishBatch(
		w.segmentEvent(EventSegmentEvicted, old, facing),
		w.segmentEvent(EventSegmentAppended, next, facing))

	if err := w.release(old); err != nil {
		return true, fmt.Errorf("%w: segment %d: %w", ErrReleaseFailed, old.Seq, err)
	}
	return true, nil
}

// spawn instantiates one segment at the cursor and advances the cursor by
// its bounding size projected on the forward direction.
func (w *Window) spawn(pose physics.Pose, withInteractable bool) (*Segment, error) {
	env, err := w.sampler.SampleEnvironment()
	if err != nil {
		return nil, err
	}

	rotation := orientation(pose)
	envInst, err := w.scene.Spawn(scene.Request{
		Kind:      scene.KindEnvironment,
		Template:  env.Name,
		Prototype: env.Prototype,
		Size:      env.Size,
		Position:  w.cursor,
		Rotation:  rotation,
	})
	if err != nil {
		return nil, fmt.Errorf("spawn environment %s: %w", env.Name, err)
	}

	size := envInst.Size
	if size.X() <= 0 || size.Z() <= 0 {
		return nil, errors.Join(
			fmt.Errorf("%w: environment %s has non-positive bounds %v", catalog.ErrConfiguration, env.Name, size),
			w.scene.Release(envInst))
	}

	seg := &Segment{
		Seq:         w.nextSeq,
		Position:    w.cursor,
		Environment: envInst,
	}

	if withInteractable {
		tmpl, err := w.nextInteractable()
		if err != nil {
			return nil, errors.Join(err, w.scene.Release(envInst))
		}
		inst, err := w.scene.Spawn(scene.Request{
			Kind:      scene.KindInteractable,
			Template:  tmpl.Name,
			Prototype: tmpl.Prototype,
			Size:      tmpl.Size,
			Position:  w.cursor,
			Rotation:  rotation,
			Parent:    envInst,
		})
		if err != nil {
			return nil, errors.Join(fmt.Errorf("spawn interactable %d: %w", tmpl.ID, err), w.scene.Release(envInst))
		}
		seg.Interactable = inst
		seg.Template = &tmpl
		w.lastInteractable = &tmpl
	}

	w.nextSeq++
	w.cursor = w.cursor.Add(physics.PlanarStep(size, pose.Forward, w.cfg.TileKerning))
	return seg, nil
}

func (w *Window) nextInteractable() (catalog.InteractableTemplate, error) {
	if w.lastInteractable == nil {
		return w.sampler.SampleRootInteractable()
	}
	return w.sampler.SampleSuccessor(*w.lastInteractable)
}

func (w *Window) release(seg *Segment) error {
	var errs []error
	if seg.Interactable != nil {
		if err := w.scene.Release(seg.Interactable); err != nil && !errors.Is(err, scene.ErrUnknownInstance) {
			errs = append(errs, err)
		}
	}
	if seg.Environment != nil {
		if err := w.scene.Release(seg.Environment); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *Window) releaseAll() error {
	w.initialised = false
	if w.segments == nil {
		return nil
	}
	var errs []error
	for _, seg := range w.segments.Drain() {
		if err := w.release(seg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close releases every segment. The window can be initialised again.
func (w *Window) Close() error {
	err := w.releaseAll()
	if err == nil {
		w.logger.Debug("Corridor closed")
	}
	return err
}

func (w *Window) publish(eventType string, seg *Segment, facing physics.Facing) {
	w.publishBatch(w.segmentEvent(eventType, seg, facing))
}

func (w *Window) segmentEvent(eventType string, seg *Segment, facing physics.Facing) bus.Event {
	ev := SegmentEvent{Segment: seg.Info(), Cursor: [3]float64(w.cursor)}
	if facing.Aligned() {
		ev.Facing = facing.String()
	}
	return bus.NewEvent(eventType, eventSource, ev, nil)
}

// publishBatch delivers events in order. Handler failures are logged only.
func (w *Window) publishBatch(events ...bus.Event) {
	if w.events == nil {
		return
	}
	if err := w.events.PublishBatch(events...); err != nil {
		w.logger.Warn("Event handler failed", log.Int("events", len(events)), log.Error(err))
	}
}

// orientation returns the pose rotation, deriving it from the forward
// vector when the caller left it unset.
func orientation(p physics.Pose) mgl64.Quat {
	if p.Rotation == (mgl64.Quat{}) {
		return mgl64.QuatRotate(p.Yaw(), physics.WorldUp)
	}
	return p.Rotation
}

func (w *Window) Config() Config {
	return w.cfg
}

func (w *Window) Len() int {
	if w.segments == nil {
		return 0
	}
	return w.segments.Len()
}

// Cursor is the position the next segment will be placed at.
func (w *Window) Cursor() mgl64.Vec3 {
	return w.cursor
}

// Head is the oldest segment, the next eviction candidate.
func (w *Window) Head() (*Segment, bool) {
	if w.segments == nil {
		return nil, false
	}
	return w.segments.Peek()
}

// Segments returns the queue from head to tail.
func (w *Window) Segments() []*Segment {
	if w.segments == nil {
		return nil
	}
	out := make([]*Segment, 0, w.segments.Len())
	for _, seg := range w.segments.All() {
		out = append(out, seg)
	}
	return out
}

// LastInteractable is the template the next successor walk starts from.
func (w *Window) LastInteractable() (catalog.InteractableTemplate, bool) {
	if w.lastInteractable == nil {
		return catalog.InteractableTemplate{}, false
	}
	return *w.lastInteractable, true
}

// Advances counts evict+append cycles since Initialise.
func (w *Window) Advances() uint64 {
	return w.advances
}

func (w *Window) Initialised() bool {
	return w.initialised
}
