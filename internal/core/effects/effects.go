// Package effects models timed sequences (fades, delays) as explicit state
// objects that an external scheduler advances once per tick.
package effects

// Effect is advanced once per tick until Done reports true.
type Effect interface {
	Advance(dt float64)
	Done() bool
}

type entry struct {
	name   string
	effect Effect
}

// Scheduler advances named effects. Only one effect per name runs at a time.
// It is not safe for concurrent use.
type Scheduler struct {
	active []entry
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Start registers e under name. It returns false when an effect with the
// same name is still running.
func (s *Scheduler) Start(name string, e Effect) bool {
	if s.Running(name) || e == nil {
		return false
	}
	s.active = append(s.active, entry{name: name, effect: e})
	return true
}

// Advance steps every running effect by dt and returns the names of the
// effects that completed during this call, in start order.
func (s *Scheduler) Advance(dt float64) []string {
	var done []string
	kept := s.active[:0]
	for _, en := range s.active {
		en.effect.Advance(dt)
		if en.effect.Done() {
			done = append(done, en.name)
			continue
		}
		kept = append(kept, en)
	}
	for i := len(kept); i < len(s.active); i++ {
		s.active[i] = entry{}
	}
	s.active = kept
	return done
}

func (s *Scheduler) Running(name string) bool {
	for _, en := range s.active {
		if en.name == name {
			return true
		}
	}
	return false
}

func (s *Scheduler) Len() int {
	return len(s.active)
}

// Fade moves a value linearly towards a target over a duration in seconds,
// clamped to the range between its start and target.
type Fade struct {
	value    float64
	target   float64
	rate     float64
	min, max float64
}

func NewFade(from, to, duration float64) *Fade {
	f := &Fade{value: from, target: to, min: from, max: to}
	if f.min > f.max {
		f.min, f.max = f.max, f.min
	}
	if duration <= 0 {
		f.value = to
		return f
	}
	f.rate = (to - from) / duration
	return f
}

func (f *Fade) Advance(dt float64) {
	if f.Done() {
		return
	}
	v := f.value + f.rate*dt
	if v < f.min {
		v = f.min
	}
	if v > f.max {
		v = f.max
	}
	f.value = v
}

func (f *Fade) Done() bool {
	return f.value == f.target
}

// Value is the current faded value, for example an overlay alpha.
func (f *Fade) Value() float64 {
	return f.value
}

// Delay completes after a fixed number of seconds.
type Delay struct {
	remaining float64
}

func NewDelay(seconds float64) *Delay {
	return &Delay{remaining: seconds}
}

func (d *Delay) Advance(dt float64) {
	d.remaining -= dt
}

func (d *Delay) Done() bool {
	return d.remaining <= 0
}
