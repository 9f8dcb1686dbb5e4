package scene

import (
	"fmt"

	"github.com/google/uuid"
)

var _ Scene = (*Memory)(nil)

// Stats counts instance lifecycle operations.
type Stats struct {
	Spawned  uint64
	Released uint64
	Live     int
}

// Memory is a headless scene keeping instances in a map. It is used by the
// command line runner and by tests.
type Memory struct {
	instances map[uuid.UUID]*Instance
	children  map[uuid.UUID][]uuid.UUID
	stats     Stats
}

func NewMemory() *Memory {
	return &Memory{
		instances: make(map[uuid.UUID]*Instance),
		children:  make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *Memory) Spawn(req Request) (*Instance, error) {
	if req.Kind != KindEnvironment && req.Kind != KindInteractable {
		return nil, fmt.Errorf("%w: kind %d", ErrInvalidRequest, req.Kind)
	}

	inst := &Instance{
		ID:        uuid.New(),
		Kind:      req.Kind,
		Template:  req.Template,
		Prototype: req.Prototype,
		Position:  req.Position,
		Rotation:  req.Rotation,
		Size:      req.Size,
	}
	if req.Parent != nil {
		if _, ok := m.instances[req.Parent.ID]; !ok {
			return nil, fmt.Errorf("%w: parent %s", ErrUnknownInstance, req.Parent.ID)
		}
		inst.Parent = req.Parent.ID
		m.children[req.Parent.ID] = append(m.children[req.Parent.ID], inst.ID)
	}

	m.instances[inst.ID] = inst
	m.stats.Spawned++
	return inst, nil
}

// Release destroys inst and, recursively, everything parented under it.
func (m *Memory) Release(inst *Instance) error {
	if inst == nil {
		return fmt.Errorf("%w: nil instance", ErrUnknownInstance)
	}
	if _, ok := m.instances[inst.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownInstance, inst.ID)
	}
	m.release(inst.ID)
	return nil
}

func (m *Memory) release(id uuid.UUID) {
	kids := m.children[id]
	delete(m.children, id)
	for _, child := range kids {
		if _, ok := m.instances[child]; ok {
			m.release(child)
		}
	}

	if inst, ok := m.instances[id]; ok && inst.Parent != uuid.Nil {
		siblings := m.children[inst.Parent]
		for i, s := range siblings {
			if s == id {
				m.children[inst.Parent] = append(siblings[:i], siblings[i+1:]...)
				break
			}
		}
	}
	delete(m.instances, id)
	m.stats.Released++
}

// Lookup returns a live instance.
func (m *Memory) Lookup(id uuid.UUID) (*Instance, bool) {
	inst, ok := m.instances[id]
	return inst, ok
}

// Children lists the live instances parented under id.
func (m *Memory) Children(id uuid.UUID) []*Instance {
	out := make([]*Instance, 0, len(m.children[id]))
	for _, c := range m.children[id] {
		if inst, ok := m.instances[c]; ok {
			out = append(out, inst)
		}
	}
	return out
}

func (m *Memory) Stats() Stats {
	s := m.stats
	s.Live = len(m.instances)
	return s
}
