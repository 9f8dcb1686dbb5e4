package catalog

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"
)

// EnvironmentTemplate is a world segment prototype. Only the x and z
// components of Size take part in placement.
type EnvironmentTemplate struct {
	Name      string
	Prototype string
	Size      mgl64.Vec3
}

// InteractableTemplate is an overlay prototype. Successors lists the ids of
// the templates allowed to follow this one.
type InteractableTemplate struct {
	ID         int
	Name       string
	Prototype  string
	Size       mgl64.Vec3
	Payload    map[string]any
	Successors []int
}

// Catalog is the immutable set of templates shared by every window.
type Catalog struct {
	environments  []EnvironmentTemplate
	interactables []InteractableTemplate
	byID          map[int]int
	digest        string
}

// New validates and indexes the template lists. Environment sizes must be
// positive on x and z, interactable ids unique, and every successor id must
// resolve. Empty successor lists are accepted here and fail when walked.
func New(environments []EnvironmentTemplate, interactables []InteractableTemplate) (*Catalog, error) {
	if len(environments) == 0 {
		return nil, fmt.Errorf("%w: no environment templates", ErrConfiguration)
	}
	if len(interactables) == 0 {
		return nil, fmt.Errorf("%w: no interactable templates", ErrConfiguration)
	}

	for i, env := range environments {
		if env.Size.X() <= 0 || env.Size.Z() <= 0 {
			return nil, fmt.Errorf("%w: environment %d (%s) has non-positive size %v",
				ErrConfiguration, i, env.Name, env.Size)
		}
	}

	byID := make(map[int]int, len(interactables))
	for i, it := range interactables {
		if prev, dup := byID[it.ID]; dup {
			return nil, fmt.Errorf("%w: interactable id %d used by entries %d and %d",
				ErrConfiguration, it.ID, prev, i)
		}
		byID[it.ID] = i
	}
	for _, it := range interactables {
		for _, next := range it.Successors {
			if _, ok := byID[next]; !ok {
				return nil, fmt.Errorf("%w: interactable %d references unknown successor %d",
					ErrConfiguration, it.ID, next)
			}
		}
	}

	c := &Catalog{
		environments:  cloneEnvironments(environments),
		interactables: cloneInteractables(interactables),
		byID:          byID,
	}
	c.digest = c.computeDigest()
	return c, nil
}

func (c *Catalog) Environments() []EnvironmentTemplate {
	return cloneEnvironments(c.environments)
}

func (c *Catalog) Interactables() []InteractableTemplate {
	return cloneInteractables(c.interactables)
}

// Interactable resolves a template by id.
func (c *Catalog) Interactable(id int) (InteractableTemplate, bool) {
	i, ok := c.byID[id]
	if !ok {
		return InteractableTemplate{}, false
	}
	return c.interactables[i], true
}

// Digest is a stable xxhash64 over the catalog's placement-relevant content.
func (c *Catalog) Digest() string {
	return c.digest
}

func (c *Catalog) computeDigest() string {
	h := xxhash.New()
	var buf [8]byte
	putFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = h.Write(buf[:])
	}
	putInt := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(v)))
		_, _ = h.Write(buf[:])
	}

	for _, env := range c.environments {
		_, _ = h.WriteString(env.Name)
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(env.Prototype)
		_, _ = h.WriteString("\x00")
		for _, f := range env.Size {
			putFloat(f)
		}
	}
	_, _ = h.WriteString("\x01")
	for _, it := range c.interactables {
		putInt(it.ID)
		_, _ = h.WriteString(it.Name)
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(it.Prototype)
		_, _ = h.WriteString("\x00")
		putInt(len(it.Successors))
		for _, next := range it.Successors {
			putInt(next)
		}
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

// SeedFrom derives a deterministic 64 bit seed from a textual seed and a
// stream number, so parallel runs sharing one seed string stay independent.
func SeedFrom(seed string, stream uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], stream)
	h := xxhash.New()
	_, _ = h.WriteString(seed)
	_, _ = h.Write(buf[:])
	return h.Sum64()
}

func cloneEnvironments(in []EnvironmentTemplate) []EnvironmentTemplate {
	out := make([]EnvironmentTemplate, len(in))
	copy(out, in)
	return out
}

func cloneInteractables(in []InteractableTemplate) []InteractableTemplate {
	out := make([]InteractableTemplate, len(in))
	for i, it := range in {
		it.Successors = append([]int(nil), it.Successors...)
		if it.Payload != nil {
			payload := make(map[string]any, len(it.Payload))
			for k, v := range it.Payload {
				payload[k] = v
			}
			it.Payload = payload
		}
		out[i] = it
	}
	return out
}
