package catalog

import (
	"fmt"
	"math/rand/v2"
)

// Rand is the random source a Sampler draws from. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// Sampler draws templates from a catalog. The catalog is never mutated; the
// only side effect of sampling is consuming random numbers. A Sampler is not
// safe for concurrent use, give each window its own.
type Sampler struct {
	catalog *Catalog
	rng     Rand
}

func NewSampler(c *Catalog, rng Rand) *Sampler {
	return &Sampler{catalog: c, rng: rng}
}

// NewSeededSampler uses a PCG source seeded from seed.
func NewSeededSampler(c *Catalog, seed uint64) *Sampler {
	return NewSampler(c, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func (s *Sampler) Catalog() *Catalog {
	return s.catalog
}

// SampleEnvironment picks an environment template uniformly.
func (s *Sampler) SampleEnvironment() (EnvironmentTemplate, error) {
	if s.catalog == nil || len(s.catalog.environments) == 0 {
		return EnvironmentTemplate{}, fmt.Errorf("%w: no environment templates", ErrConfiguration)
	}
	return s.catalog.environments[s.rng.IntN(len(s.catalog.environments))], nil
}

// SampleRootInteractable picks the first interactable of a corridor
// uniformly from the whole catalog.
func (s *Sampler) SampleRootInteractable() (InteractableTemplate, error) {
	if s.catalog == nil || len(s.catalog.interactables) == 0 {
		return InteractableTemplate{}, fmt.Errorf("%w: no interactable templates", ErrConfiguration)
	}
	return s.catalog.interactables[s.rng.IntN(len(s.catalog.interactables))], nil
}

// SampleSuccessor picks uniformly among previous.Successors. Every call
// re-rolls.
func (s *Sampler) SampleSuccessor(previous InteractableTemplate) (InteractableTemplate, error) {
	if len(previous.Successors) == 0 {
		return InteractableTemplate{}, fmt.Errorf("%w: interactable %d (%s) has no successors",
			ErrGraphLookup, previous.ID, previous.Name)
	}
	id := previous.Successors[s.rng.IntN(len(previous.Successors))]
	if s.catalog == nil {
		return InteractableTemplate{}, fmt.Errorf("%w: no catalog", ErrGraphLookup)
	}
	next, ok := s.catalog.Interactable(id)
	if !ok {
		return InteractableTemplate{}, fmt.Errorf("%w: successor %d of interactable %d does not resolve",
			ErrGraphLookup, id, previous.ID)
	}
	return next, nil
}
