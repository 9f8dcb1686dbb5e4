package catalog

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New(
		[]EnvironmentTemplate{
			{Name: "plain", Size: mgl64.Vec3{10, 1, 10}},
			{Name: "bridge", Size: mgl64.Vec3{10, 1, 20}},
		},
		[]InteractableTemplate{
			{ID: 0, Name: "gems", Successors: []int{1, 2}},
			{ID: 1, Name: "rocks", Successors: []int{0}},
			{ID: 2, Name: "gap", Successors: []int{0, 1}},
		},
	)
	require.NoError(t, err)
	return c
}

func TestNewRejectsInvalidCatalogs(t *testing.T) {
	env := []EnvironmentTemplate{{Name: "plain", Size: mgl64.Vec3{10, 1, 10}}}
	inter := []InteractableTemplate{{ID: 0, Name: "gems", Successors: []int{0}}}

	cases := map[string]func() (*Catalog, error){
		"no environments":  func() (*Catalog, error) { return New(nil, inter) },
		"no interactables": func() (*Catalog, error) { return New(env, nil) },
		"zero size": func() (*Catalog, error) {
			return New([]EnvironmentTemplate{{Name: "flat", Size: mgl64.Vec3{10, 1, 0}}}, inter)
		},
		"duplicate id": func() (*Catalog, error) {
			return New(env, []InteractableTemplate{{ID: 0, Successors: []int{0}}, {ID: 0, Successors: []int{0}}})
		},
		"dangling successor": func() (*Catalog, error) {
			return New(env, []InteractableTemplate{{ID: 0, Successors: []int{7}}})
		},
	}
	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			c, err := build()
			assert.Nil(t, c)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestCatalogIsCopied(t *testing.T) {
	inter := []InteractableTemplate{{ID: 0, Name: "gems", Successors: []int{0}}}
	c, err := New([]EnvironmentTemplate{{Name: "plain", Size: mgl64.Vec3{1, 1, 1}}}, inter)
	require.NoError(t, err)

	inter[0].Successors[0] = 99
	got, ok := c.Interactable(0)
	require.True(t, ok)
	assert.Equal(t, []int{0}, got.Successors)

	_, ok = c.Interactable(5)
	assert.False(t, ok)
}

func TestSamplerUniformCoverage(t *testing.T) {
	c := testCatalog(t)
	s := NewSampler(c, rand.New(rand.NewPCG(1, 2)))

	seenEnv := map[string]int{}
	seenRoot := map[int]int{}
	for i := 0; i < 2000; i++ {
		env, err := s.SampleEnvironment()
		require.NoError(t, err)
		seenEnv[env.Name]++

		root, err := s.SampleRootInteractable()
		require.NoError(t, err)
		seenRoot[root.ID]++
	}
	assert.Len(t, seenEnv, 2)
	assert.Len(t, seenRoot, 3)
	for _, n := range seenEnv {
		assert.InDelta(t, 1000, n, 150)
	}
}

func TestSampleSuccessorStaysInGraph(t *testing.T) {
	c := testCatalog(t)
	s := NewSeededSampler(c, 42)

	prev, err := s.SampleRootInteractable()
	require.NoError(t, err)
	for i := 0; i < 500; i++ {
		next, err := s.SampleSuccessor(prev)
		require.NoError(t, err)
		assert.True(t, slices.Contains(prev.Successors, next.ID),
			"%d is not a successor of %d", next.ID, prev.ID)
		prev = next
	}
}

func TestSampleSuccessorEmptyListFails(t *testing.T) {
	c, err := New(
		[]EnvironmentTemplate{{Name: "plain", Size: mgl64.Vec3{10, 1, 10}}},
		[]InteractableTemplate{{ID: 0, Name: "dead end"}},
	)
	require.NoError(t, err)

	s := NewSeededSampler(c, 1)
	root, err := s.SampleRootInteractable()
	require.NoError(t, err)

	next, err := s.SampleSuccessor(root)
	assert.ErrorIs(t, err, ErrGraphLookup)
	assert.Equal(t, InteractableTemplate{}, next)
}

func TestSampleSuccessorUnresolvedIDFails(t *testing.T) {
	s := NewSeededSampler(testCatalog(t), 1)
	_, err := s.SampleSuccessor(InteractableTemplate{ID: 9, Successors: []int{42}})
	assert.ErrorIs(t, err, ErrGraphLookup)
}

func TestEmptySamplerFails(t *testing.T) {
	s := NewSeededSampler(&Catalog{}, 1)
	_, err := s.SampleEnvironment()
	assert.ErrorIs(t, err, ErrConfiguration)
	_, err = s.SampleRootInteractable()
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestSamplerIsDeterministicPerSeed(t *testing.T) {
	c := testCatalog(t)
	draw := func(seed uint64) []string {
		s := NewSeededSampler(c, seed)
		var out []string
		for i := 0; i < 20; i++ {
			env, _ := s.SampleEnvironment()
			out = append(out, env.Name)
		}
		return out
	}
	assert.Equal(t, draw(7), draw(7))
}

func TestDigestAndSeed(t *testing.T) {
	a := testCatalog(t)
	b := testCatalog(t)
	assert.Equal(t, a.Digest(), b.Digest())
	assert.NotEmpty(t, a.Digest())

	c, err := New(
		[]EnvironmentTemplate{{Name: "plain", Size: mgl64.Vec3{10, 1, 12}}},
		[]InteractableTemplate{{ID: 0, Successors: []int{0}}},
	)
	require.NoError(t, err)
	assert.NotEqual(t, a.Digest(), c.Digest())

	assert.Equal(t, SeedFrom("corridor", 1), SeedFrom("corridor", 1))
	assert.NotEqual(t, SeedFrom("corridor", 1), SeedFrom("corridor", 2))
	assert.NotEqual(t, SeedFrom("corridor", 1), SeedFrom("hallway", 1))
}

const sampleYAML = `
environments:
  - name: plain
    prototype: tiles/plain
    size: [10, 1, 10]
  - name: bridge
    size: [10, 1, 20]
interactables:
  - name: gems
    prototype: props/gems
    payload:
      gems: 3
    successors: [1]
  - name: rocks
    successors: [0, 1]
`

func TestLoadAndBuild(t *testing.T) {
	doc, err := Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	require.NoError(t, doc.Validate())

	c, err := doc.Build()
	require.NoError(t, err)

	envs := c.Environments()
	require.Len(t, envs, 2)
	assert.Equal(t, mgl64.Vec3{10, 1, 20}, envs[1].Size)

	gems, ok := c.Interactable(0)
	require.True(t, ok)
	assert.Equal(t, "props/gems", gems.Prototype)
	assert.Equal(t, []int{1}, gems.Successors)
	assert.EqualValues(t, 3, gems.Payload["gems"])

	rocks, ok := c.Interactable(1)
	require.True(t, ok)
	assert.Equal(t, "rocks", rocks.Name)
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"empty":              ``,
		"missing size":       "environments: [{name: a}]\ninteractables: [{name: b, successors: [0]}]\n",
		"short size":         "environments: [{name: a, size: [1, 2]}]\ninteractables: [{name: b, successors: [0]}]\n",
		"unknown field":      "environments: [{name: a, size: [1, 1, 1], colour: red}]\ninteractables: [{name: b, successors: [0]}]\n",
		"no interactables":   "environments: [{name: a, size: [1, 1, 1]}]\ninteractables: []\n",
		"negative successor": "environments: [{name: a, size: [1, 1, 1]}]\ninteractables: [{name: b, successors: [-1]}]\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(src))
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestBuildRejectsDanglingSuccessor(t *testing.T) {
	doc, err := Load(strings.NewReader("environments: [{name: a, size: [1, 1, 1]}]\ninteractables: [{name: b, successors: [3]}]\n"))
	require.NoError(t, err)

	_, err = doc.Build()
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestShippedCatalogIsValid(t *testing.T) {
	doc, err := LoadFile("../../../configs/catalog.yaml")
	require.NoError(t, err)
	c, err := doc.Build()
	require.NoError(t, err)
	assert.Len(t, c.Environments(), 3)
	for _, it := range c.Interactables() {
		assert.NotEmpty(t, it.Successors, it.Name)
	}
}
