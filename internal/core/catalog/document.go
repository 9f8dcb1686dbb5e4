package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.schema.json
var schemaSource string

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func catalogSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = jsonschema.CompileString("catalog.schema.json", schemaSource)
	})
	return compiledSchema, schemaErr
}

// Document is the on-disk form of a catalog.
type Document struct {
	Environments  []EnvironmentSpec  `json:"environments" yaml:"environments"`
	Interactables []InteractableSpec `json:"interactables" yaml:"interactables"`
}

type EnvironmentSpec struct {
	Name      string    `json:"name" yaml:"name"`
	Prototype string    `json:"prototype,omitempty" yaml:"prototype,omitempty"`
	Size      []float64 `json:"size" yaml:"size"`
}

type InteractableSpec struct {
	// ID defaults to the entry's position in the list.
	ID         *int           `json:"id,omitempty" yaml:"id,omitempty"`
	Name       string         `json:"name" yaml:"name"`
	Prototype  string         `json:"prototype,omitempty" yaml:"prototype,omitempty"`
	Size       []float64      `json:"size,omitempty" yaml:"size,omitempty"`
	Payload    map[string]any `json:"payload,omitempty" yaml:"payload,omitempty"`
	Successors []int          `json:"successors" yaml:"successors"`
}

// Load decodes a YAML (or JSON) catalog document and validates it against
// the catalog schema.
func Load(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode catalog: %v", ErrConfiguration, err)
	}
	if err := validateRaw(raw); err != nil {
		return nil, err
	}

	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode catalog: %v", ErrConfiguration, err)
	}
	return &doc, nil
}

// LoadFile opens path and calls Load.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return doc, nil
}

// Validate checks the document against the catalog schema.
func (d *Document) Validate() error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("%w: encode catalog: %v", ErrConfiguration, err)
	}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: encode catalog: %v", ErrConfiguration, err)
	}
	return validateRaw(raw)
}

// Build converts the document into an indexed Catalog.
func (d *Document) Build() (*Catalog, error) {
	envs := make([]EnvironmentTemplate, 0, len(d.Environments))
	for i, e := range d.Environments {
		size, err := toVec3(e.Size)
		if err != nil {
			return nil, fmt.Errorf("%w: environment %d (%s): %v", ErrConfiguration, i, e.Name, err)
		}
		envs = append(envs, EnvironmentTemplate{Name: e.Name, Prototype: e.Prototype, Size: size})
	}

	inters := make([]InteractableTemplate, 0, len(d.Interactables))
	for i, it := range d.Interactables {
		id := i
		if it.ID != nil {
			id = *it.ID
		}
		var size mgl64.Vec3
		if len(it.Size) > 0 {
			v, err := toVec3(it.Size)
			if err != nil {
				return nil, fmt.Errorf("%w: interactable %d (%s): %v", ErrConfiguration, id, it.Name, err)
			}
			size = v
		}
		inters = append(inters, InteractableTemplate{
			ID:         id,
			Name:       it.Name,
			Prototype:  it.Prototype,
			Size:       size,
			Payload:    it.Payload,
			Successors: it.Successors,
		})
	}

	return New(envs, inters)
}

func validateRaw(raw any) error {
	schema, err := catalogSchema()
	if err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}

	// Round trip through encoding/json so the validator only sees JSON types.
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: catalog is not JSON compatible: %v", ErrConfiguration, err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: catalog is not JSON compatible: %v", ErrConfiguration, err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}

func toVec3(v []float64) (mgl64.Vec3, error) {
	if len(v) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("size needs 3 components, got %d", len(v))
	}
	return mgl64.Vec3{v[0], v[1], v[2]}, nil
}
