package scene

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

var (
	ErrUnknownInstance = errors.New("unknown scene instance")
	ErrInvalidRequest  = errors.New("invalid spawn request")
)

type Kind uint8

const (
	KindEnvironment Kind = iota + 1
	KindInteractable
)

func (k Kind) String() string {
	switch k {
	case KindEnvironment:
		return "environment"
	case KindInteractable:
		return "interactable"
	default:
		return "unknown"
	}
}

// Request describes one instantiation. Size is the template's bounding size;
// engines that compute bounds from geometry may ignore it and report their
// own through Instance.Size.
type Request struct {
	Kind      Kind
	Template  string
	Prototype string
	Size      mgl64.Vec3
	Position  mgl64.Vec3
	Rotation  mgl64.Quat
	// Parent attaches the new instance under an existing one. Releasing the
	// parent releases the child.
	Parent *Instance
}

// Instance is a live object owned by a Scene.
type Instance struct {
	ID        uuid.UUID
	Kind      Kind
	Template  string
	Prototype string
	Position  mgl64.Vec3
	Rotation  mgl64.Quat
	Size      mgl64.Vec3
	Parent    uuid.UUID
}

// Scene is the instantiation collaborator: it creates and destroys visual
// instances. Implementations only need to be safe for use from the
// goroutine that ticks the streaming window.
type Scene interface {
	Spawn(req Request) (*Instance, error)
	Release(inst *Instance) error
}
