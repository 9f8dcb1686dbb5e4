package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// World basis. The world is y-up and left-handed: right = up × forward.
var (
	WorldUp      = mgl64.Vec3{0, 1, 0}
	WorldForward = mgl64.Vec3{0, 0, 1}
	WorldRight   = mgl64.Vec3{1, 0, 0}
)

// Pose is the reference actor's state as seen by the streaming window for a
// single tick. Forward and Right are expected to be unit vectors; they are
// not re-normalized.
type Pose struct {
	Position mgl64.Vec3
	Forward  mgl64.Vec3
	Right    mgl64.Vec3
	Rotation mgl64.Quat
}

// PoseFromYaw builds a pose whose basis is the world basis rotated by yaw
// radians around the up axis. A yaw of 0 faces +z, π/2 faces +x.
func PoseFromYaw(position mgl64.Vec3, yaw float64) Pose {
	rot := mgl64.QuatRotate(yaw, WorldUp)
	return Pose{
		Position: position,
		Forward:  snap(rot.Rotate(WorldForward)),
		Right:    snap(rot.Rotate(WorldRight)),
		Rotation: rot,
	}
}

// Yaw recovers the heading angle from Forward, in (-π, π].
func (p Pose) Yaw() float64 {
	return math.Atan2(p.Forward.X(), p.Forward.Z())
}

// Translate returns a copy of the pose moved by delta.
func (p Pose) Translate(delta mgl64.Vec3) Pose {
	p.Position = p.Position.Add(delta)
	return p
}

// snap removes floating point residue so that cardinal headings produce
// exact unit axes.
func snap(v mgl64.Vec3) mgl64.Vec3 {
	for i := range v {
		if math.Abs(v[i]) < 1e-12 {
			v[i] = 0
		}
		if math.Abs(math.Abs(v[i])-1) < 1e-12 {
			v[i] = math.Copysign(1, v[i])
		}
	}
	return v
}
