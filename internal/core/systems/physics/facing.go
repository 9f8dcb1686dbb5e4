package physics

import "github.com/go-gl/mathgl/mgl64"

// AlignmentThreshold is the dot product magnitude a basis vector must exceed
// (strictly) against WorldForward to count as aligned with a cardinal axis.
const AlignmentThreshold = 0.9

type Axis uint8

const (
	AxisNone Axis = iota
	AxisX
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisZ:
		return "z"
	default:
		return "none"
	}
}

// Facing is the cardinal movement direction derived from a pose.
type Facing struct {
	Axis Axis
	// Sign is +1 or -1 along Axis; zero when Axis is AxisNone.
	Sign float64
}

// Classify picks the movement axis for a pose. Forward is tested first: a
// forward vector aligned with ±z selects z. Otherwise the right vector is
// tested against the same world forward axis; right = +z means the actor
// faces -x, so the x sign is the negated dot product.
func Classify(p Pose) Facing {
	if dot := WorldForward.Dot(p.Forward); dot > AlignmentThreshold {
		return Facing{Axis: AxisZ, Sign: 1}
	} else if dot < -AlignmentThreshold {
		return Facing{Axis: AxisZ, Sign: -1}
	}

	if dot := WorldForward.Dot(p.Right); dot > AlignmentThreshold {
		return Facing{Axis: AxisX, Sign: -1}
	} else if dot < -AlignmentThreshold {
		return Facing{Axis: AxisX, Sign: 1}
	}

	return Facing{Axis: AxisNone}
}

// Aligned reports whether Classify found a cardinal axis.
func (f Facing) Aligned() bool {
	return f.Axis != AxisNone
}

// Component returns v's coordinate on the facing axis.
func (f Facing) Component(v mgl64.Vec3) float64 {
	switch f.Axis {
	case AxisX:
		return v.X()
	case AxisZ:
		return v.Z()
	default:
		return 0
	}
}

// AdvancedPast reports whether actor is further than distance beyond ref in
// the facing direction.
func (f Facing) AdvancedPast(actor, ref mgl64.Vec3, distance float64) bool {
	if !f.Aligned() {
		return false
	}
	return f.Sign*(f.Component(actor)-f.Component(ref)) > distance
}

func (f Facing) String() string {
	if !f.Aligned() {
		return "none"
	}
	if f.Sign > 0 {
		return "+" + f.Axis.String()
	}
	return "-" + f.Axis.String()
}

// PlanarStep projects a bounding size onto the forward direction's x and z
// components and scales it. The y component is always zero.
func PlanarStep(size, forward mgl64.Vec3, scale float64) mgl64.Vec3 {
	return mgl64.Vec3{
		size.X() * forward.X() * scale,
		0,
		size.Z() * forward.Z() * scale,
	}
}
