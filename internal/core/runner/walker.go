package runner

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/corridor/internal/core/systems/physics"
)

// Turn changes the walker's heading once it has travelled AtDistance.
type Turn struct {
	AtDistance float64 `yaml:"at_distance"`
	// YawDegrees is the new absolute heading; 0 faces +z and 90 faces +x.
	YawDegrees float64 `yaml:"yaw_degrees"`
}

// Walker is a scripted actor moving at constant speed along its heading.
type Walker struct {
	pose      physics.Pose
	speed     float64
	travelled float64
	turns     []Turn
}

func NewWalker(start mgl64.Vec3, yawDegrees, speed float64, turns ...Turn) *Walker {
	sorted := slices.Clone(turns)
	slices.SortStableFunc(sorted, func(a, b Turn) int {
		switch {
		case a.AtDistance < b.AtDistance:
			return -1
		case a.AtDistance > b.AtDistance:
			return 1
		}
		return 0
	})
	return &Walker{
		pose:  physics.PoseFromYaw(start, mgl64.DegToRad(yawDegrees)),
		speed: speed,
		turns: sorted,
	}
}

func (w *Walker) Pose() physics.Pose {
	return w.pose
}

// Travelled is the total distance walked.
func (w *Walker) Travelled() float64 {
	return w.travelled
}

func (w *Walker) Step(dt float64) physics.Pose {
	step := math.Max(w.speed*dt, 0)
	w.pose = w.pose.Translate(w.pose.Forward.Mul(step))
	w.travelled += step

	for len(w.turns) > 0 && w.travelled >= w.turns[0].AtDistance {
		w.pose = physics.PoseFromYaw(w.pose.Position, mgl64.DegToRad(w.turns[0].YawDegrees))
		w.turns = w.turns[1:]
	}
	return w.pose
}
