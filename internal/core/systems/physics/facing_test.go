package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestClassifyCardinal(t *testing.T) {
	cases := []struct {
		name    string
		forward mgl64.Vec3
		right   mgl64.Vec3
		want    Facing
	}{
		{"forward +z", mgl64.Vec3{0, 0, 1}, mgl64.Vec3{1, 0, 0}, Facing{AxisZ, 1}},
		{"backward -z", mgl64.Vec3{0, 0, -1}, mgl64.Vec3{-1, 0, 0}, Facing{AxisZ, -1}},
		{"facing +x", mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, -1}, Facing{AxisX, 1}},
		{"facing -x", mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{0, 0, 1}, Facing{AxisX, -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(Pose{Forward: tc.forward, Right: tc.right})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassifyThresholdIsExclusive(t *testing.T) {
	// Exactly on the threshold is not aligned.
	on := mgl64.Vec3{math.Sqrt(1 - 0.81), 0, 0.9}
	got := Classify(Pose{Forward: on, Right: mgl64.Vec3{0.9, 0, -math.Sqrt(1 - 0.81)}})
	assert.False(t, got.Aligned(), "dot == 0.9 must not classify, got %s", got)

	above := mgl64.Vec3{math.Sqrt(1 - 0.9001*0.9001), 0, 0.9001}
	got = Classify(Pose{Forward: above})
	assert.Equal(t, Facing{AxisZ, 1}, got)
}

func TestClassifyDiagonalIsOffAxis(t *testing.T) {
	p := PoseFromYaw(mgl64.Vec3{}, math.Pi/4)
	f := Classify(p)
	assert.False(t, f.Aligned())
	assert.Equal(t, "none", f.String())
	assert.False(t, f.AdvancedPast(mgl64.Vec3{100, 0, 100}, mgl64.Vec3{}, 1))
}

func TestPoseFromYawBasis(t *testing.T) {
	cases := []struct {
		yaw     float64
		forward mgl64.Vec3
		right   mgl64.Vec3
		facing  string
	}{
		{0, mgl64.Vec3{0, 0, 1}, mgl64.Vec3{1, 0, 0}, "+z"},
		{math.Pi / 2, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, -1}, "+x"},
		{math.Pi, mgl64.Vec3{0, 0, -1}, mgl64.Vec3{-1, 0, 0}, "-z"},
		{-math.Pi / 2, mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{0, 0, 1}, "-x"},
	}
	for _, tc := range cases {
		p := PoseFromYaw(mgl64.Vec3{1, 2, 3}, tc.yaw)
		assert.Equal(t, tc.forward, p.Forward)
		assert.Equal(t, tc.right, p.Right)
		assert.Equal(t, tc.facing, Classify(p).String())
		assert.InDelta(t, tc.yaw, p.Yaw(), 1e-9)
	}
}

func TestAdvancedPast(t *testing.T) {
	pz := Facing{AxisZ, 1}
	assert.True(t, pz.AdvancedPast(mgl64.Vec3{0, 0, 26}, mgl64.Vec3{}, 25))
	assert.False(t, pz.AdvancedPast(mgl64.Vec3{0, 0, 25}, mgl64.Vec3{}, 25))

	nx := Facing{AxisX, -1}
	assert.True(t, nx.AdvancedPast(mgl64.Vec3{-30, 0, 0}, mgl64.Vec3{-4, 0, 0}, 25))
	assert.False(t, nx.AdvancedPast(mgl64.Vec3{30, 0, 0}, mgl64.Vec3{}, 25))
}

func TestPlanarStep(t *testing.T) {
	step := PlanarStep(mgl64.Vec3{10, 4, 12}, mgl64.Vec3{0, 0, -1}, 1.5)
	assert.Equal(t, mgl64.Vec3{0, 0, -18}, step)

	step = PlanarStep(mgl64.Vec3{10, 4, 12}, mgl64.Vec3{1, 0, 0}, 1)
	assert.Equal(t, mgl64.Vec3{10, 0, 0}, step)
}
