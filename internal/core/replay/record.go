// Package replay records corridor runs as zstd-compressed JSON lines and
// verifies that replaying the recorded poses reproduces the same corridor.
package replay

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/corridor/internal/core/streaming"
	"github.com/zeusync/corridor/internal/core/systems/physics"
)

const FormatVersion = 1

var (
	ErrDivergence = errors.New("replay diverged from recording")
	ErrBadFormat  = errors.New("malformed replay")
)

// Header opens every recording.
type Header struct {
	Version       int              `json:"version"`
	Seed          string           `json:"seed"`
	Stream        uint64           `json:"stream"`
	CatalogDigest string           `json:"catalog_digest"`
	Window        streaming.Config `json:"window"`
	Start         PoseRecord       `json:"start"`
}

// TickRecord is what one tick of a run looked like from the outside.
type TickRecord struct {
	Tick     uint64     `json:"tick"`
	Pose     PoseRecord `json:"pose"`
	Advanced bool       `json:"advanced"`
	Cursor   [3]float64 `json:"cursor"`
	HeadSeq  uint64     `json:"head_seq"`
}

// Recorder receives one record per tick.
type Recorder interface {
	Record(TickRecord) error
}

type PoseRecord struct {
	Position [3]float64 `json:"position"`
	Forward  [3]float64 `json:"forward"`
	Right    [3]float64 `json:"right"`
	// Rotation is w, x, y, z.
	Rotation [4]float64 `json:"rotation"`
}

func FromPose(p physics.Pose) PoseRecord {
	return PoseRecord{
		Position: [3]float64(p.Position),
		Forward:  [3]float64(p.Forward),
		Right:    [3]float64(p.Right),
		Rotation: [4]float64{p.Rotation.W, p.Rotation.V.X(), p.Rotation.V.Y(), p.Rotation.V.Z()},
	}
}

func (r PoseRecord) Pose() physics.Pose {
	return physics.Pose{
		Position: mgl64.Vec3(r.Position),
		Forward:  mgl64.Vec3(r.Forward),
		Right:    mgl64.Vec3(r.Right),
		Rotation: mgl64.Quat{W: r.Rotation[0], V: mgl64.Vec3{r.Rotation[1], r.Rotation[2], r.Rotation[3]}},
	}
}

// envelope is one JSON line; exactly one field is set.
type envelope struct {
	Header *Header     `json:"header,omitempty"`
	Tick   *TickRecord `json:"tick,omitempty"`
}
