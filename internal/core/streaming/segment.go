package streaming

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/corridor/internal/core/catalog"
	"github.com/zeusync/corridor/internal/core/scene"
)

// Segment is one active unit of the corridor. The window owns it from
// enqueue until eviction.
type Segment struct {
	// Seq counts segments since the last Initialise, starting at 0.
	Seq uint64
	// Position is the world-space placement, the cursor value at spawn time.
	Position mgl64.Vec3

	Environment  *scene.Instance
	Interactable *scene.Instance
	// Template is the interactable template used, nil for blank segments.
	Template *catalog.InteractableTemplate
}

// Blank reports whether the segment carries no interactable.
func (s *Segment) Blank() bool {
	return s.Interactable == nil
}

// SegmentInfo is the event and snapshot form of a Segment.
type SegmentInfo struct {
	Seq          uint64     `json:"seq"`
	Position     [3]float64 `json:"position"`
	Environment  string     `json:"environment"`
	Interactable string     `json:"interactable,omitempty"`
	TemplateID   *int       `json:"template_id,omitempty"`
}

func (s *Segment) Info() SegmentInfo {
	info := SegmentInfo{
		Seq:      s.Seq,
		Position: [3]float64(s.Position),
	}
	if s.Environment != nil {
		info.Environment = s.Environment.Template
	}
	if s.Interactable != nil {
		info.Interactable = s.Interactable.Template
	}
	if s.Template != nil {
		id := s.Template.ID
		info.TemplateID = &id
	}
	return info
}
