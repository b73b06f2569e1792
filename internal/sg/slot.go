package sg

import (
	"github.com/deploymenttheory/go-satatarget/internal/interfaces"
	"github.com/deploymenttheory/go-satatarget/internal/types"
)

// SlotState is the mapping state of a command slot.
type SlotState int

const (
	// StateUnmapped means no mapping is active.
	StateUnmapped SlotState = iota
	// StateMapped means a scatter list is committed to the backend.
	StateMapped
)

// String returns a string representation of the slot state.
func (s SlotState) String() string {
	switch s {
	case StateUnmapped:
		return "unmapped"
	case StateMapped:
		return "mapped"
	default:
		return "unknown"
	}
}

// Slot is the scatter list storage and mapping state for one tag.
type Slot struct {
	tag       types.Tag
	segments  []interfaces.Segment
	committed int
	state     SlotState
	dir       types.Direction
}

// Tag returns the slot's tag.
func (s *Slot) Tag() types.Tag {
	return s.tag
}

// State returns the slot's mapping state.
func (s *Slot) State() SlotState {
	return s.state
}

// Direction returns the direction of the active mapping, or
// DirectionUnmapped.
func (s *Slot) Direction() types.Direction {
	if s.state != StateMapped {
		return types.DirectionUnmapped
	}
	return s.dir
}

// Committed returns how many segments the backend accepted.
func (s *Slot) Committed() int {
	return s.committed
}

func (s *Slot) mapped(segs []interfaces.Segment, committed int, dir types.Direction) {
	s.segments = segs
	s.committed = committed
	s.dir = dir
	s.state = StateMapped
}

func (s *Slot) reset() {
	clear(s.segments)
	s.segments = s.segments[:0]
	s.committed = 0
	s.dir = types.DirectionUnmapped
	s.state = StateUnmapped
}
