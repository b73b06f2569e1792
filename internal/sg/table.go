package sg

import (
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/deploymenttheory/go-satatarget/internal/interfaces"
	"github.com/deploymenttheory/go-satatarget/internal/logging"
	"github.com/deploymenttheory/go-satatarget/internal/translate"
	"github.com/deploymenttheory/go-satatarget/internal/types"
)

// Table holds one Slot per tag. The caller serializes use of each tag;
// distinct tags may be used concurrently.
type Table struct {
	slots       []Slot
	maxSegments int
	capacity    uint64
	translator  *translate.Translator
	mapper      interfaces.TransferMapper

	hintHits   atomic.Uint64
	hintMisses atomic.Uint64
}

// NewTable creates depth slots that each hold up to maxSegments segments.
func NewTable(depth, maxSegments int, capacity uint64, tr *translate.Translator, mapper interfaces.TransferMapper) (*Table, error) {
	const op = "sg.new"
	if depth <= 0 || depth > types.MaxQueueDepth {
		return nil, types.Errorf(types.KindConfiguration, op, "queue depth %d outside [1, %d]", depth, types.MaxQueueDepth)
	}
	if maxSegments <= 0 {
		return nil, types.Errorf(types.KindConfiguration, op, "max segments %d must be positive", maxSegments)
	}
	if tr == nil || mapper == nil {
		return nil, types.Errorf(types.KindConfiguration, op, "translator and mapper are required")
	}

	t := &Table{
		slots:       make([]Slot, depth),
		maxSegments: maxSegments,
		capacity:    capacity,
		translator:  tr,
		mapper:      mapper,
	}
	for i := range t.slots {
		t.slots[i] = Slot{
			tag:      types.Tag(i),
			segments: make([]interfaces.Segment, 0, maxSegments),
		}
	}
	return t, nil
}

// Depth returns the number of slots.
func (t *Table) Depth() int {
	return len(t.slots)
}

// MaxSegments returns the per-slot segment capacity.
func (t *Table) MaxSegments() int {
	return t.maxSegments
}

// Slot returns the slot for tag.
func (t *Table) Slot(tag types.Tag) (*Slot, error) {
	if int(tag) >= len(t.slots) {
		return nil, types.Errorf(types.KindProtocolViolation, "sg.slot", "tag %d outside queue depth %d", tag, len(t.slots))
	}
	return &t.slots[tag], nil
}

// MapRequest fills the slot for tag with the scatter list for count
// sectors at start and commits it to the backend. It returns the number
// of segments built, which may exceed the number the backend committed
// (see Slot.Committed).
func (t *Table) MapRequest(start types.Sector, count uint64, tag types.Tag, dir types.Direction) (int, error) {
	const op = "sg.map"
	slot, err := t.Slot(tag)
	if err != nil {
		return 0, err
	}
	if !dir.IsTransfer() {
		return 0, types.Errorf(types.KindProtocolViolation, op, "tag %d: cannot map with direction %s", tag, dir)
	}
	if slot.state != StateUnmapped {
		return 0, types.Errorf(types.KindProtocolViolation, op, "tag %d is already mapped for %s", tag, slot.dir)
	}
	if uint64(start) > t.capacity || count > t.capacity-uint64(start) {
		return 0, types.Errorf(types.KindOutOfRange, op,
			"sectors [%d, +%d) beyond capacity %d", start, count, t.capacity)
	}

	var hint translate.Hint
	segs, err := Build(t.translator, &hint, start, count, slot.segments[:0], t.maxSegments)
	t.hintHits.Add(hint.Hits)
	t.hintMisses.Add(hint.Misses)
	if err != nil {
		clear(segs)
		logging.Warn(logging.ComponentSlots, "scatter list build failed",
			"tag", tag, "sector", start, "count", count, "err", err)
		return 0, err
	}

	committed, err := t.commit(op, segs, dir)
	if err != nil {
		clear(segs)
		return 0, err
	}
	slot.mapped(segs, committed, dir)
	logging.Debug(logging.ComponentSlots, "request mapped",
		"tag", tag, "dir", dir, "sector", start, "count", count, "segments", len(segs))
	return len(segs), nil
}

// MapBuffer maps a single caller-owned buffer on tag as one segment. Like
// MapRequest it returns the number of segments built, which is 1; the
// backend's commit count is available from Slot.Committed.
func (t *Table) MapBuffer(tag types.Tag, buf []byte, dir types.Direction) (int, error) {
	const op = "sg.map_buffer"
	slot, err := t.Slot(tag)
	if err != nil {
		return 0, err
	}
	if !dir.IsTransfer() {
		return 0, types.Errorf(types.KindProtocolViolation, op, "tag %d: cannot map with direction %s", tag, dir)
	}
	if slot.state != StateUnmapped {
		return 0, types.Errorf(types.KindProtocolViolation, op, "tag %d is already mapped for %s", tag, slot.dir)
	}
	if len(buf) == 0 {
		return 0, types.Errorf(types.KindSizing, op, "empty buffer")
	}

	segs := append(slot.segments[:0], interfaces.Segment{Page: buf, Offset: 0, Length: len(buf)})
	committed, err := t.commit(op, segs, dir)
	if err != nil {
		clear(segs)
		return 0, err
	}
	slot.mapped(segs, committed, dir)
	return len(segs), nil
}

func (t *Table) commit(op string, segs []interfaces.Segment, dir types.Direction) (int, error) {
	if len(segs) == 0 {
		return 0, nil
	}
	n, err := t.mapper.Map(segs, dir)
	if err != nil {
		return 0, fmt.Errorf("%s: commit %d segments: %w", op, len(segs), err)
	}
	if n == 0 {
		logging.Error(logging.ComponentSlots, "backend committed no segments", "segments", len(segs))
		return 0, types.Errorf(types.KindBackendExhaustion, op, "backend committed 0 of %d segments", len(segs))
	}
	if n > len(segs) {
		return 0, errors.Join(
			fmt.Errorf("%s: backend committed %d of %d segments", op, n, len(segs)),
			t.mapper.Unmap(segs, dir))
	}
	return n, nil
}

// UnmapRequest releases the mapping on tag. The slot returns to the
// unmapped state even if the backend reports an error.
func (t *Table) UnmapRequest(tag types.Tag) error {
	const op = "sg.unmap"
	slot, err := t.Slot(tag)
	if err != nil {
		return err
	}
	if slot.state != StateMapped {
		return types.Errorf(types.KindProtocolViolation, op, "tag %d is not mapped", tag)
	}

	var unmapErr error
	if slot.committed > 0 {
		unmapErr = t.mapper.Unmap(slot.segments[:slot.committed], slot.dir)
	}
	slot.reset()
	if unmapErr != nil {
		return fmt.Errorf("%s: tag %d: %w", op, tag, unmapErr)
	}
	return nil
}

// ScatterList returns a copy of the segments currently built for tag.
// The segments still reference backing memory.
func (t *Table) ScatterList(tag types.Tag) ([]interfaces.Segment, error) {
	slot, err := t.Slot(tag)
	if err != nil {
		return nil, err
	}
	return slices.Clone(slot.segments), nil
}

// HintStats returns how many translations were served from request hints
// and how many needed an index lookup.
func (t *Table) HintStats() (hits, misses uint64) {
	return t.hintHits.Load(), t.hintMisses.Load()
}

// Release drops every slot's scatter list storage. Active mappings are
// released first.
func (t *Table) Release() error {
	var firstErr error
	for i := range t.slots {
		if t.slots[i].state == StateMapped {
			if err := t.UnmapRequest(types.Tag(i)); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		t.slots[i].segments = nil
	}
	return firstErr
}
