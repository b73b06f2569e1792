// Package extents maps sector ranges of the emulated disk to the memory
// chunks that back them.
//
// The index is built once while the device is created and is read-only
// afterwards, so lookups need no locking. Extents live in an arena and
// are addressed by stable Handles; the balanced search tree links arena
// slots by handle rather than by pointer.
package extents

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/deploymenttheory/go-satatarget/internal/types"
)

// Extent is a contiguous range of sectors backed by one memory chunk.
type Extent struct {
	// The first sector covered by the extent.
	Start types.Sector
	// The number of sectors covered.
	Sectors uint64
	// The chunk backing the extent, at least Sectors*SectorSize bytes.
	Buffer []byte
	// The allocation order of Buffer.
	Order int
}

// End returns the first sector past the extent.
func (e *Extent) End() types.Sector {
	return e.Start + types.Sector(e.Sectors)
}

// Contains reports whether the extent covers sector s.
func (e *Extent) Contains(s types.Sector) bool {
	return s >= e.Start && s < e.End()
}

// Range returns the sector range covered by the extent.
func (e *Extent) Range() types.SectorRange {
	return types.SectorRange{Start: e.Start, Count: e.Sectors}
}

// Handle addresses an extent in the index arena.
type Handle int32

// NoHandle is the handle of no extent.
const NoHandle Handle = -1

type node struct {
	ext         Extent
	left, right Handle
	height      int8
}

// Index is an interval-keyed AVL tree over non-overlapping extents.
type Index struct {
	nodes   []node
	root    Handle
	lookups atomic.Uint64
}

// NewIndex creates an empty index sized for n extents.
func NewIndex(n int) *Index {
	return &Index{nodes: make([]node, 0, n), root: NoHandle}
}

// Insert adds an extent. An extent that is empty or overlaps one already
// present is rejected and leaves the index unchanged.
func (x *Index) Insert(e Extent) (Handle, error) {
	const op = "extents.insert"
	if e.Sectors == 0 {
		return NoHandle, types.Errorf(types.KindProtocolViolation, op, "empty extent at sector %d", e.Start)
	}
	if e.End() < e.Start {
		return NoHandle, types.Errorf(types.KindProtocolViolation, op, "extent at sector %d wraps", e.Start)
	}
	if uint64(len(e.Buffer)) < e.Sectors*types.SectorSize {
		return NoHandle, types.Errorf(types.KindProtocolViolation, op,
			"extent at sector %d: %d byte buffer for %d sectors", e.Start, len(e.Buffer), e.Sectors)
	}

	h := Handle(len(x.nodes))
	x.nodes = append(x.nodes, node{ext: e, left: NoHandle, right: NoHandle, height: 1})
	root, err := x.insert(x.root, h)
	if err != nil {
		x.nodes = x.nodes[:h]
		return NoHandle, types.NewError(types.KindProtocolViolation, op, err)
	}
	x.root = root
	return h, nil
}

func (x *Index) insert(at, h Handle) (Handle, error) {
	if at == NoHandle {
		return h, nil
	}
	cur, ne := &x.nodes[at].ext, &x.nodes[h].ext
	switch {
	case ne.End() <= cur.Start:
		l, err := x.insert(x.nodes[at].left, h)
		if err != nil {
			return at, err
		}
		x.nodes[at].left = l
	case ne.Start >= cur.End():
		r, err := x.insert(x.nodes[at].right, h)
		if err != nil {
			return at, err
		}
		x.nodes[at].right = r
	default:
		return at, fmt.Errorf("extent [%d, %d) overlaps [%d, %d)", ne.Start, ne.End(), cur.Start, cur.End())
	}
	return x.rebalance(at), nil
}

// Find returns the extent covering sector s.
func (x *Index) Find(s types.Sector) (Handle, error) {
	x.lookups.Add(1)
	h := x.root
	for h != NoHandle {
		n := &x.nodes[h]
		switch {
		case s < n.ext.Start:
			h = n.left
		case s >= n.ext.End():
			h = n.right
		default:
			return h, nil
		}
	}
	return NoHandle, types.Errorf(types.KindOutOfRange, "extents.find", "no extent covers sector %d", s)
}

// Get returns the extent for h. The pointer stays valid until the next
// Insert or Release.
func (x *Index) Get(h Handle) *Extent {
	if h < 0 || int(h) >= len(x.nodes) {
		return nil
	}
	return &x.nodes[h].ext
}

// Len returns the number of extents.
func (x *Index) Len() int {
	return len(x.nodes)
}

// Lookups returns how many times Find has been called.
func (x *Index) Lookups() uint64 {
	return x.lookups.Load()
}

// Height returns the height of the tree.
func (x *Index) Height() int {
	return int(x.height(x.root))
}

// Ascend calls fn for each extent in sector order until fn returns false.
func (x *Index) Ascend(fn func(Handle, *Extent) bool) {
	x.ascend(x.root, fn)
}

func (x *Index) ascend(h Handle, fn func(Handle, *Extent) bool) bool {
	if h == NoHandle {
		return true
	}
	n := &x.nodes[h]
	return x.ascend(n.left, fn) && fn(h, &n.ext) && x.ascend(n.right, fn)
}

// Covered returns the total number of sectors covered if the extents tile
// [0, n) without gaps, or an error naming the first gap.
func (x *Index) Covered() (uint64, error) {
	var next types.Sector
	var gapErr error
	x.Ascend(func(_ Handle, e *Extent) bool {
		if e.Start != next {
			gapErr = fmt.Errorf("gap: expected extent at sector %d, found %d", next, e.Start)
			return false
		}
		next = e.End()
		return true
	})
	if gapErr != nil {
		return 0, gapErr
	}
	return uint64(next), nil
}

// Release hands every extent to free exactly once and empties the index.
func (x *Index) Release(free func(*Extent) error) error {
	var errs []error
	for i := range x.nodes {
		if x.nodes[i].ext.Buffer == nil {
			continue
		}
		if err := free(&x.nodes[i].ext); err != nil {
			errs = append(errs, fmt.Errorf("release extent at sector %d: %w", x.nodes[i].ext.Start, err))
		}
		x.nodes[i].ext.Buffer = nil
	}
	x.nodes = x.nodes[:0]
	x.root = NoHandle
	return errors.Join(errs...)
}
