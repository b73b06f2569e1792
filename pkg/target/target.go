// Package target is a SATA disk emulated in host memory.
//
// A Target is created with New, which allocates the whole backing store
// up front and indexes it by sector. Commands are addressed by tag: each
// tag owns a scatter-gather list that MapRequest fills and UnmapRequest
// releases, strictly alternating. The extent index is immutable once New
// returns, so distinct tags may be mapped concurrently; the caller must
// serialize use of any one tag and must not race New or Destroy with
// other calls.
package target

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/deploymenttheory/go-satatarget/internal/backing"
	"github.com/deploymenttheory/go-satatarget/internal/extents"
	"github.com/deploymenttheory/go-satatarget/internal/interfaces"
	"github.com/deploymenttheory/go-satatarget/internal/logging"
	"github.com/deploymenttheory/go-satatarget/internal/sg"
	"github.com/deploymenttheory/go-satatarget/internal/transfer"
	"github.com/deploymenttheory/go-satatarget/internal/translate"
	"github.com/deploymenttheory/go-satatarget/internal/types"
)

// Target is one memory-backed device.
type Target struct {
	id       uuid.UUID
	owner    string
	capacity uint64

	allocator  *backing.Allocator
	index      *extents.Index
	translator *translate.Translator
	slots      *sg.Table
	alloc      backing.Stats

	identityPage []byte
	identity     []byte
	serial       string
	firmware     string
	model        string

	writeCache atomic.Bool
	destroyed  bool
}

// New creates a device of capacity sectors with depth command slots of
// maxSegments segments each. owner names the device in logs. Nothing is
// left allocated when New fails.
func New(owner string, capacity uint64, depth, maxSegments int, opts ...Option) (*Target, error) {
	const op = "target.new"
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.pages == nil {
		o.pages = backing.NewHeapAllocator()
	}
	if o.inventory == nil {
		o.inventory = backing.SystemInventory{}
	}
	if o.mapper == nil {
		o.mapper = transfer.NewLoopback()
	}
	if depth < 1 || depth > types.MaxQueueDepth {
		return nil, types.Errorf(types.KindConfiguration, op, "queue depth %d outside [1, %d]", depth, types.MaxQueueDepth)
	}
	if maxSegments < 1 {
		return nil, types.Errorf(types.KindConfiguration, op, "max segments %d must be positive", maxSegments)
	}

	allocator, err := backing.NewAllocator(o.pages, o.inventory, backing.Options{
		MaxOrder:     o.maxOrder,
		ReserveBytes: o.reserveBytes,
	})
	if err != nil {
		return nil, err
	}
	if err := allocator.CheckCapacity(capacity); err != nil {
		return nil, err
	}

	t := &Target{
		id:        uuid.New(),
		owner:     owner,
		capacity:  capacity,
		allocator: allocator,
		serial:    o.serial,
		firmware:  o.firmware,
		model:     o.model,
	}
	t.writeCache.Store(o.writeCache)

	t.identityPage, err = o.pages.AllocPages(0)
	if err != nil {
		return nil, types.NewError(types.KindResourceExhaustion, op, fmt.Errorf("identify buffer: %w", err))
	}
	t.identity = t.identityPage[:types.IdentityLength]

	chunks, stats, err := allocator.Allocate(capacity)
	if err != nil {
		return nil, errors.Join(err, t.freeIdentity())
	}
	t.alloc = *stats

	t.index = extents.NewIndex(len(chunks))
	for i, c := range chunks {
		if _, err := t.index.Insert(extents.Extent{
			Start:   c.Start,
			Sectors: c.Sectors,
			Buffer:  c.Region,
			Order:   c.Order,
		}); err != nil {
			// The index owns chunks[:i]; the rest are still ours.
			return nil, errors.Join(err, t.releaseExtents(), allocator.Release(chunks[i:]), t.freeIdentity())
		}
	}
	if covered, err := t.index.Covered(); err != nil || covered != capacity {
		return nil, errors.Join(
			types.Errorf(types.KindProtocolViolation, op, "index covers %d of %d sectors: %v", covered, capacity, err),
			t.releaseExtents(), t.freeIdentity())
	}

	t.translator = translate.New(t.index)
	t.slots, err = sg.NewTable(depth, maxSegments, capacity, t.translator, o.mapper)
	if err != nil {
		return nil, errors.Join(err, t.releaseExtents(), t.freeIdentity())
	}

	logging.Info(logging.ComponentTarget, "device created",
		"id", t.id, "owner", owner, "sectors", capacity, "depth", depth,
		"max_segments", maxSegments, "extents", t.index.Len(), "tree_height", t.index.Height())
	return t, nil
}

// Destroy releases every extent and every slot's scatter list storage.
// The Target must not be used afterwards.
func (t *Target) Destroy() error {
	if t.destroyed {
		return types.Errorf(types.KindProtocolViolation, "target.destroy", "device %s already destroyed", t.id)
	}
	t.destroyed = true

	err := errors.Join(t.slots.Release(), t.releaseExtents(), t.freeIdentity())
	logging.Info(logging.ComponentTarget, "device destroyed", "id", t.id, "owner", t.owner, "err", err)
	return err
}

func (t *Target) releaseExtents() error {
	if t.index == nil {
		return nil
	}
	return t.index.Release(func(e *extents.Extent) error {
		return t.allocator.Pages().FreePages(e.Buffer, e.Order)
	})
}

func (t *Target) freeIdentity() error {
	if t.identityPage == nil {
		return nil
	}
	err := t.allocator.Pages().FreePages(t.identityPage, 0)
	t.identityPage, t.identity = nil, nil
	return err
}

func (t *Target) live(op string) error {
	if t.destroyed {
		return types.Errorf(types.KindProtocolViolation, op, "device %s is destroyed", t.id)
	}
	return nil
}

// ID returns the device's instance identifier.
func (t *Target) ID() uuid.UUID {
	return t.id
}

// Owner returns the owner name given to New.
func (t *Target) Owner() string {
	return t.owner
}

// Capacity returns the device size in sectors.
func (t *Target) Capacity() uint64 {
	return t.capacity
}

// Depth returns the number of command slots.
func (t *Target) Depth() int {
	return t.slots.Depth()
}

// MaxSegments returns the per-command segment capacity.
func (t *Target) MaxSegments() int {
	return t.slots.MaxSegments()
}

// WriteCache reports whether the write cache is enabled.
func (t *Target) WriteCache() bool {
	return t.writeCache.Load()
}

// SetWriteCache enables or disables the write cache reported by IDENTIFY.
func (t *Target) SetWriteCache(enabled bool) {
	t.writeCache.Store(enabled)
	logging.Debug(logging.ComponentTarget, "write cache set", "id", t.id, "enabled", enabled)
}

// WWN returns the World Wide Name reported by IDENTIFY, derived from the
// instance identifier in NAA 5 format.
func (t *Target) WWN() uint64 {
	return 0x5<<60 | binary.BigEndian.Uint64(t.id[:8])>>4
}

// Direction returns the direction of the active mapping on tag.
func (t *Target) Direction(tag types.Tag) (types.Direction, error) {
	slot, err := t.slots.Slot(tag)
	if err != nil {
		return types.DirectionUnmapped, err
	}
	return slot.Direction(), nil
}

// TagToScatterList returns a copy of the segments currently built for
// tag. The segments reference the device's backing memory.
func (t *Target) TagToScatterList(tag types.Tag) ([]interfaces.Segment, error) {
	if err := t.live("target.scatter_list"); err != nil {
		return nil, err
	}
	return t.slots.ScatterList(tag)
}
