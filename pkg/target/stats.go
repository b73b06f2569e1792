package target

import (
	"github.com/google/uuid"

	"github.com/deploymenttheory/go-satatarget/internal/types"
)

// Stats is a snapshot of the device's layout and counters.
type Stats struct {
	ID          uuid.UUID `json:"id" yaml:"id"`
	Owner       string    `json:"owner" yaml:"owner"`
	Sectors     uint64    `json:"sectors" yaml:"sectors"`
	Bytes       uint64    `json:"bytes" yaml:"bytes"`
	QueueDepth  int       `json:"queue_depth" yaml:"queue_depth"`
	MaxSegments int       `json:"max_segments" yaml:"max_segments"`
	WriteCache  bool      `json:"write_cache" yaml:"write_cache"`
	Allocator   string    `json:"allocator" yaml:"allocator"`
	Pages       uint64    `json:"pages" yaml:"pages"`
	Extents     int       `json:"extents" yaml:"extents"`
	TreeHeight  int       `json:"tree_height" yaml:"tree_height"`
	Orders      []uint64  `json:"orders" yaml:"orders"`
	Lookups     uint64    `json:"index_lookups" yaml:"index_lookups"`
	HintHits    uint64    `json:"hint_hits" yaml:"hint_hits"`
	HintMisses  uint64    `json:"hint_misses" yaml:"hint_misses"`
}

// Stats returns a snapshot of the device.
func (t *Target) Stats() Stats {
	hits, misses := t.slots.HintStats()
	orders := make([]uint64, 0, len(t.alloc.Orders))
	last := -1
	for i, n := range t.alloc.Orders {
		if n != 0 {
			last = i
		}
	}
	orders = append(orders, t.alloc.Orders[:last+1]...)

	return Stats{
		ID:          t.id,
		Owner:       t.owner,
		Sectors:     t.capacity,
		Bytes:       t.capacity * types.SectorSize,
		QueueDepth:  t.slots.Depth(),
		MaxSegments: t.slots.MaxSegments(),
		WriteCache:  t.writeCache.Load(),
		Allocator:   t.alloc.Allocator,
		Pages:       t.alloc.Pages,
		Extents:     t.index.Len(),
		TreeHeight:  t.index.Height(),
		Orders:      orders,
		Lookups:     t.index.Lookups(),
		HintHits:    hits,
		HintMisses:  misses,
	}
}
