package backing

import (
	"errors"
	"fmt"
	"sync"

	"github.com/deploymenttheory/go-satatarget/internal/interfaces"
)

// Tracking errors.
var (
	ErrDoubleFree    = errors.New("region freed twice")
	ErrUnknownRegion = errors.New("region was not allocated here")
	ErrOrderMismatch = errors.New("region freed with a different order")
)

// Tracker records every region handed out by an allocator so leaks and
// double frees can be detected.
type Tracker struct {
	base interfaces.PageAllocator

	mu     sync.Mutex
	live   map[*byte]int
	freed  map[*byte]bool
	allocs int
	frees  int
}

// NewTracker wraps base with allocation tracking.
func NewTracker(base interfaces.PageAllocator) *Tracker {
	return &Tracker{
		base:  base,
		live:  make(map[*byte]int),
		freed: make(map[*byte]bool),
	}
}

// AllocPages allocates from the base allocator and records the region.
func (t *Tracker) AllocPages(order int) ([]byte, error) {
	region, err := t.base.AllocPages(order)
	if err != nil {
		return nil, err
	}
	if len(region) == 0 {
		return region, nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	key := &region[0]
	t.live[key] = order
	delete(t.freed, key)
	t.allocs++
	return region, nil
}

// FreePages checks the region against the record and frees it.
func (t *Tracker) FreePages(region []byte, order int) error {
	if len(region) == 0 {
		return fmt.Errorf("free of empty region: %w", ErrUnknownRegion)
	}
	key := &region[0]

	t.mu.Lock()
	got, ok := t.live[key]
	switch {
	case !ok && t.freed[key]:
		t.mu.Unlock()
		return ErrDoubleFree
	case !ok:
		t.mu.Unlock()
		return ErrUnknownRegion
	case got != order:
		t.mu.Unlock()
		return fmt.Errorf("allocated at order %d, freed at %d: %w", got, order, ErrOrderMismatch)
	}
	delete(t.live, key)
	t.freed[key] = true
	t.frees++
	t.mu.Unlock()

	return t.base.FreePages(region, order)
}

// Outstanding returns the number of regions not yet freed.
func (t *Tracker) Outstanding() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}

// Counts returns the number of allocations and frees seen.
func (t *Tracker) Counts() (allocs, frees int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.allocs, t.frees
}

// Name returns the base allocator's name.
func (t *Tracker) Name() string {
	return t.base.Name()
}
