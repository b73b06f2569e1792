package backing

import (
	"fmt"

	"github.com/deploymenttheory/go-satatarget/internal/types"
)

// HeapAllocator serves regions from the Go heap.
type HeapAllocator struct{}

// NewHeapAllocator creates a new HeapAllocator.
func NewHeapAllocator() *HeapAllocator {
	return &HeapAllocator{}
}

// AllocPages allocates a zeroed region of the given order.
func (h *HeapAllocator) AllocPages(order int) ([]byte, error) {
	if order < 0 || order > types.MaxOrderLimit {
		return nil, fmt.Errorf("order %d out of range", order)
	}
	return make([]byte, types.OrderBytes(order)), nil
}

// FreePages drops the region; the garbage collector reclaims it.
func (h *HeapAllocator) FreePages(region []byte, order int) error {
	return nil
}

// Name returns "heap".
func (h *HeapAllocator) Name() string {
	return "heap"
}
