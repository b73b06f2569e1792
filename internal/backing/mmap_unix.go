//go:build linux || darwin

package backing

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/deploymenttheory/go-satatarget/internal/types"
)

// MmapAllocator maps anonymous private memory for each region, keeping
// the backing store out of the Go heap.
type MmapAllocator struct{}

// NewMmapAllocator creates a new MmapAllocator.
func NewMmapAllocator() (*MmapAllocator, error) {
	if ps := unix.Getpagesize(); types.PageSize%ps != 0 {
		return nil, fmt.Errorf("system page size %d does not divide unit size %d", ps, types.PageSize)
	}
	return &MmapAllocator{}, nil
}

// AllocPages maps a region of the given order.
func (m *MmapAllocator) AllocPages(order int) ([]byte, error) {
	if order < 0 || order > types.MaxOrderLimit {
		return nil, fmt.Errorf("order %d out of range", order)
	}
	region, err := unix.Mmap(-1, 0, types.OrderBytes(order),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap order %d: %w", order, err)
	}
	return region, nil
}

// FreePages unmaps the region.
func (m *MmapAllocator) FreePages(region []byte, order int) error {
	if len(region) != types.OrderBytes(order) {
		return fmt.Errorf("munmap: region of %d bytes is not order %d", len(region), order)
	}
	if err := unix.Munmap(region); err != nil {
		return fmt.Errorf("munmap order %d: %w", order, err)
	}
	return nil
}

// Name returns "mmap".
func (m *MmapAllocator) Name() string {
	return "mmap"
}
