//go:build !linux && !darwin

package backing

import (
	"errors"
)

// MmapAllocator is not available on this platform.
type MmapAllocator struct{}

// NewMmapAllocator reports that anonymous mappings are unsupported.
func NewMmapAllocator() (*MmapAllocator, error) {
	return nil, errors.New("mmap allocator not supported on this platform")
}

// AllocPages always fails.
func (m *MmapAllocator) AllocPages(order int) ([]byte, error) {
	return nil, errors.New("mmap allocator not supported on this platform")
}

// FreePages always fails.
func (m *MmapAllocator) FreePages(region []byte, order int) error {
	return errors.New("mmap allocator not supported on this platform")
}

// Name returns "mmap".
func (m *MmapAllocator) Name() string {
	return "mmap"
}
