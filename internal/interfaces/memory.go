// File: internal/interfaces/memory.go
package interfaces

// PageAllocator hands out physically contiguous, power-of-two sized
// regions of memory for the backing store.
type PageAllocator interface {
	// AllocPages returns a region of PageSize << order bytes, or an
	// error when no region of that order is available.
	AllocPages(order int) ([]byte, error)

	// FreePages releases a region previously returned by AllocPages
	// with the same order.
	FreePages(region []byte, order int) error

	// Name identifies the allocator in logs and statistics
	Name() string
}

// MemoryInventory reports how much memory the host has.
type MemoryInventory interface {
	// TotalBytes returns the total system memory in bytes
	TotalBytes() (uint64, error)
}
