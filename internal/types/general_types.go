// Package types holds the constants and small value types shared by the
// memory-backed SATA target.
package types

// General-Purpose Types
// Basic geometry of the emulated device and of its backing store.

const (
	// SectorShift is log2 of SectorSize.
	SectorShift = 9

	// SectorSize is the native sector size of the emulated device in bytes.
	SectorSize = 1 << SectorShift

	// PageShift is log2 of PageSize.
	PageShift = 12

	// PageSize is the allocation unit of the backing store in bytes.
	// A scatter-gather segment never crosses a page boundary.
	PageSize = 1 << PageShift

	// PageSectors is the number of sectors that fit in one page.
	PageSectors = PageSize >> SectorShift

	// DefaultMaxOrder is the largest chunk the backing allocator asks for
	// first, as a power-of-two number of pages (2^5 pages = 128KiB).
	DefaultMaxOrder = 5

	// MaxOrderLimit bounds the configurable max order.
	MaxOrderLimit = 10

	// IdentityLength is the size of the IDENTIFY DEVICE data block.
	IdentityLength = 512

	// DefaultQueueDepth is the NCQ depth advertised by default.
	DefaultQueueDepth = 32

	// MaxQueueDepth is the largest queue depth representable by an NCQ tag.
	MaxQueueDepth = 32

	// DefaultReserveMB is how much system memory the capacity guard keeps free.
	DefaultReserveMB = 256
)

// Sector is a sector number on the emulated device.
type Sector uint64

// Bytes returns the byte address of the sector.
func (s Sector) Bytes() uint64 {
	return uint64(s) << SectorShift
}

// SectorRange is a half-open range of sectors [Start, Start+Count).
type SectorRange struct {
	// The first sector in the range.
	Start Sector
	// The number of sectors in the range.
	Count uint64
}

// End returns the first sector past the range.
func (r SectorRange) End() Sector {
	return r.Start + Sector(r.Count)
}

// Contains reports whether s falls inside the range.
func (r SectorRange) Contains(s Sector) bool {
	return s >= r.Start && s < r.End()
}

// Overlaps reports whether the two ranges share at least one sector.
func (r SectorRange) Overlaps(o SectorRange) bool {
	return r.Start < o.End() && o.Start < r.End()
}

// Tag identifies one command slot, 0..depth-1.
type Tag uint8

// PagesForSectors returns the number of pages needed to hold n sectors.
func PagesForSectors(n uint64) uint64 {
	pages := n / PageSectors
	if n%PageSectors != 0 {
		pages++
	}
	return pages
}

// OrderPages returns the number of pages in a chunk of the given order.
func OrderPages(order int) uint64 {
	return 1 << uint(order)
}

// OrderBytes returns the number of bytes in a chunk of the given order.
func OrderBytes(order int) int {
	return PageSize << uint(order)
}
