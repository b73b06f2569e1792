// File: internal/interfaces/transfer.go
package interfaces

import (
	"github.com/deploymenttheory/go-satatarget/internal/types"
)

// Segment is one contiguous piece of a scatter-gather list.
type Segment struct {
	// Page is the allocation unit holding the segment
	Page []byte

	// Offset is the byte offset of the segment within Page
	Offset int

	// Length is the number of bytes in the segment
	Length int
}

// Bytes returns the memory the segment describes.
func (s Segment) Bytes() []byte {
	return s.Page[s.Offset : s.Offset+s.Length]
}

// TransferMapper turns a scatter-gather list into an active mapping
// for the transfer engine.
type TransferMapper interface {
	// Map commits segs for a transfer in the given direction and returns
	// how many segments the mapping will actually move. Zero for a
	// non-empty list means the backend is out of resources.
	Map(segs []Segment, dir types.Direction) (int, error)

	// Unmap releases a mapping produced by Map.
	Unmap(segs []Segment, dir types.Direction) error
}
