// Package translate resolves sector numbers to backing memory.
package translate

import (
	"github.com/deploymenttheory/go-satatarget/internal/extents"
	"github.com/deploymenttheory/go-satatarget/internal/types"
)

// Hint remembers the last extent a request touched. It is a borrowed
// handle into the index, private to one request. The zero value is empty.
type Hint struct {
	extent extents.Handle
	valid  bool

	// Hits counts translations served from the hint
	Hits uint64
	// Misses counts translations that needed an index lookup
	Misses uint64
}

// Reset clears the hint and its counters.
func (h *Hint) Reset() {
	*h = Hint{}
}

// Run is the longest contiguous piece of backing memory starting at a
// sector. It never crosses a page boundary or the end of its extent.
type Run struct {
	// Extent is the extent holding the run
	Extent extents.Handle
	// Page is the page of the extent buffer holding the run
	Page []byte
	// Offset is the byte offset of the sector within Page
	Offset int
	// Length is the number of bytes available from Offset
	Length int
}

// Translator maps sectors to runs using a read-only extent index.
type Translator struct {
	index *extents.Index
}

// New creates a new Translator over index.
func New(index *extents.Index) *Translator {
	return &Translator{index: index}
}

// Index returns the extent index the translator reads.
func (t *Translator) Index() *extents.Index {
	return t.index
}

// Translate returns the run starting at sector s, reusing hint when it
// already refers to the extent covering s and updating it otherwise.
func (t *Translator) Translate(hint *Hint, s types.Sector) (Run, error) {
	var e *extents.Extent
	if hint.valid {
		if cached := t.index.Get(hint.extent); cached != nil && cached.Contains(s) {
			e = cached
			hint.Hits++
		}
	}
	if e == nil {
		h, err := t.index.Find(s)
		if err != nil {
			return Run{}, err
		}
		hint.extent, hint.valid = h, true
		hint.Misses++
		e = t.index.Get(h)
	}

	off := uint64(s-e.Start) << types.SectorShift
	page := off >> types.PageShift
	pageOff := int(off & (types.PageSize - 1))

	length := types.PageSize - pageOff
	if tail := (uint64(e.End()) - uint64(s)) << types.SectorShift; uint64(length) > tail {
		length = int(tail)
	}

	base := page << types.PageShift
	return Run{
		Extent: hint.extent,
		Page:   e.Buffer[base : base+types.PageSize],
		Offset: pageOff,
		Length: length,
	}, nil
}
