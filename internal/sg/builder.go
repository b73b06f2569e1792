// Package sg builds per-command scatter-gather lists over the backing
// store and tracks the map/unmap protocol of each command slot.
package sg

import (
	"github.com/deploymenttheory/go-satatarget/internal/interfaces"
	"github.com/deploymenttheory/go-satatarget/internal/translate"
	"github.com/deploymenttheory/go-satatarget/internal/types"
)

// Build appends to dst the segments covering count sectors from start,
// one segment per contiguous run. It fails with a sizing error instead of
// truncating when more than max segments would be needed.
func Build(tr *translate.Translator, hint *translate.Hint, start types.Sector, count uint64,
	dst []interfaces.Segment, max int) ([]interfaces.Segment, error) {
	const op = "sg.build"

	sector := start
	remaining := count << types.SectorShift
	for remaining > 0 {
		if len(dst) >= max {
			return dst, types.Errorf(types.KindSizing, op,
				"%d segments cover only %d of %d sectors starting at %d",
				max, uint64(sector-start), count, start)
		}

		run, err := tr.Translate(hint, sector)
		if err != nil {
			return dst, err
		}
		n := uint64(run.Length)
		if n > remaining {
			n = remaining
		}

		dst = append(dst, interfaces.Segment{
			Page:   run.Page,
			Offset: run.Offset,
			Length: int(n),
		})
		sector += types.Sector(n >> types.SectorShift)
		remaining -= n
	}
	return dst, nil
}

// SegmentsNeeded returns how many segments a request of count sectors at
// start needs, given that extents start on page boundaries.
func SegmentsNeeded(start types.Sector, count uint64) int {
	if count == 0 {
		return 0
	}
	first := uint64(start) % types.PageSectors
	return int((first + count + types.PageSectors - 1) / types.PageSectors)
}
