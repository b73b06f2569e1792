package target

import (
	"fmt"

	"github.com/deploymenttheory/go-satatarget/internal/identity"
	"github.com/deploymenttheory/go-satatarget/internal/logging"
	"github.com/deploymenttheory/go-satatarget/internal/transfer"
	"github.com/deploymenttheory/go-satatarget/internal/types"
)

// IdentityTag is the tag IDENTIFY data is always mapped on, as a single
// read segment. The device is expected to be idle when IDENTIFY is issued.
const IdentityTag types.Tag = 0

// MapRequest builds and commits the scatter list for count sectors at
// start on tag. It returns the number of segments built.
//
// Errors are typed: OutOfRange for sectors past the end of the device,
// Sizing when the slot's segments cannot cover the request, Protocol-
// Violation for a bad tag or a tag that is already mapped, and
// BackendExhaustion (retryable) when the backend commits nothing.
func (t *Target) MapRequest(start types.Sector, count uint64, tag types.Tag, dir types.Direction) (int, error) {
	if err := t.live("target.map"); err != nil {
		return 0, err
	}
	return t.slots.MapRequest(start, count, tag, dir)
}

// UnmapRequest releases the mapping on tag.
func (t *Target) UnmapRequest(tag types.Tag) error {
	if err := t.live("target.unmap"); err != nil {
		return err
	}
	return t.slots.UnmapRequest(tag)
}

// Identity returns the IDENTIFY parameters for the device's current
// configuration.
func (t *Target) Identity() identity.Params {
	return identity.Params{
		Sectors:    t.capacity,
		QueueDepth: t.slots.Depth(),
		WriteCache: t.writeCache.Load(),
		Serial:     t.serial,
		Firmware:   t.firmware,
		Model:      t.model,
		WWN:        t.WWN(),
	}
}

// MapIdentity fills the device's IDENTIFY buffer and maps it for reading
// on IdentityTag. It returns the tag and the number of segments built,
// which is always 1, matching what MapRequest reports.
func (t *Target) MapIdentity() (types.Tag, int, error) {
	const op = "target.map_identity"
	if err := t.live(op); err != nil {
		return IdentityTag, 0, err
	}
	slot, err := t.slots.Slot(IdentityTag)
	if err != nil {
		return IdentityTag, 0, err
	}
	if slot.Direction() != types.DirectionUnmapped {
		return IdentityTag, 0, types.Errorf(types.KindProtocolViolation, op, "tag %d is busy", IdentityTag)
	}

	if err := identity.Fill(t.identity, t.Identity()); err != nil {
		return IdentityTag, 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := t.slots.MapBuffer(IdentityTag, t.identity, types.DirectionRead)
	if err != nil {
		return IdentityTag, 0, err
	}
	logging.Debug(logging.ComponentIdentity, "identify mapped", "id", t.id, "segments", n)
	return IdentityTag, n, nil
}

// ReadSectors reads len(buf)/SectorSize sectors at start through tag.
func (t *Target) ReadSectors(tag types.Tag, start types.Sector, buf []byte) (int, error) {
	return t.transfer(tag, start, buf, types.DirectionRead)
}

// WriteSectors writes len(buf)/SectorSize sectors at start through tag.
func (t *Target) WriteSectors(tag types.Tag, start types.Sector, buf []byte) (int, error) {
	return t.transfer(tag, start, buf, types.DirectionWrite)
}

// transfer moves buf through tag in as many map/copy/unmap rounds as
// the slot's segment capacity requires. It returns the bytes moved.
func (t *Target) transfer(tag types.Tag, start types.Sector, buf []byte, dir types.Direction) (int, error) {
	op := "target." + dir.String()
	if len(buf)%types.SectorSize != 0 {
		return 0, types.Errorf(types.KindSizing, op, "buffer of %d bytes is not a whole number of sectors", len(buf))
	}
	count := uint64(len(buf)) / types.SectorSize
	if uint64(start) > t.capacity || count > t.capacity-uint64(start) {
		return 0, types.Errorf(types.KindOutOfRange, op, "sectors [%d, +%d) beyond capacity %d", start, count, t.capacity)
	}

	done := 0
	sector := start
	for count > 0 {
		// Extents start on page boundaries, so only the first page of a
		// round can be partial.
		n := uint64(t.slots.MaxSegments())*types.PageSectors - uint64(sector)%types.PageSectors
		if n > count {
			n = count
		}
		if _, err := t.MapRequest(sector, n, tag, dir); err != nil {
			return done, err
		}
		segs, err := t.slots.ScatterList(tag)
		if err == nil {
			_, err = transfer.Copy(segs, buf[done:done+int(n)*types.SectorSize], dir)
		}
		if unmapErr := t.UnmapRequest(tag); err == nil {
			err = unmapErr
		}
		if err != nil {
			return done, err
		}
		done += int(n) * types.SectorSize
		sector += types.Sector(n)
		count -= n
	}
	return done, nil
}
