// Package transfer provides in-process implementations of the transfer
// backend: mappers that commit scatter lists and a copy engine that
// moves bytes through them.
package transfer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/deploymenttheory/go-satatarget/internal/interfaces"
	"github.com/deploymenttheory/go-satatarget/internal/types"
)

// ErrNotMapped is returned by Unmap when no mapping is active.
var ErrNotMapped = errors.New("no active mapping")

// Loopback commits every segment it is given. The host and the target
// share one address space, so a mapping is only bookkeeping.
type Loopback struct {
	mu     sync.Mutex
	active int
	maps   uint64
	unmaps uint64
	bytes  uint64
}

// NewLoopback creates a new Loopback mapper.
func NewLoopback() *Loopback {
	return &Loopback{}
}

// Map commits all of segs.
func (l *Loopback) Map(segs []interfaces.Segment, dir types.Direction) (int, error) {
	if !dir.IsTransfer() {
		return 0, fmt.Errorf("map with direction %s", dir)
	}
	var n uint64
	for _, s := range segs {
		if s.Offset < 0 || s.Length <= 0 || s.Offset+s.Length > len(s.Page) {
			return 0, fmt.Errorf("segment [%d, +%d) outside %d byte page", s.Offset, s.Length, len(s.Page))
		}
		n += uint64(s.Length)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.active++
	l.maps++
	l.bytes += n
	return len(segs), nil
}

// Unmap releases a mapping.
func (l *Loopback) Unmap(segs []interfaces.Segment, dir types.Direction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active == 0 {
		return ErrNotMapped
	}
	l.active--
	l.unmaps++
	return nil
}

// Active returns the number of live mappings.
func (l *Loopback) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Counts returns the number of maps and unmaps performed and the total
// bytes mapped.
func (l *Loopback) Counts() (maps, unmaps, bytes uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.maps, l.unmaps, l.bytes
}
