package transfer

import (
	"sync"

	"github.com/deploymenttheory/go-satatarget/internal/interfaces"
	"github.com/deploymenttheory/go-satatarget/internal/types"
)

// Fault wraps a mapper and injects failures: the next ZeroCommits calls
// to Map commit nothing, and when Err is set every Map returns it.
type Fault struct {
	Base interfaces.TransferMapper

	mu          sync.Mutex
	zeroCommits int
	err         error
}

// NewFault wraps base with fault injection.
func NewFault(base interfaces.TransferMapper) *Fault {
	return &Fault{Base: base}
}

// CommitNothing makes the next n calls to Map return zero segments.
func (f *Fault) CommitNothing(n int) {
	f.mu.Lock()
	f.zeroCommits = n
	f.mu.Unlock()
}

// FailWith makes every Map return err until cleared with nil.
func (f *Fault) FailWith(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// Map applies the configured fault or delegates to the base mapper.
func (f *Fault) Map(segs []interfaces.Segment, dir types.Direction) (int, error) {
	f.mu.Lock()
	if f.err != nil {
		err := f.err
		f.mu.Unlock()
		return 0, err
	}
	if f.zeroCommits > 0 {
		f.zeroCommits--
		f.mu.Unlock()
		return 0, nil
	}
	f.mu.Unlock()
	return f.Base.Map(segs, dir)
}

// Unmap delegates to the base mapper.
func (f *Fault) Unmap(segs []interfaces.Segment, dir types.Direction) error {
	return f.Base.Unmap(segs, dir)
}
