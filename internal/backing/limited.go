package backing

import (
	"errors"
	"fmt"
	"sync"

	"github.com/deploymenttheory/go-satatarget/internal/interfaces"
	"github.com/deploymenttheory/go-satatarget/internal/types"
)

// ErrNoPages is returned when a LimitedAllocator cannot serve a request.
var ErrNoPages = errors.New("no pages available")

// LimitedAllocator caps another allocator. Requests above MaxOrder fail,
// which models a fragmented host, and outstanding bytes never exceed
// Budget when Budget is non-zero.
type LimitedAllocator struct {
	base     interfaces.PageAllocator
	maxOrder int
	budget   uint64

	mu   sync.Mutex
	used uint64
}

// NewLimitedAllocator wraps base with an order ceiling and a byte budget.
func NewLimitedAllocator(base interfaces.PageAllocator, maxOrder int, budget uint64) *LimitedAllocator {
	return &LimitedAllocator{base: base, maxOrder: maxOrder, budget: budget}
}

// AllocPages allocates from the base allocator if the limits allow it.
func (l *LimitedAllocator) AllocPages(order int) ([]byte, error) {
	if order > l.maxOrder {
		return nil, fmt.Errorf("order %d above limit %d: %w", order, l.maxOrder, ErrNoPages)
	}
	size := uint64(types.OrderBytes(order))

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.budget != 0 && l.used+size > l.budget {
		return nil, fmt.Errorf("order %d exceeds budget (%d of %d used): %w", order, l.used, l.budget, ErrNoPages)
	}
	region, err := l.base.AllocPages(order)
	if err != nil {
		return nil, err
	}
	l.used += size
	return region, nil
}

// FreePages returns the region to the base allocator.
func (l *LimitedAllocator) FreePages(region []byte, order int) error {
	if err := l.base.FreePages(region, order); err != nil {
		return err
	}
	l.mu.Lock()
	l.used -= uint64(types.OrderBytes(order))
	l.mu.Unlock()
	return nil
}

// Used returns the number of bytes currently allocated.
func (l *LimitedAllocator) Used() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used
}

// Name returns the base allocator's name with a "limited-" prefix.
func (l *LimitedAllocator) Name() string {
	return "limited-" + l.base.Name()
}
