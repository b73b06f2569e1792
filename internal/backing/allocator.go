// Package backing allocates the memory that backs the emulated disk.
package backing

import (
	"errors"
	"fmt"

	"github.com/deploymenttheory/go-satatarget/internal/interfaces"
	"github.com/deploymenttheory/go-satatarget/internal/logging"
	"github.com/deploymenttheory/go-satatarget/internal/types"
)

// Chunk is one physically contiguous region covering a run of sectors.
// Region always holds PageSize << Order bytes; Sectors may be smaller
// than the region for the final chunk of a device whose capacity is not
// a whole number of pages.
type Chunk struct {
	Start   types.Sector
	Sectors uint64
	Region  []byte
	Order   int
}

// Stats describes how a backing store was assembled.
type Stats struct {
	// Allocator is the name of the page allocator used
	Allocator string
	// Pages is the number of pages allocated
	Pages uint64
	// Chunks is the number of chunks allocated
	Chunks int
	// Orders counts chunks per order, indexed by order
	Orders [types.MaxOrderLimit + 1]uint64
}

// Options tunes an Allocator.
type Options struct {
	// MaxOrder is the order of the first chunk size tried.
	MaxOrder int
	// ReserveBytes is how much system memory must stay unconsumed.
	ReserveBytes uint64
}

// DefaultOptions returns the allocator defaults.
func DefaultOptions() Options {
	return Options{
		MaxOrder:     types.DefaultMaxOrder,
		ReserveBytes: types.DefaultReserveMB << 20,
	}
}

// Allocator covers a sector count with chunks of decreasing order.
type Allocator struct {
	pages     interfaces.PageAllocator
	inventory interfaces.MemoryInventory
	opts      Options
}

// NewAllocator creates a new backing allocator.
func NewAllocator(pages interfaces.PageAllocator, inventory interfaces.MemoryInventory, opts Options) (*Allocator, error) {
	if pages == nil {
		return nil, types.Errorf(types.KindConfiguration, "backing.new", "no page allocator")
	}
	if inventory == nil {
		return nil, types.Errorf(types.KindConfiguration, "backing.new", "no memory inventory")
	}
	if opts.MaxOrder < 0 || opts.MaxOrder > types.MaxOrderLimit {
		return nil, types.Errorf(types.KindConfiguration, "backing.new",
			"max order %d outside [0, %d]", opts.MaxOrder, types.MaxOrderLimit)
	}
	return &Allocator{pages: pages, inventory: inventory, opts: opts}, nil
}

// CheckCapacity applies the reserve-memory guard to a capacity request.
func (a *Allocator) CheckCapacity(sectors uint64) error {
	const op = "backing.check"
	if sectors == 0 {
		return types.Errorf(types.KindConfiguration, op, "capacity is zero")
	}

	total, err := a.inventory.TotalBytes()
	if err != nil {
		return types.NewError(types.KindConfiguration, op, fmt.Errorf("query system memory: %w", err))
	}
	// Compare in pages: a byte count for huge capacities overflows.
	pages := types.PagesForSectors(sectors)
	available := saturatingSub(total, a.opts.ReserveBytes)
	if total < a.opts.ReserveBytes || pages > available/types.PageSize {
		logging.Error(logging.ComponentAllocator, "capacity too large",
			"sectors", sectors, "need_pages", pages, "system_bytes", total, "reserve_bytes", a.opts.ReserveBytes)
		return types.Errorf(types.KindConfiguration, op,
			"%d sectors is too large: need %d pages, %d bytes available after %d reserve",
			sectors, pages, available, a.opts.ReserveBytes)
	}
	return nil
}

// Allocate returns chunks whose sector counts sum to exactly sectors,
// laid out back to back from sector 0. Either every chunk is returned or
// none is: on failure everything already allocated is freed.
func (a *Allocator) Allocate(sectors uint64) ([]Chunk, *Stats, error) {
	const op = "backing.allocate"
	if err := a.CheckCapacity(sectors); err != nil {
		return nil, nil, err
	}

	stats := &Stats{Allocator: a.pages.Name()}
	nrPages := types.PagesForSectors(sectors)
	order := a.opts.MaxOrder
	left := nrPages
	var offset types.Sector
	var chunks []Chunk

	for left > 0 {
		for types.OrderPages(order) > left {
			order--
		}

		var region []byte
		for {
			var err error
			region, err = a.allocRegion(order)
			if err == nil {
				break
			}
			if order == 0 {
				got := nrPages - left
				logging.Error(logging.ComponentAllocator, "out of memory",
					"got_pages", got, "want_pages", nrPages, "err", err)
				if relErr := a.Release(chunks); relErr != nil {
					err = errors.Join(err, relErr)
				}
				return nil, nil, types.NewError(types.KindResourceExhaustion, op,
					fmt.Errorf("got %d of %d pages: %w", got, nrPages, err))
			}
			order--
		}
		stats.Orders[order]++

		chunkSectors := types.OrderPages(order) * types.PageSectors
		if rest := sectors - uint64(offset); chunkSectors > rest {
			chunkSectors = rest
		}
		chunks = append(chunks, Chunk{
			Start:   offset,
			Sectors: chunkSectors,
			Region:  region,
			Order:   order,
		})
		offset += types.Sector(chunkSectors)
		left -= types.OrderPages(order)
	}

	stats.Pages = nrPages
	stats.Chunks = len(chunks)
	logStats(stats)
	return chunks, stats, nil
}

// Release frees every chunk's region once.
func (a *Allocator) Release(chunks []Chunk) error {
	var errs []error
	for i := range chunks {
		if chunks[i].Region == nil {
			continue
		}
		if err := a.pages.FreePages(chunks[i].Region, chunks[i].Order); err != nil {
			errs = append(errs, fmt.Errorf("free chunk at sector %d: %w", chunks[i].Start, err))
		}
		chunks[i].Region = nil
	}
	return errors.Join(errs...)
}

// Pages returns the underlying page allocator.
func (a *Allocator) Pages() interfaces.PageAllocator {
	return a.pages
}

func (a *Allocator) allocRegion(order int) ([]byte, error) {
	region, err := a.pages.AllocPages(order)
	if err != nil {
		return nil, err
	}
	if len(region) != types.OrderBytes(order) {
		freeErr := a.pages.FreePages(region, order)
		return nil, errors.Join(fmt.Errorf("allocator %s returned %d bytes for order %d",
			a.pages.Name(), len(region), order), freeErr)
	}
	return region, nil
}

func logStats(stats *Stats) {
	logging.Info(logging.ComponentAllocator, "backing pages allocated",
		"allocator", stats.Allocator, "pages", stats.Pages, "chunks", stats.Chunks)
	for order := len(stats.Orders) - 1; order >= 0; order-- {
		if stats.Orders[order] == 0 {
			continue
		}
		logging.Info(logging.ComponentAllocator, "chunk order",
			"order", order, "chunks", stats.Orders[order])
	}
}

func saturatingSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
