package target

import (
	"github.com/deploymenttheory/go-satatarget/internal/interfaces"
	"github.com/deploymenttheory/go-satatarget/internal/types"
)

type options struct {
	pages        interfaces.PageAllocator
	inventory    interfaces.MemoryInventory
	mapper       interfaces.TransferMapper
	maxOrder     int
	reserveBytes uint64
	writeCache   bool
	serial       string
	firmware     string
	model        string
}

// Option configures a Target.
type Option func(*options)

// WithPageAllocator sets the allocator backing the disk. The default
// allocates from the Go heap.
func WithPageAllocator(p interfaces.PageAllocator) Option {
	return func(o *options) { o.pages = p }
}

// WithMemoryInventory sets the memory inventory the reserve guard
// consults. The default queries the host.
func WithMemoryInventory(m interfaces.MemoryInventory) Option {
	return func(o *options) { o.inventory = m }
}

// WithTransferMapper sets the backend scatter lists are committed to.
// The default is an in-process loopback mapper.
func WithTransferMapper(m interfaces.TransferMapper) Option {
	return func(o *options) { o.mapper = m }
}

// WithMaxOrder sets the largest chunk order the allocator tries first.
func WithMaxOrder(order int) Option {
	return func(o *options) { o.maxOrder = order }
}

// WithReserveBytes sets how much system memory the guard keeps free.
func WithReserveBytes(n uint64) Option {
	return func(o *options) { o.reserveBytes = n }
}

// WithWriteCache sets the initial write-cache state. Enabled by default.
func WithWriteCache(enabled bool) Option {
	return func(o *options) { o.writeCache = enabled }
}

// WithIdentity sets the serial number, firmware revision and model
// strings reported by IDENTIFY. Empty strings keep the defaults.
func WithIdentity(serial, firmware, model string) Option {
	return func(o *options) {
		o.serial, o.firmware, o.model = serial, firmware, model
	}
}

func defaultOptions() options {
	return options{
		maxOrder:     types.DefaultMaxOrder,
		reserveBytes: types.DefaultReserveMB << 20,
		writeCache:   true,
	}
}
