package app

import (
	"github.com/deploymenttheory/go-satatarget/internal/backing"
	"github.com/deploymenttheory/go-satatarget/internal/config"
	"github.com/deploymenttheory/go-satatarget/internal/identity"
	"github.com/deploymenttheory/go-satatarget/internal/interfaces"
	"github.com/deploymenttheory/go-satatarget/pkg/target"
)

// PageAllocator returns the page allocator named by cfg.
func PageAllocator(cfg *config.Config) (interfaces.PageAllocator, error) {
	switch cfg.Allocator {
	case config.AllocatorMmap:
		m, err := backing.NewMmapAllocator()
		if err != nil {
			return nil, NewError(ErrCodeDeviceCreate, "mmap allocator unavailable", err)
		}
		return m, nil
	case config.AllocatorHeap, "":
		return backing.NewHeapAllocator(), nil
	}
	return nil, NewError(ErrCodeInvalidInput, "unknown allocator "+cfg.Allocator, nil)
}

// OpenDevice creates a target from cfg. Extra options are applied after
// the ones derived from cfg.
func OpenDevice(cfg *config.Config, owner string, extra ...target.Option) (*target.Target, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sectors, err := cfg.CapacitySectors()
	if err != nil {
		return nil, err
	}
	pages, err := PageAllocator(cfg)
	if err != nil {
		return nil, err
	}

	opts := []target.Option{
		target.WithPageAllocator(pages),
		target.WithMaxOrder(cfg.MaxOrder),
		target.WithReserveBytes(cfg.ReserveBytes()),
		target.WithWriteCache(cfg.WriteCache),
		target.WithIdentity(cfg.Serial, cfg.Firmware, cfg.Model),
	}
	return target.New(owner, sectors, cfg.QueueDepth, cfg.MaxSegments, append(opts, extra...)...)
}

// ReadIdentify maps the device's IDENTIFY data, decodes it and unmaps it.
func ReadIdentify(dev *target.Target) (*identity.Info, error) {
	raw, err := ReadIdentifyRaw(dev)
	if err != nil {
		return nil, err
	}
	return identity.Parse(raw)
}

// ReadIdentifyRaw returns a copy of the device's IDENTIFY block as
// mapped for a host read.
func ReadIdentifyRaw(dev *target.Target) ([]byte, error) {
	tag, _, err := dev.MapIdentity()
	if err != nil {
		return nil, err
	}
	segs, err := dev.TagToScatterList(tag)
	var raw []byte
	if err == nil {
		for _, s := range segs {
			raw = append(raw, s.Bytes()...)
		}
	}
	if uerr := dev.UnmapRequest(tag); err == nil {
		err = uerr
	}
	return raw, err
}
