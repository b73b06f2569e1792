package info

import (
	"errors"
	"fmt"
	"time"

	"github.com/deploymenttheory/go-satatarget/pkg/app"
)

// Handle creates the configured device, reads its IDENTIFY data and
// reports the layout it was built with. The device is destroyed before
// returning.
func Handle(ctx *app.Context, req *Request) (resp *Response, err error) {
	startTime := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx.Log(fmt.Sprintf("Creating %s device (allocator %s)", req.Config.Capacity, req.Config.Allocator))
	ctx.Progress("Allocating backing store...", 10)

	dev, err := app.OpenDevice(req.Config, req.Owner)
	if err != nil {
		return nil, app.NewError(app.ErrCodeDeviceCreate, "create device", err)
	}
	defer func() {
		if derr := dev.Destroy(); derr != nil {
			err = errors.Join(err, app.NewError(app.ErrCodeDeviceCommand, "destroy device", derr))
		}
	}()

	ctx.Progress("Reading identify data...", 60)
	info, err := app.ReadIdentify(dev)
	if err != nil {
		return nil, app.NewError(app.ErrCodeDeviceCommand, "identify", err)
	}

	resp = &Response{
		Device:   dev.Stats(),
		Identify: info,
		Elapsed:  time.Since(startTime),
	}
	ctx.Progress("Complete", 100)
	ctx.Log(fmt.Sprintf("Device %s: %d extents, tree height %d", resp.Device.ID, resp.Device.Extents, resp.Device.TreeHeight))
	return resp, nil
}
