package identify

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/natefinch/atomic"

	"github.com/deploymenttheory/go-satatarget/internal/identity"
	"github.com/deploymenttheory/go-satatarget/pkg/app"
)

// Validate validates an identify request
func (r *Request) Validate() error {
	if r.Config == nil {
		return app.NewError(app.ErrCodeInvalidInput, "device configuration is required", nil)
	}
	if err := r.Config.Validate(); err != nil {
		return app.NewError(app.ErrCodeInvalidInput, "invalid device configuration", err)
	}
	return nil
}

// Handle builds the configured device's IDENTIFY block. When OutPath is
// set the block is written there atomically.
func Handle(ctx *app.Context, req *Request) (resp *Response, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	dev, err := app.OpenDevice(req.Config, "identify")
	if err != nil {
		return nil, app.NewError(app.ErrCodeDeviceCreate, "create device", err)
	}
	defer func() {
		if derr := dev.Destroy(); derr != nil {
			err = errors.Join(err, app.NewError(app.ErrCodeDeviceCommand, "destroy device", derr))
		}
	}()

	raw, err := app.ReadIdentifyRaw(dev)
	if err != nil {
		return nil, app.NewError(app.ErrCodeDeviceCommand, "identify", err)
	}
	info, err := identity.Parse(raw)
	if err != nil {
		return nil, app.NewError(app.ErrCodeDeviceCommand, "decode identify", err)
	}

	resp = &Response{Info: info, Raw: raw}
	if req.OutPath != "" {
		if err := atomic.WriteFile(req.OutPath, bytes.NewReader(raw)); err != nil {
			return nil, app.NewError(app.ErrCodeOutput, "write identify data", err)
		}
		resp.Path = req.OutPath
		ctx.Log(fmt.Sprintf("Wrote %d bytes of identify data to %s", len(raw), req.OutPath))
	}
	return resp, nil
}
