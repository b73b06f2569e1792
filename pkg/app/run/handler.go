package run

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/deploymenttheory/go-satatarget/internal/workload"
	"github.com/deploymenttheory/go-satatarget/pkg/app"
)

// Validate validates a run request
func (r *Request) Validate() error {
	if r.Config == nil {
		return app.NewError(app.ErrCodeInvalidInput, "device configuration is required", nil)
	}
	if r.ScriptPath == "" {
		return app.NewError(app.ErrCodeInvalidInput, "script path is required", nil)
	}
	if r.Timeout < 0 {
		return app.NewError(app.ErrCodeInvalidInput, "timeout must not be negative", nil)
	}
	if err := r.Config.Validate(); err != nil {
		return app.NewError(app.ErrCodeInvalidInput, "invalid device configuration", err)
	}
	return nil
}

// Handle loads the script, creates the configured device and replays the
// script against it.
func Handle(ctx *app.Context, req *Request) (resp *Response, err error) {
	startTime := time.Now()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	script, err := workload.Load(req.ScriptPath)
	if err != nil {
		return nil, app.NewError(app.ErrCodeInvalidInput, "load script", err)
	}
	name := script.Name
	if name == "" {
		name = filepath.Base(req.ScriptPath)
	}
	ctx.Log(fmt.Sprintf("Replaying %s: %d steps", name, len(script.Steps)))

	dev, err := app.OpenDevice(req.Config, name)
	if err != nil {
		return nil, app.NewError(app.ErrCodeDeviceCreate, "create device", err)
	}
	defer func() {
		if derr := dev.Destroy(); derr != nil {
			err = errors.Join(err, app.NewError(app.ErrCodeDeviceCommand, "destroy device", derr))
		}
	}()

	resp = &Response{Script: name}
	runner := workload.NewRunner(dev, func(step int) {
		resp.Snapshots = append(resp.Snapshots, Snapshot{Step: step, Stats: dev.Stats()})
	})

	runCtx, cancel := ctx.WithTimeout(req.Timeout)
	defer cancel()

	total := len(script.Steps)
	results, runErr := runner.Run(runCtx, script)
	ctx.Progress("Replay finished", 100*len(results)/total)

	resp.Results = results
	resp.Final = dev.Stats()
	resp.Elapsed = time.Since(startTime)

	if runErr != nil {
		if ctxErr := runCtx.Err(); ctxErr != nil && errors.Is(runErr, ctxErr) {
			return nil, app.NewError(app.ErrCodeTimeout, "replay interrupted", runErr)
		}
		if !req.KeepGoing {
			return nil, app.NewError(app.ErrCodeWorkload, name, runErr)
		}
		resp.Failed = runErr.Error()
	}
	return resp, nil
}
