package info

import (
	"github.com/deploymenttheory/go-satatarget/pkg/app"
)

// Validate validates an info request
func (r *Request) Validate() error {
	if r.Config == nil {
		return app.NewError(app.ErrCodeInvalidInput, "device configuration is required", nil)
	}
	if err := r.Config.Validate(); err != nil {
		return app.NewError(app.ErrCodeInvalidInput, "invalid device configuration", err)
	}
	if r.Owner == "" {
		r.Owner = "info"
	}
	return nil
}
