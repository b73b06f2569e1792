package info

import (
	"time"

	"github.com/deploymenttheory/go-satatarget/internal/config"
	"github.com/deploymenttheory/go-satatarget/internal/identity"
	"github.com/deploymenttheory/go-satatarget/pkg/target"
)

// Request describes the device to create and report on
type Request struct {
	Config *config.Config
	Owner  string
}

// Response is the device report
type Response struct {
	Device   target.Stats   `json:"device" yaml:"device"`
	Identify *identity.Info `json:"identify" yaml:"identify"`
	Elapsed  time.Duration  `json:"elapsed_ns" yaml:"elapsed_ns"`
}
