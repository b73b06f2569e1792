package identify

import (
	"github.com/deploymenttheory/go-satatarget/internal/config"
	"github.com/deploymenttheory/go-satatarget/internal/identity"
)

// Request describes the device whose IDENTIFY data is dumped
type Request struct {
	Config *config.Config
	// OutPath receives the raw 512-byte block when set
	OutPath string
}

// Response holds the IDENTIFY block and its decoding
type Response struct {
	Info *identity.Info `json:"info" yaml:"info"`
	Path string         `json:"path,omitempty" yaml:"path,omitempty"`
	Raw  []byte         `json:"-" yaml:"-"`
}
