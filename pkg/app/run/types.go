package run

import (
	"time"

	"github.com/deploymenttheory/go-satatarget/internal/config"
	"github.com/deploymenttheory/go-satatarget/internal/workload"
	"github.com/deploymenttheory/go-satatarget/pkg/target"
)

// Request describes a script replay
type Request struct {
	Config     *config.Config
	ScriptPath string
	// Timeout bounds the whole replay; zero uses the context default
	Timeout time.Duration
	// KeepGoing reports a failed step in the response instead of
	// returning an error
	KeepGoing bool
}

// Response holds the replay results
type Response struct {
	Script    string            `json:"script" yaml:"script"`
	Results   []workload.Result `json:"results" yaml:"results"`
	Snapshots []Snapshot        `json:"snapshots,omitempty" yaml:"snapshots,omitempty"`
	Final     target.Stats      `json:"final" yaml:"final"`
	Failed    string            `json:"failed,omitempty" yaml:"failed,omitempty"`
	Elapsed   time.Duration     `json:"elapsed_ns" yaml:"elapsed_ns"`
}

// Snapshot is the device state captured by a stats step
type Snapshot struct {
	Step  int          `json:"step" yaml:"step"`
	Stats target.Stats `json:"stats" yaml:"stats"`
}
