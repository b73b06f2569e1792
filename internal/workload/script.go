// Package workload parses and replays command scripts against a target.
//
// Scripts are JSON with comments and trailing commas allowed:
//
//	{
//	  // fill the first 64 sectors, then read them back through tag 3
//	  "steps": [
//	    {"op": "write", "tag": 0, "sector": 0, "count": 64, "pattern": 165},
//	    {"op": "read", "tag": 3, "sector": 0, "count": 64, "pattern": 165},
//	    {"op": "map", "tag": 1, "sector": 1020, "count": 8, "dir": "read", "expect_error": "out_of_range"},
//	  ],
//	}
package workload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/deploymenttheory/go-satatarget/internal/types"
)

// Op is a script step operation.
type Op string

// Step operations.
const (
	OpMap        Op = "map"
	OpUnmap      Op = "unmap"
	OpRead       Op = "read"
	OpWrite      Op = "write"
	OpIdentify   Op = "identify"
	OpWriteCache Op = "write_cache"
	OpStats      Op = "stats"
)

// MaxTransferSectors is the largest read or write a step may request,
// bounded by the size of a host buffer.
const MaxTransferSectors = math.MaxInt / types.SectorSize

// Step is one command in a script.
type Step struct {
	Op     Op     `json:"op"`
	Tag    uint8  `json:"tag"`
	Sector uint64 `json:"sector"`
	Count  uint64 `json:"count"`
	// Dir is "read" or "write" for map steps.
	Dir string `json:"dir,omitempty"`
	// Pattern seeds the data written, and checked on read.
	Pattern *uint8 `json:"pattern,omitempty"`
	// Enabled is the write cache state for write_cache steps.
	Enabled *bool `json:"enabled,omitempty"`
	// ExpectError names the error kind the step must fail with.
	ExpectError string `json:"expect_error,omitempty"`

	direction types.Direction
	expect    types.ErrorKind
}

// Script is a parsed workload.
type Script struct {
	Name  string `json:"name,omitempty"`
	Steps []Step `json:"steps"`
}

// kindNames maps expect_error values to error kinds.
var kindNames = map[string]types.ErrorKind{
	"configuration":       types.KindConfiguration,
	"resource_exhaustion": types.KindResourceExhaustion,
	"sizing":              types.KindSizing,
	"protocol_violation":  types.KindProtocolViolation,
	"backend_exhaustion":  types.KindBackendExhaustion,
	"out_of_range":        types.KindOutOfRange,
}

// Parse decodes and validates a script.
func Parse(data []byte) (*Script, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(std))
	dec.DisallowUnknownFields()
	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("script has no steps")
	}
	for i := range s.Steps {
		if err := s.Steps[i].validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}
	return &s, nil
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (st *Step) validate() error {
	switch st.Op {
	case OpMap:
		d, ok := types.ParseDirection(strings.ToLower(st.Dir))
		if !ok {
			return fmt.Errorf("map needs dir read or write, got %q", st.Dir)
		}
		st.direction = d
	case OpRead:
		if st.Count > MaxTransferSectors {
			return fmt.Errorf("read of %d sectors exceeds %d", st.Count, MaxTransferSectors)
		}
		st.direction = types.DirectionRead
	case OpWrite:
		if st.Pattern == nil {
			return fmt.Errorf("write needs a pattern")
		}
		if st.Count > MaxTransferSectors {
			return fmt.Errorf("write of %d sectors exceeds %d", st.Count, MaxTransferSectors)
		}
		st.direction = types.DirectionWrite
	case OpWriteCache:
		if st.Enabled == nil {
			return fmt.Errorf("write_cache needs enabled")
		}
	case OpUnmap, OpIdentify, OpStats:
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}

	if st.ExpectError != "" {
		k, ok := kindNames[strings.ToLower(st.ExpectError)]
		if !ok {
			return fmt.Errorf("unknown error kind %q", st.ExpectError)
		}
		st.expect = k
	}
	return nil
}

// Fill writes the data pattern into buf, which starts at sector. Each sector's bytes are mixed with its number so misplaced
// sectors are detected on read.
func Fill(buf []byte, sector uint64, pattern uint8) {
	for i := range buf {
		s := sector + uint64(i/types.SectorSize)
		buf[i] = pattern ^ byte(s) ^ byte(i)
	}
}
