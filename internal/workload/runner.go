package workload

import (
	"context"
	"errors"
	"fmt"

	"github.com/deploymenttheory/go-satatarget/internal/identity"
	"github.com/deploymenttheory/go-satatarget/internal/interfaces"
	"github.com/deploymenttheory/go-satatarget/internal/logging"
	"github.com/deploymenttheory/go-satatarget/internal/types"
)

// Device is the target surface a script drives.
type Device interface {
	MapRequest(start types.Sector, count uint64, tag types.Tag, dir types.Direction) (int, error)
	UnmapRequest(tag types.Tag) error
	ReadSectors(tag types.Tag, start types.Sector, buf []byte) (int, error)
	WriteSectors(tag types.Tag, start types.Sector, buf []byte) (int, error)
	MapIdentity() (types.Tag, int, error)
	TagToScatterList(tag types.Tag) ([]interfaces.Segment, error)
	SetWriteCache(enabled bool)
	Capacity() uint64
}

// Result records the outcome of one step.
type Result struct {
	Index    int    `json:"index" yaml:"index"`
	Op       Op     `json:"op" yaml:"op"`
	Tag      uint8  `json:"tag" yaml:"tag"`
	Sector   uint64 `json:"sector" yaml:"sector"`
	Count    uint64 `json:"count" yaml:"count"`
	Segments int    `json:"segments,omitempty" yaml:"segments,omitempty"`
	Bytes    int    `json:"bytes,omitempty" yaml:"bytes,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
	// Expected is set when the step failed the way the script said it would.
	Expected bool `json:"expected,omitempty" yaml:"expected,omitempty"`
	// Identify holds the decoded IDENTIFY data of identify steps.
	Identify *identity.Info `json:"identify,omitempty" yaml:"identify,omitempty"`
}

// ErrMismatch is returned when data read back differs from the pattern.
var ErrMismatch = errors.New("data mismatch")

// ErrUnexpected is returned when a step's outcome differs from the
// script's expect_error.
var ErrUnexpected = errors.New("unexpected outcome")

// StatsFunc is called for stats steps.
type StatsFunc func(step int)

// Runner replays scripts against a device.
type Runner struct {
	dev   Device
	stats StatsFunc
}

// NewRunner creates a runner. stats may be nil.
func NewRunner(dev Device, stats StatsFunc) *Runner {
	return &Runner{dev: dev, stats: stats}
}

// Run executes every step in order and stops at the first step whose
// outcome the script did not expect. The results of every executed step
// are returned, including the failing one.
func (r *Runner) Run(ctx context.Context, s *Script) ([]Result, error) {
	results := make([]Result, 0, len(s.Steps))
	for i := range s.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		st := &s.Steps[i]
		res := Result{Index: i, Op: st.Op, Tag: st.Tag, Sector: st.Sector, Count: st.Count}
		err := r.step(st, &res)

		switch {
		case st.expect != 0 && types.KindOf(err) == st.expect:
			res.Error = err.Error()
			res.Expected = true
			err = nil
		case st.expect != 0 && err == nil:
			err = fmt.Errorf("step %d (%s): %w: expected %s, got success", i, st.Op, ErrUnexpected, st.expect)
		case st.expect != 0:
			res.Error = err.Error()
			err = fmt.Errorf("step %d (%s): %w: expected %s: %w", i, st.Op, ErrUnexpected, st.expect, err)
		case err != nil:
			res.Error = err.Error()
			err = fmt.Errorf("step %d (%s): %w", i, st.Op, err)
		}
		results = append(results, res)
		if err != nil {
			logging.Warn(logging.ComponentWorkload, "step failed", "step", i, "op", st.Op, "err", err)
			return results, err
		}
		logging.Debug(logging.ComponentWorkload, "step done", "step", i, "op", st.Op, "expected_error", res.Expected)
	}
	return results, nil
}

func (r *Runner) step(st *Step, res *Result) error {
	tag := types.Tag(st.Tag)
	switch st.Op {
	case OpMap:
		n, err := r.dev.MapRequest(types.Sector(st.Sector), st.Count, tag, st.direction)
		res.Segments = n
		return err

	case OpUnmap:
		return r.dev.UnmapRequest(tag)

	case OpWrite:
		if err := r.checkRange(st); err != nil {
			return err
		}
		buf := make([]byte, st.Count*types.SectorSize)
		Fill(buf, st.Sector, *st.Pattern)
		n, err := r.dev.WriteSectors(tag, types.Sector(st.Sector), buf)
		res.Bytes = n
		return err

	case OpRead:
		if err := r.checkRange(st); err != nil {
			return err
		}
		buf := make([]byte, st.Count*types.SectorSize)
		n, err := r.dev.ReadSectors(tag, types.Sector(st.Sector), buf)
		res.Bytes = n
		if err != nil || st.Pattern == nil {
			return err
		}
		want := make([]byte, len(buf))
		Fill(want, st.Sector, *st.Pattern)
		for i := range buf {
			if buf[i] != want[i] {
				return fmt.Errorf("%w at sector %d byte %d: got %#02x, want %#02x",
					ErrMismatch, st.Sector+uint64(i/types.SectorSize), i%types.SectorSize, buf[i], want[i])
			}
		}
		return nil

	case OpIdentify:
		idTag, n, err := r.dev.MapIdentity()
		if err != nil {
			return err
		}
		res.Tag, res.Segments = uint8(idTag), n
		segs, err := r.dev.TagToScatterList(idTag)
		if err == nil && len(segs) == 1 {
			res.Identify, err = identity.Parse(segs[0].Bytes())
		}
		return errors.Join(err, r.dev.UnmapRequest(idTag))

	case OpWriteCache:
		r.dev.SetWriteCache(*st.Enabled)
		return nil

	case OpStats:
		if r.stats != nil {
			r.stats(res.Index)
		}
		return nil
	}
	return fmt.Errorf("unknown op %q", st.Op)
}

// checkRange rejects transfers past the end of the device before a host
// buffer is allocated for them.
func (r *Runner) checkRange(st *Step) error {
	capacity := r.dev.Capacity()
	if st.Sector > capacity || st.Count > capacity-st.Sector {
		return types.Errorf(types.KindOutOfRange, "workload."+string(st.Op),
			"sectors [%d, +%d) beyond capacity %d", st.Sector, st.Count, capacity)
	}
	return nil
}
