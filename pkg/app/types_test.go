package app

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-satatarget/internal/config"
	"github.com/deploymenttheory/go-satatarget/internal/types"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), 1},
		{"configuration", types.Errorf(types.KindConfiguration, "op", "bad"), 2},
		{"resources", types.Errorf(types.KindResourceExhaustion, "op", "oom"), 3},
		{"backend", types.Errorf(types.KindBackendExhaustion, "op", "busy"), 4},
		{"wrapped protocol", NewError(ErrCodeWorkload, "run", fmt.Errorf("step 1: %w",
			types.Errorf(types.KindProtocolViolation, "op", "not mapped"))), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestCommonError(t *testing.T) {
	cause := errors.New("cause")
	err := NewError(ErrCodeOutput, "write", cause)
	assert.Equal(t, "write: cause", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "write", NewError(ErrCodeOutput, "write", nil).Error())
}

func TestContextLogging(t *testing.T) {
	var buf bytes.Buffer
	ctx := NewContext()
	ctx.ErrOut = &buf

	ctx.Log("hidden")
	ctx.Verbose = true
	ctx.Log("shown")
	ctx.Error("bad")
	ctx.Quiet = true
	ctx.Error("silenced")
	assert.Equal(t, "shown\nError: bad\n", buf.String())
}

func TestContextWithTimeout(t *testing.T) {
	ctx := NewContext()
	ctx.DefaultTimeout = time.Hour
	sub, cancel := ctx.WithTimeout(0)
	defer cancel()
	deadline, ok := sub.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Hour), deadline, time.Minute)
}

func TestRenderAndFormatBytes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, map[string]int{"a": 1}, nil))
	assert.JSONEq(t, `{"a": 1}`, buf.String())

	buf.Reset()
	require.NoError(t, Render(&buf, FormatYAML, map[string]int{"a": 1}, nil))
	assert.Equal(t, "a: 1\n", buf.String())

	assert.Error(t, Render(&buf, "xml", nil, nil))
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "64.0 MiB", FormatBytes(64<<20))
}

func TestOpenDevice(t *testing.T) {
	cfg := &config.Config{
		Capacity:    "128KB",
		QueueDepth:  2,
		MaxSegments: 4,
		MaxOrder:    3,
		Allocator:   config.AllocatorHeap,
		WriteCache:  true,
	}
	dev, err := OpenDevice(cfg, "test")
	require.NoError(t, err)
	defer dev.Destroy()

	st := dev.Stats()
	assert.Equal(t, uint64(256), st.Sectors)
	// 32 pages in order-3 chunks.
	assert.Equal(t, 4, st.Extents)

	info, err := ReadIdentify(dev)
	require.NoError(t, err)
	assert.Equal(t, uint64(256), info.Sectors48)

	cfg.Allocator = "slab"
	_, err = OpenDevice(cfg, "test")
	assert.ErrorIs(t, err, types.ErrConfiguration)
}
