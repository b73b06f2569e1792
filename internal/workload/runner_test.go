package workload

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-satatarget/internal/backing"
	"github.com/deploymenttheory/go-satatarget/internal/types"
	"github.com/deploymenttheory/go-satatarget/pkg/target"
)

func newDevice(t *testing.T) *target.Target {
	t.Helper()
	dev, err := target.New("workload", 1024, 4, 8,
		target.WithMemoryInventory(backing.FixedInventory(8<<30)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = dev.Destroy() })
	return dev
}

func mustParse(t *testing.T, script string) *Script {
	t.Helper()
	s, err := Parse([]byte(script))
	require.NoError(t, err)
	return s
}

func TestRunWriteReadBack(t *testing.T) {
	dev := newDevice(t)
	var statsAt []int
	r := NewRunner(dev, func(step int) { statsAt = append(statsAt, step) })

	results, err := r.Run(context.Background(), mustParse(t, `{"steps": [
		{"op": "write", "tag": 0, "sector": 250, "count": 100, "pattern": 7},
		{"op": "read", "tag": 3, "sector": 250, "count": 100, "pattern": 7},
		{"op": "stats"},
	]}`))
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 100*types.SectorSize, results[0].Bytes)
	assert.Equal(t, 100*types.SectorSize, results[1].Bytes)
	assert.Equal(t, []int{2}, statsAt)
}

func TestRunDetectsMismatch(t *testing.T) {
	dev := newDevice(t)
	results, err := NewRunner(dev, nil).Run(context.Background(), mustParse(t, `{"steps": [
		{"op": "write", "sector": 0, "count": 8, "pattern": 1},
		{"op": "read", "sector": 0, "count": 8, "pattern": 2},
	]}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMismatch)
	require.Len(t, results, 2)
	assert.NotEmpty(t, results[1].Error)
}

func TestRunExpectedErrors(t *testing.T) {
	dev := newDevice(t)
	results, err := NewRunner(dev, nil).Run(context.Background(), mustParse(t, `{"steps": [
		{"op": "map", "tag": 1, "sector": 1020, "count": 8, "dir": "read", "expect_error": "out_of_range"},
		{"op": "unmap", "tag": 1, "expect_error": "protocol_violation"},
		{"op": "map", "tag": 1, "sector": 0, "count": 16, "dir": "write"},
		{"op": "unmap", "tag": 1},
	]}`))
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.True(t, results[0].Expected)
	assert.True(t, results[1].Expected)
	assert.Equal(t, 2, results[2].Segments)
	assert.False(t, results[3].Expected)
}

func TestRunUnexpectedSuccess(t *testing.T) {
	dev := newDevice(t)
	results, err := NewRunner(dev, nil).Run(context.Background(), mustParse(t, `{"steps": [
		{"op": "map", "tag": 0, "sector": 0, "count": 8, "dir": "read", "expect_error": "out_of_range"},
		{"op": "unmap", "tag": 0},
	]}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpected)
	assert.Len(t, results, 1)
}

func TestRunIdentify(t *testing.T) {
	dev := newDevice(t)
	results, err := NewRunner(dev, nil).Run(context.Background(), mustParse(t, `{"steps": [
		{"op": "identify"},
		{"op": "write_cache", "enabled": false},
		{"op": "identify"},
	]}`))
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.NotNil(t, results[0].Identify)
	require.NotNil(t, results[2].Identify)
	assert.Equal(t, uint64(1024), results[0].Identify.Sectors48)
	assert.True(t, results[0].Identify.WriteCacheEnabled)
	assert.False(t, results[2].Identify.WriteCacheEnabled)

	dir, err := dev.Direction(0)
	require.NoError(t, err)
	assert.Equal(t, types.DirectionUnmapped, dir)
}

func TestRunStopsOnCancel(t *testing.T) {
	dev := newDevice(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := NewRunner(dev, nil).Run(ctx, mustParse(t, `{"steps": [{"op": "stats"}]}`))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestRunRejectsTransfersPastCapacity(t *testing.T) {
	dev := newDevice(t)
	tests := []struct {
		name string
		step string
	}{
		{"read larger than memory", `{"op": "read", "sector": 0, "count": 1125899906842624}`},
		{"write larger than memory", `{"op": "write", "sector": 0, "count": 1099511627776, "pattern": 1}`},
		{"read past end", `{"op": "read", "sector": 1020, "count": 8}`},
		{"write starts past end", `{"op": "write", "sector": 4096, "count": 1, "pattern": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := NewRunner(dev, nil).Run(context.Background(), mustParse(t, `{"steps": [`+tt.step+`]}`))
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrOutOfRange)
			require.Len(t, results, 1)
			assert.Zero(t, results[0].Bytes)
		})
	}
}
