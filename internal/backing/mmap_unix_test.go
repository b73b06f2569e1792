//go:build linux || darwin

package backing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-satatarget/internal/types"
)

func TestMmapAllocatorRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mmap test in short mode")
	}
	m, err := NewMmapAllocator()
	require.NoError(t, err)

	region, err := m.AllocPages(3)
	require.NoError(t, err)
	require.Len(t, region, types.OrderBytes(3))

	for i := range region {
		require.Zero(t, region[i], "anonymous mapping must be zeroed")
	}
	region[0], region[len(region)-1] = 0xAA, 0x55
	assert.Equal(t, byte(0xAA), region[0])

	require.NoError(t, m.FreePages(region, 3))
	assert.Error(t, m.FreePages(make([]byte, types.PageSize), 3))
}

func TestSystemInventory(t *testing.T) {
	total, err := SystemInventory{}.TotalBytes()
	require.NoError(t, err)
	assert.Greater(t, total, uint64(types.PageSize))
}
