package workload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-satatarget/internal/types"
)

func TestParseAcceptsCommentsAndTrailingCommas(t *testing.T) {
	s, err := Parse([]byte(`{
		// smoke test
		"name": "smoke",
		"steps": [
			{"op": "write", "tag": 0, "sector": 8, "count": 16, "pattern": 90},
			{"op": "map", "tag": 2, "sector": 0, "count": 8, "dir": "WRITE"},
			{"op": "unmap", "tag": 2},
			{"op": "map", "tag": 1, "sector": 1020, "count": 8, "dir": "r", "expect_error": "out_of_range"},
		],
	}`))
	require.NoError(t, err)
	assert.Equal(t, "smoke", s.Name)
	require.Len(t, s.Steps, 4)
	assert.Equal(t, types.DirectionWrite, s.Steps[0].direction)
	assert.Equal(t, types.DirectionWrite, s.Steps[1].direction)
	assert.Equal(t, types.DirectionRead, s.Steps[3].direction)
	assert.Equal(t, types.KindOutOfRange, s.Steps[3].expect)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		errMsg string
	}{
		{"syntax", `{"steps": [}`, "parse script"},
		{"unknown field", `{"steps": [{"op": "unmap", "bogus": 1}]}`, "decode script"},
		{"no steps", `{"steps": []}`, "no steps"},
		{"unknown op", `{"steps": [{"op": "trim"}]}`, "unknown op"},
		{"map without dir", `{"steps": [{"op": "map", "count": 1}]}`, "needs dir"},
		{"write without pattern", `{"steps": [{"op": "write", "count": 1}]}`, "needs a pattern"},
		{"write_cache without state", `{"steps": [{"op": "write_cache"}]}`, "needs enabled"},
		{"read byte count wraps", `{"steps": [{"op": "read", "count": 36028797018963968}]}`, "exceeds"},
		{"write too large", `{"steps": [{"op": "write", "count": 18014398509481984, "pattern": 1}]}`, "exceeds"},
		{"unknown kind", `{"steps": [{"op": "unmap", "expect_error": "oops"}]}`, "unknown error kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.script))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.hujson")
	require.NoError(t, os.WriteFile(path, []byte(`{"steps": [{"op": "stats"}]}`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, s.Steps, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.hujson"))
	assert.Error(t, err)
}

func TestFillMixesSectorNumber(t *testing.T) {
	a := make([]byte, 2*types.SectorSize)
	Fill(a, 0, 0x5a)
	b := make([]byte, types.SectorSize)
	Fill(b, 1, 0x5a)
	assert.Equal(t, a[types.SectorSize:], b)
	assert.NotEqual(t, a[:types.SectorSize], b)
}
