package extents

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-satatarget/internal/types"
)

func makeExtent(start, sectors uint64) Extent {
	return Extent{
		Start:   types.Sector(start),
		Sectors: sectors,
		Buffer:  make([]byte, sectors*types.SectorSize),
	}
}

// buildIndex inserts extents of the given sizes back to back, in the
// order given by perm (or ascending when perm is nil).
func buildIndex(t *testing.T, sizes []uint64, perm []int) *Index {
	t.Helper()
	exts := make([]Extent, len(sizes))
	var start uint64
	for i, n := range sizes {
		exts[i] = makeExtent(start, n)
		start += n
	}
	if perm == nil {
		perm = make([]int, len(sizes))
		for i := range perm {
			perm[i] = i
		}
	}
	x := NewIndex(len(sizes))
	for _, i := range perm {
		_, err := x.Insert(exts[i])
		require.NoError(t, err)
	}
	return x
}

func TestFindEveryBoundary(t *testing.T) {
	sizes := []uint64{256, 256, 128, 64, 8, 8, 5}
	x := buildIndex(t, sizes, nil)

	var start uint64
	for _, n := range sizes {
		for _, s := range []uint64{start, start + n/2, start + n - 1} {
			h, err := x.Find(types.Sector(s))
			require.NoError(t, err)
			e := x.Get(h)
			require.NotNil(t, e)
			assert.True(t, e.Contains(types.Sector(s)), "sector %d", s)
			assert.Equal(t, types.Sector(start), e.Start)
		}
		start += n
	}

	_, err := x.Find(types.Sector(start))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrOutOfRange))
}

func TestFindIsIdempotentAndCounted(t *testing.T) {
	x := buildIndex(t, []uint64{32, 32, 32}, nil)
	before := x.Lookups()

	h1, err := x.Find(40)
	require.NoError(t, err)
	h2, err := x.Find(40)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Equal(t, before+2, x.Lookups())
}

func TestInsertRejectsOverlap(t *testing.T) {
	x := NewIndex(4)
	_, err := x.Insert(makeExtent(100, 50))
	require.NoError(t, err)

	tests := []struct {
		name  string
		start uint64
		count uint64
	}{
		{"same range", 100, 50},
		{"covers start", 90, 20},
		{"covers end", 140, 20},
		{"inside", 110, 5},
		{"encloses", 0, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := x.Insert(makeExtent(tt.start, tt.count))
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrProtocolViolation))
			assert.Equal(t, 1, x.Len(), "failed insert must leave the index unchanged")
		})
	}

	_, err = x.Insert(makeExtent(50, 50))
	assert.NoError(t, err, "adjacent below")
	_, err = x.Insert(makeExtent(150, 50))
	assert.NoError(t, err, "adjacent above")
	covered, err := x.Covered()
	require.Error(t, err, "[0, 50) is still a gap")
	assert.Zero(t, covered)
}

func TestInsertRejectsMalformedExtents(t *testing.T) {
	x := NewIndex(1)

	_, err := x.Insert(Extent{Start: 0, Sectors: 0, Buffer: []byte{}})
	assert.True(t, errors.Is(err, types.ErrProtocolViolation))

	_, err = x.Insert(Extent{Start: 0, Sectors: 8, Buffer: make([]byte, types.SectorSize)})
	assert.True(t, errors.Is(err, types.ErrProtocolViolation))
	assert.Zero(t, x.Len())
}

func TestTreeStaysBalanced(t *testing.T) {
	const n = 1024
	sizes := make([]uint64, n)
	for i := range sizes {
		sizes[i] = 8
	}

	ascending := buildIndex(t, sizes, nil)
	// An AVL tree of n nodes has height below 1.45*log2(n+2).
	assert.LessOrEqual(t, ascending.Height(), 15)

	perm := rand.New(rand.NewSource(1)).Perm(n)
	shuffled := buildIndex(t, sizes, perm)
	assert.LessOrEqual(t, shuffled.Height(), 15)

	covered, err := shuffled.Covered()
	require.NoError(t, err)
	assert.EqualValues(t, n*8, covered)

	var prev types.Sector
	first := true
	shuffled.Ascend(func(_ Handle, e *Extent) bool {
		if !first {
			assert.Greater(t, e.Start, prev)
		}
		prev, first = e.Start, false
		return true
	})
}

func TestReleaseFreesEachExtentOnce(t *testing.T) {
	x := buildIndex(t, []uint64{8, 16, 32, 64}, []int{2, 0, 3, 1})

	seen := make(map[types.Sector]int)
	require.NoError(t, x.Release(func(e *Extent) error {
		seen[e.Start]++
		return nil
	}))
	assert.Equal(t, map[types.Sector]int{0: 1, 8: 1, 24: 1, 56: 1}, seen)
	assert.Zero(t, x.Len())

	_, err := x.Find(0)
	assert.True(t, errors.Is(err, types.ErrOutOfRange))
}

func TestReleaseJoinsErrors(t *testing.T) {
	x := buildIndex(t, []uint64{8, 8}, nil)
	boom := errors.New("boom")
	err := x.Release(func(*Extent) error { return boom })
	assert.True(t, errors.Is(err, boom))
}
