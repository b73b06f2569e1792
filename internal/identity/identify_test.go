package identity

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-satatarget/internal/types"
)

func wordAt(buf []byte, w int) uint16 {
	return binary.LittleEndian.Uint16(buf[w*2:])
}

func TestGeometryFor(t *testing.T) {
	tests := []struct {
		name    string
		sectors uint64
		want    uint16
	}{
		{"smaller than a cylinder", 1024, 0},
		{"one cylinder", 255 * 63, 1},
		{"64MiB", 131072, 8},
		{"clamped", 1 << 40, MaxCylinders},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := GeometryFor(tt.sectors)
			assert.Equal(t, tt.want, g.Cylinders)
			assert.EqualValues(t, 255, g.Heads)
			assert.EqualValues(t, 63, g.SectorsPerTrack)
		})
	}
}

func TestBuildLayout(t *testing.T) {
	p := Params{Sectors: 131072, QueueDepth: 32, WriteCache: true}
	buf, err := Build(p)
	require.NoError(t, err)
	require.Len(t, buf, types.IdentityLength)

	assert.EqualValues(t, 8, wordAt(buf, 1))
	assert.EqualValues(t, 255, wordAt(buf, 3))
	assert.EqualValues(t, 63, wordAt(buf, 6))
	assert.EqualValues(t, 0x0300, wordAt(buf, 49))
	assert.EqualValues(t, 1<<14, wordAt(buf, 50))
	assert.EqualValues(t, 131072&0xffff, wordAt(buf, 60))
	assert.EqualValues(t, 131072>>16, wordAt(buf, 61))
	assert.EqualValues(t, 31, wordAt(buf, 75))
	assert.EqualValues(t, 0x0106, wordAt(buf, 76))
	assert.EqualValues(t, 0xf0, wordAt(buf, 80))
	assert.EqualValues(t, 1<<5, wordAt(buf, 82))
	assert.EqualValues(t, 0x7400, wordAt(buf, 83))
	assert.EqualValues(t, 0x4040, wordAt(buf, 84))
	assert.EqualValues(t, 1<<5, wordAt(buf, 85))
	assert.EqualValues(t, 0x3400, wordAt(buf, 86))
	assert.EqualValues(t, 0x2020, wordAt(buf, 88))
	assert.EqualValues(t, 131072&0xffff, wordAt(buf, 100))
	assert.EqualValues(t, 131072>>16, wordAt(buf, 101))

	// "LI" stored with the first character in the high byte.
	assert.Equal(t, byte('I'), buf[20])
	assert.Equal(t, byte('L'), buf[21])
}

func TestBuildIsDeterministic(t *testing.T) {
	p := Params{Sectors: 1 << 30, QueueDepth: 4, WWN: 0x5000c50012345678}
	a, err := Build(p)
	require.NoError(t, err)
	b, err := Build(p)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestWriteCacheBitMirrorsParams(t *testing.T) {
	on, err := Build(Params{Sectors: 2048, QueueDepth: 1, WriteCache: true})
	require.NoError(t, err)
	off, err := Build(Params{Sectors: 2048, QueueDepth: 1, WriteCache: false})
	require.NoError(t, err)

	assert.EqualValues(t, 1<<5, wordAt(on, 85))
	assert.Zero(t, wordAt(off, 85))
	assert.Equal(t, wordAt(on, 82), wordAt(off, 82), "support bit does not change")
}

func TestParseRoundTrip(t *testing.T) {
	p := Params{
		Sectors:    0x1_2345_6789,
		QueueDepth: 16,
		WriteCache: true,
		Serial:     "SN-0001",
		Firmware:   "2.10",
		Model:      "TEST MODEL",
		WWN:        0x5000c50012345678,
	}
	buf, err := Build(p)
	require.NoError(t, err)

	info, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, "SN-0001", info.Serial)
	assert.Equal(t, "2.10", info.Firmware)
	assert.Equal(t, "TEST MODEL", info.Model)
	assert.Equal(t, p.Sectors, info.Sectors48)
	assert.EqualValues(t, 0x0FFFFFFF, info.Sectors28, "28-bit capacity is clamped")
	assert.Equal(t, 16, info.QueueDepth)
	assert.Equal(t, p.WWN, info.WWN)
	assert.Equal(t, 5, info.UDMASelected)
	assert.True(t, info.LBA)
	assert.True(t, info.DMA)
	assert.True(t, info.NCQ)
	assert.True(t, info.LBA48)
	assert.True(t, info.FUA)
	assert.True(t, info.FlushCache)
	assert.True(t, info.WriteCacheSupported)
	assert.True(t, info.WriteCacheEnabled)
	assert.True(t, info.ChecksumValid)
	assert.EqualValues(t, MaxCylinders, info.Geometry.Cylinders)
}

func TestDefaultsAndTruncation(t *testing.T) {
	buf, err := Build(Params{Sectors: 8, QueueDepth: 1, Serial: "012345678901234567890123"})
	require.NoError(t, err)
	info, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, "01234567890123456789", info.Serial)
	assert.Equal(t, DefaultFirmware, info.Firmware)
	assert.Equal(t, DefaultModel, info.Model)
	assert.Zero(t, info.WWN)
}

func TestChecksumDetectsCorruption(t *testing.T) {
	buf, err := Build(Params{Sectors: 4096, QueueDepth: 8})
	require.NoError(t, err)
	buf[200] ^= 0xff
	info, err := Parse(buf)
	require.NoError(t, err)
	assert.False(t, info.ChecksumValid)
}

func TestFillValidation(t *testing.T) {
	assert.Error(t, Fill(make([]byte, 100), Params{QueueDepth: 1}))
	assert.Error(t, Fill(make([]byte, types.IdentityLength), Params{QueueDepth: 0}))
	assert.Error(t, Fill(make([]byte, types.IdentityLength), Params{QueueDepth: 33}))
	_, err := Parse(make([]byte, 10))
	assert.Error(t, err)
}
