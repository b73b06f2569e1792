// Package identity synthesizes the IDENTIFY DEVICE data block that
// describes the emulated disk's geometry and capabilities.
package identity

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-satatarget/internal/types"
)

// Default identification strings.
const (
	DefaultSerial   = "LINUXSATATARGET"
	DefaultFirmware = "1.00"
	DefaultModel    = "LINUX TARGET DISK"
)

// CHS convention used to derive the legacy geometry.
const (
	Heads           = 255
	SectorsPerTrack = 63
	MaxCylinders    = 16383
)

// Word offsets within the IDENTIFY block (ATA8-ACS numbering).
const (
	wordCylinders     = 1
	wordHeads         = 3
	wordSPT           = 6
	wordSerial        = 10
	wordFirmware      = 23
	wordModel         = 27
	wordCapabilities  = 49
	wordCapabilities2 = 50
	wordValidity      = 53
	wordLBA28         = 60
	wordQueueDepth    = 75
	wordSATACaps      = 76
	wordMajorVersion  = 80
	wordMinorVersion  = 81
	wordCmdSet1       = 82
	wordCmdSet2       = 83
	wordCmdSetExt     = 84
	wordCmdEnabled1   = 85
	wordCmdEnabled2   = 86
	wordCmdDefault    = 87
	wordUDMA          = 88
	wordLBA48         = 100
	wordWWN           = 108
	wordIntegrity     = 255
)

// Field widths in bytes.
const (
	serialLen   = 20
	firmwareLen = 8
	modelLen    = 40
)

// Capability bits.
const (
	capLBA            = 1 << 9
	capDMA            = 1 << 8
	capValid          = 1 << 14
	validWord88       = 1 << 2
	sata15Gbps        = 1 << 1
	sata30Gbps        = 1 << 2
	sataNCQ           = 1 << 8
	cmdWriteCache     = 1 << 5
	cmdFlushCacheExt  = 1 << 13
	cmdFlushCache     = 1 << 12
	cmdLBA48          = 1 << 10
	cmdFUA            = 1 << 6
	cmdWWN            = 1 << 8
	udma5Selected     = 1 << 13
	udma0to5Supported = 1 << 5
	ataMajor4to7      = 0xf0
	ataMinor          = 0x16
	lba28Max          = 0x0FFFFFFF
	integritySig      = 0xA5
)

// Geometry is a legacy cylinder/head/sector description.
type Geometry struct {
	Cylinders       uint16 `json:"cylinders" yaml:"cylinders"`
	Heads           uint16 `json:"heads" yaml:"heads"`
	SectorsPerTrack uint16 `json:"sectors_per_track" yaml:"sectors_per_track"`
}

// GeometryFor derives CHS geometry from a capacity in sectors.
func GeometryFor(sectors uint64) Geometry {
	cyls := sectors / (Heads * SectorsPerTrack)
	if cyls > MaxCylinders {
		cyls = MaxCylinders
	}
	return Geometry{Cylinders: uint16(cyls), Heads: Heads, SectorsPerTrack: SectorsPerTrack}
}

// Params is the device configuration the IDENTIFY block is derived from.
type Params struct {
	Sectors    uint64
	QueueDepth int
	WriteCache bool
	Serial     string
	Firmware   string
	Model      string
	WWN        uint64
}

// Build returns a new IDENTIFY block for p.
func Build(p Params) ([]byte, error) {
	buf := make([]byte, types.IdentityLength)
	if err := Fill(buf, p); err != nil {
		return nil, err
	}
	return buf, nil
}

// Fill writes the IDENTIFY block for p into buf, which must be exactly
// IdentityLength bytes. Every byte of buf is overwritten.
func Fill(buf []byte, p Params) error {
	if len(buf) != types.IdentityLength {
		return fmt.Errorf("identify buffer is %d bytes, want %d", len(buf), types.IdentityLength)
	}
	if p.QueueDepth < 1 || p.QueueDepth > types.MaxQueueDepth {
		return fmt.Errorf("queue depth %d outside [1, %d]", p.QueueDepth, types.MaxQueueDepth)
	}
	clear(buf)

	put := func(word int, v uint16) {
		binary.LittleEndian.PutUint16(buf[word*2:], v)
	}

	geo := GeometryFor(p.Sectors)
	put(wordCylinders, geo.Cylinders)
	put(wordHeads, geo.Heads)
	put(wordSPT, geo.SectorsPerTrack)

	putString(buf[wordSerial*2:wordSerial*2+serialLen], orDefault(p.Serial, DefaultSerial))
	putString(buf[wordFirmware*2:wordFirmware*2+firmwareLen], orDefault(p.Firmware, DefaultFirmware))
	putString(buf[wordModel*2:wordModel*2+modelLen], orDefault(p.Model, DefaultModel))

	put(wordCapabilities, capLBA|capDMA)
	put(wordCapabilities2, capValid)
	put(wordValidity, validWord88)

	lba28 := p.Sectors
	if lba28 > lba28Max {
		lba28 = lba28Max
	}
	put(wordLBA28, uint16(lba28))
	put(wordLBA28+1, uint16(lba28>>16))

	put(wordQueueDepth, uint16(p.QueueDepth-1))
	put(wordSATACaps, sata15Gbps|sata30Gbps|sataNCQ)
	put(wordMajorVersion, ataMajor4to7)
	put(wordMinorVersion, ataMinor)
	put(wordCmdSet1, cmdWriteCache)
	put(wordCmdSet2, capValid|cmdFlushCacheExt|cmdFlushCache|cmdLBA48)

	ext, def := uint16(capValid|cmdFUA), uint16(capValid)
	if p.WWN != 0 {
		ext |= cmdWWN
		def |= cmdWWN
	}
	put(wordCmdSetExt, ext)
	if p.WriteCache {
		put(wordCmdEnabled1, cmdWriteCache)
	}
	put(wordCmdEnabled2, cmdFlushCacheExt|cmdFlushCache|cmdLBA48)
	put(wordCmdDefault, def)
	put(wordUDMA, udma0to5Supported|udma5Selected)

	for i := 0; i < 4; i++ {
		put(wordLBA48+i, uint16(p.Sectors>>(16*i)))
	}
	for i := 0; i < 4; i++ {
		put(wordWWN+i, uint16(p.WWN>>(48-16*i)))
	}

	var sum byte
	for _, b := range buf[:types.IdentityLength-1] {
		sum += b
	}
	sum += integritySig
	put(wordIntegrity, uint16(-sum)<<8|integritySig)
	return nil
}

// putString stores s as an ATA string: space padded, two characters per
// word with the first character in the high byte.
func putString(dst []byte, s string) {
	for i := range dst {
		dst[i] = ' '
	}
	for i := 0; i < len(s) && i < len(dst); i++ {
		dst[i^1] = s[i]
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
