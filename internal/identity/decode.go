package identity

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-satatarget/internal/types"
)

// Info is a decoded IDENTIFY block.
type Info struct {
	Geometry            Geometry `json:"geometry" yaml:"geometry"`
	Serial              string   `json:"serial" yaml:"serial"`
	Firmware            string   `json:"firmware" yaml:"firmware"`
	Model               string   `json:"model" yaml:"model"`
	Sectors28           uint32   `json:"sectors_28" yaml:"sectors_28"`
	Sectors48           uint64   `json:"sectors_48" yaml:"sectors_48"`
	QueueDepth          int      `json:"queue_depth" yaml:"queue_depth"`
	LBA                 bool     `json:"lba" yaml:"lba"`
	DMA                 bool     `json:"dma" yaml:"dma"`
	NCQ                 bool     `json:"ncq" yaml:"ncq"`
	LBA48               bool     `json:"lba48" yaml:"lba48"`
	FUA                 bool     `json:"fua" yaml:"fua"`
	FlushCache          bool     `json:"flush_cache" yaml:"flush_cache"`
	WriteCacheSupported bool     `json:"write_cache_supported" yaml:"write_cache_supported"`
	WriteCacheEnabled   bool     `json:"write_cache_enabled" yaml:"write_cache_enabled"`
	UDMAModes           uint8    `json:"udma_modes" yaml:"udma_modes"`
	UDMASelected        int      `json:"udma_selected" yaml:"udma_selected"`
	WWN                 uint64   `json:"wwn" yaml:"wwn"`
	ChecksumValid       bool     `json:"checksum_valid" yaml:"checksum_valid"`
}

// Parse decodes an IDENTIFY block.
func Parse(buf []byte) (*Info, error) {
	if len(buf) < types.IdentityLength {
		return nil, fmt.Errorf("identify data too small: %d bytes", len(buf))
	}
	word := func(w int) uint16 {
		return binary.LittleEndian.Uint16(buf[w*2:])
	}

	info := &Info{
		Geometry: Geometry{
			Cylinders:       word(wordCylinders),
			Heads:           word(wordHeads),
			SectorsPerTrack: word(wordSPT),
		},
		Serial:   getString(buf[wordSerial*2 : wordSerial*2+serialLen]),
		Firmware: getString(buf[wordFirmware*2 : wordFirmware*2+firmwareLen]),
		Model:    getString(buf[wordModel*2 : wordModel*2+modelLen]),

		Sectors28:  uint32(word(wordLBA28)) | uint32(word(wordLBA28+1))<<16,
		QueueDepth: int(word(wordQueueDepth)&0x1f) + 1,

		LBA:                 word(wordCapabilities)&capLBA != 0,
		DMA:                 word(wordCapabilities)&capDMA != 0,
		NCQ:                 word(wordSATACaps)&sataNCQ != 0,
		LBA48:               word(wordCmdSet2)&cmdLBA48 != 0,
		FUA:                 word(wordCmdSetExt)&cmdFUA != 0,
		FlushCache:          word(wordCmdSet2)&cmdFlushCache != 0,
		WriteCacheSupported: word(wordCmdSet1)&cmdWriteCache != 0,
		WriteCacheEnabled:   word(wordCmdEnabled1)&cmdWriteCache != 0,
		UDMAModes:           uint8(word(wordUDMA)),
		UDMASelected:        -1,
	}
	for i := 0; i < 4; i++ {
		info.Sectors48 |= uint64(word(wordLBA48+i)) << (16 * i)
		info.WWN = info.WWN<<16 | uint64(word(wordWWN+i))
	}
	if sel := word(wordUDMA) >> 8; sel != 0 {
		for i := 0; i < 8; i++ {
			if sel&(1<<i) != 0 {
				info.UDMASelected = i
			}
		}
	}

	if buf[wordIntegrity*2] == integritySig {
		var sum byte
		for _, b := range buf[:types.IdentityLength] {
			sum += b
		}
		info.ChecksumValid = sum == 0
	}
	return info, nil
}

func getString(src []byte) string {
	out := make([]byte, len(src))
	for i := range src {
		out[i] = src[i^1]
	}
	return strings.TrimRight(string(out), " \x00")
}
