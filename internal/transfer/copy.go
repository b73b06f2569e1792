package transfer

import (
	"fmt"

	"github.com/deploymenttheory/go-satatarget/internal/interfaces"
	"github.com/deploymenttheory/go-satatarget/internal/types"
)

// ListBytes returns the total length of a scatter list.
func ListBytes(segs []interfaces.Segment) int {
	n := 0
	for _, s := range segs {
		n += s.Length
	}
	return n
}

// Copy moves bytes between host memory and a scatter list. For
// DirectionWrite host is copied into the list, for DirectionRead the list
// is copied into host. host must be exactly as long as the list.
func Copy(segs []interfaces.Segment, host []byte, dir types.Direction) (int, error) {
	if want := ListBytes(segs); len(host) != want {
		return 0, fmt.Errorf("host buffer is %d bytes, scatter list is %d", len(host), want)
	}

	n := 0
	for _, s := range segs {
		mem := s.Bytes()
		switch dir {
		case types.DirectionWrite:
			copy(mem, host[n:])
		case types.DirectionRead:
			copy(host[n:], mem)
		default:
			return n, fmt.Errorf("copy with direction %s", dir)
		}
		n += len(mem)
	}
	return n, nil
}
