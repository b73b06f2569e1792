//go:build darwin

package backing

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func systemMemory() (uint64, error) {
	n, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return 0, fmt.Errorf("sysctl hw.memsize: %w", err)
	}
	return n, nil
}
