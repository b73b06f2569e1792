//go:build !linux && !darwin

package backing

import "errors"

func systemMemory() (uint64, error) {
	return 0, errors.New("system memory query not supported on this platform")
}
