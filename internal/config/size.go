package config

import (
	"fmt"
	"strconv"
	"strings"
)

var sizeUnits = map[string]uint64{
	"":   1,
	"B":  1,
	"S":  512,
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
	"TB": 1 << 40,
}

// ParseSize converts size strings like "64MB", "64MiB", "1.5GB" or
// "2048S" (sectors) to bytes. A bare number is a byte count. All units
// are binary.
func ParseSize(size string) (uint64, error) {
	s := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(size), " ", ""))
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}
	if strings.HasSuffix(s, "IB") {
		s = strings.TrimSuffix(s, "IB") + "B"
	}

	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	numPart, unit := s[:i], s[i:]
	if numPart == "" {
		return 0, fmt.Errorf("no numeric value found in %q", size)
	}
	mult, ok := sizeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("invalid size unit: %s (valid: B, S, KB, MB, GB, TB)", unit)
	}

	if !strings.Contains(numPart, ".") {
		n, err := strconv.ParseUint(numPart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid numeric value: %s", numPart)
		}
		if n > ^uint64(0)/mult {
			return 0, fmt.Errorf("size %q overflows", size)
		}
		return n * mult, nil
	}
	f, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value: %s", numPart)
	}
	bytes := f * float64(mult)
	if bytes >= 1<<64 {
		return 0, fmt.Errorf("size %q overflows", size)
	}
	return uint64(bytes), nil
}

// FormatSize renders a byte count with the largest exact binary unit.
func FormatSize(bytes uint64) string {
	for _, u := range []struct {
		name string
		mult uint64
	}{{"TB", 1 << 40}, {"GB", 1 << 30}, {"MB", 1 << 20}, {"KB", 1 << 10}} {
		if bytes >= u.mult && bytes%u.mult == 0 {
			return fmt.Sprintf("%d%s", bytes/u.mult, u.name)
		}
	}
	return fmt.Sprintf("%dB", bytes)
}
