package types

// Direction is the transfer direction of a mapped command.
type Direction int

const (
	// DirectionUnmapped means the slot has no active mapping.
	DirectionUnmapped Direction = iota
	// DirectionRead moves data out of the backing store to the host.
	DirectionRead
	// DirectionWrite moves data from the host into the backing store.
	DirectionWrite
)

// String returns a string representation of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionUnmapped:
		return "unmapped"
	case DirectionRead:
		return "read"
	case DirectionWrite:
		return "write"
	default:
		return "unknown"
	}
}

// IsTransfer reports whether d is a direction a request can be mapped with.
func (d Direction) IsTransfer() bool {
	return d == DirectionRead || d == DirectionWrite
}

// ParseDirection converts "read" or "write" into a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "read", "r", "in":
		return DirectionRead, true
	case "write", "w", "out":
		return DirectionWrite, true
	}
	return DirectionUnmapped, false
}
