package backing

// FixedInventory reports a constant amount of system memory.
type FixedInventory uint64

// TotalBytes returns the fixed amount.
func (f FixedInventory) TotalBytes() (uint64, error) {
	return uint64(f), nil
}

// SystemInventory queries the host for its total memory.
type SystemInventory struct{}

// TotalBytes returns the total system memory in bytes.
func (SystemInventory) TotalBytes() (uint64, error) {
	return systemMemory()
}
