package dirty

// DirtyTracker is the minimal interface for reporting modified byte ranges.
// off is the offset from the start of the region, length the number of bytes.
type DirtyTracker interface {
	Add(off, length int)
}

// Mapping is the file mapping a Tracker flushes.
type Mapping interface {
	// Bytes returns the current mapping.
	Bytes() []byte

	// FD returns the file descriptor backing the mapping.
	FD() int
}
