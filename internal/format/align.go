package format

// Align8 returns n aligned up to the next 8-byte boundary.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
func Align8(n int) int {
	return (n + AlignmentMask) & ^AlignmentMask
}

// AlignTo rounds n up to a whole multiple of unit. unit must be positive;
// page sizes are always powers of two but this does not rely on it.
//
// Example:
//
//	AlignTo(1, 4096)    = 4096
//	AlignTo(4096, 4096) = 4096
//	AlignTo(4097, 4096) = 8192
func AlignTo(n, unit int) int {
	return (n + unit - 1) / unit * unit
}

// IsAligned reports whether n is a multiple of unit.
func IsAligned(n, unit int) bool {
	return unit > 0 && n%unit == 0
}
