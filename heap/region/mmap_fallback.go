//go:build !unix

package region

// NewMmap falls back to a slice-backed region where anonymous mappings with
// deferred commit are not available.
func NewMmap(reserve int) (Region, error) {
	return NewMemory(reserve), nil
}
