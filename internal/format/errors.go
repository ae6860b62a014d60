package format

import "errors"

var (
	// ErrTruncated indicates a chunk or segment runs past the end of the region.
	ErrTruncated = errors.New("format: truncated region")
	// ErrBadSize indicates a tag whose size is too small or not 8-byte aligned.
	ErrBadSize = errors.New("format: bad chunk size")
	// ErrTagMismatch indicates a header and footer that disagree.
	ErrTagMismatch = errors.New("format: header/footer mismatch")
	// ErrNoBoundary indicates a segment that does not start with a zero marker.
	ErrNoBoundary = errors.New("format: missing segment boundary")
)
