//go:build unix && !linux && !freebsd && !darwin

package dirty

import (
	"context"

	"golang.org/x/sys/unix"
)

// flushRanges syncs the whole mapping on platforms where sub-range msync
// behaviour is not verified.
func (t *Tracker) flushRanges(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return unix.Msync(data, unix.MS_SYNC)
}

func fdatasync(fd int, _ bool) error {
	return unix.Fsync(fd)
}
