package region

import "os"

// FileOptions configures OpenFile.
type FileOptions struct {
	// Create creates the file when it does not exist.
	Create bool

	// Perm is used when creating the file. Default: 0o600.
	Perm os.FileMode

	// NoLock skips the advisory inter-process lock.
	NoLock bool
}

func (o *FileOptions) perm() os.FileMode {
	if o.Perm == 0 {
		return 0o600
	}
	return o.Perm
}
