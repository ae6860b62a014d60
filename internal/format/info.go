package format

import "fmt"

// Info is the value stored in a chunk header and footer.
// A zero Info is a segment boundary marker (or the free-list sentinel).
type Info uint32

// MakeInfo packs a chunk size and flag bits.
func MakeInfo(size int, flags Info) Info {
	return Info(uint32(size))&SizeMask | flags&FlagMask
}

// Size returns the chunk size in bytes, tags included.
func (i Info) Size() int { return int(i & SizeMask) }

// Flags returns the flag bits.
func (i Info) Flags() Info { return i & FlagMask }

// Free reports whether the free flag is set.
func (i Info) Free() bool { return i&FlagFree != 0 }

// IsBoundary reports whether i is a segment marker.
func (i Info) IsBoundary() bool { return i == 0 }

// PayloadSize returns the usable bytes between header and footer.
func (i Info) PayloadSize() int { return i.Size() - ChunkOverhead }

func (i Info) String() string {
	if i.IsBoundary() {
		return "boundary"
	}
	state := "used"
	if i.Free() {
		state = "free"
	}
	return fmt.Sprintf("%s:%d", state, i.Size())
}

// ReadInfo reads the tag at off.
func ReadInfo(b []byte, off int) Info {
	return Info(ReadU32(b, off))
}

// PutInfo writes a tag at off.
func PutInfo(b []byte, off int, i Info) {
	PutU32(b, off, uint32(i))
}
