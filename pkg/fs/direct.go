//go:build linux

package fs

import (
	"os"

	"golang.org/x/sys/unix"
)

// SectorSize is the alignment direct I/O reads/writes must respect when
// O_DIRECT is in effect. 4096 covers the common case (and is a safe multiple
// of the 512-byte sectors some devices report); callers that need the true
// device sector size should stat the block device directly, which this
// package does not attempt.
const SectorSize = 4096

// OpenDirect opens path with O_DIRECT in addition to flag, falling back to a
// buffered open if the filesystem rejects O_DIRECT (tmpfs, some network
// filesystems, and most CI sandboxes don't support it). The second return
// value reports whether direct I/O is actually in effect.
func OpenDirect(path string, flag int, perm os.FileMode) (*os.File, bool, error) {
	f, err := os.OpenFile(path, flag|unix.O_DIRECT, perm)
	if err == nil {
		return f, true, nil
	}

	f, err = os.OpenFile(path, flag, perm)

	return f, false, err
}

// AlignDown rounds off down to the nearest multiple of SectorSize.
func AlignDown(off int64) int64 {
	return off &^ (SectorSize - 1)
}

// AlignUp rounds off up to the nearest multiple of SectorSize.
func AlignUp(off int64) int64 {
	return (off + SectorSize - 1) &^ (SectorSize - 1)
}
