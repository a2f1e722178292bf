//go:build !linux

package fs

import "os"

// SectorSize is the alignment direct I/O reads/writes would respect on
// platforms that support it. On non-Linux builds it only governs the
// fallback aligned-buffer sizing in internal/blockio; no O_DIRECT flag
// exists to pass.
const SectorSize = 4096

// OpenDirect always falls back to a buffered open on non-Linux platforms;
// the bool result is always false. See the linux build's OpenDirect for the
// real behavior.
func OpenDirect(path string, flag int, perm os.FileMode) (*os.File, bool, error) {
	f, err := os.OpenFile(path, flag, perm)
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
