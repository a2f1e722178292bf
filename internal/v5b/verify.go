package v5b

import (
	"fmt"
	"io"

	"github.com/zk2u/ckt/internal/ckthash"
	"github.com/zk2u/ckt/pkg/fs"
)

// VerifyResult is the detailed output of VerifyChecksum.
type VerifyResult struct {
	Header       Header
	Computed     [32]byte
	LevelsHashed int64
	OutputsBytes int64
	FileSize     int64
}

// VerifyChecksum re-reads path end to end and recomputes its checksum
// (levels ‖ outputs ‖ header_tail), independent of any streaming
// writer/reader state.
func VerifyChecksum(fsys fs.FS, path string) (VerifyResult, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return VerifyResult{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return VerifyResult{}, err
	}

	headerBuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(io.NewSectionReader(file, 0, HeaderSize), headerBuf); err != nil {
		return VerifyResult{}, err
	}

	h, err := DecodeHeader(headerBuf)
	if err != nil {
		return VerifyResult{}, err
	}

	outputsStart := int64(HeaderSize)
	outputsLen := int64(h.NumOutputs) * outputEntrySize
	outputsBuf := make([]byte, outputsLen)

	if outputsLen > 0 {
		if _, err := io.ReadFull(io.NewSectionReader(file, outputsStart, outputsLen), outputsBuf); err != nil {
			return VerifyResult{}, err
		}
	}

	levelsStart := outputsStart + outputsLen
	levelsEnd := info.Size()

	hasher := ckthash.New()

	const chunkSize = 1 << 20

	buf := make([]byte, chunkSize)
	for off := levelsStart; off < levelsEnd; off += chunkSize {
		n := int64(chunkSize)
		if off+n > levelsEnd {
			n = levelsEnd - off
		}

		if _, err := io.ReadFull(io.NewSectionReader(file, off, n), buf[:n]); err != nil {
			return VerifyResult{}, err
		}

		hasher.WriteBlock(buf[:n])
	}

	computed := hasher.Sum(outputsBuf, HeaderTail(h))

	result := VerifyResult{
		Header:       h,
		Computed:     computed,
		LevelsHashed: levelsEnd - levelsStart,
		OutputsBytes: outputsLen,
		FileSize:     info.Size(),
	}

	if computed != h.Checksum {
		return result, fmt.Errorf("%w: have %x want %x", ErrChecksum, computed, h.Checksum)
	}

	return result, nil
}
