package v5c

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
	BlocksHashed int64
	FileSize     int64
}

// VerifyChecksum re-reads path end to end and recomputes its checksum
// (blocks ‖ outputs_padded ‖ header[0:10] ‖ header[42:88] ‖
// header_padding), independent of any streaming writer/reader state.
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

	outputsOffset := int64(Alignment)
	outputsPadded := PaddedSize(int(h.NumOutputs) * outputEntrySize)
	outputsBuf := make([]byte, outputsPadded)

	if outputsPadded > 0 {
		if _, err := io.ReadFull(io.NewSectionReader(file, outputsOffset, int64(outputsPadded)), outputsBuf); err != nil {
			return VerifyResult{}, err
		}
	}

	blockStart := outputsOffset + int64(outputsPadded)
	blockEnd := info.Size()

	hasher := ckthash.New()

	buf := make([]byte, BlockSize)
	for off := blockStart; off < blockEnd; off += BlockSize {
		n := int64(BlockSize)
		if off+n > blockEnd {
			n = blockEnd - off
		}

		if _, err := io.ReadFull(io.NewSectionReader(file, off, n), buf[:n]); err != nil {
			return VerifyResult{}, err
		}

		hasher.WriteBlock(buf[:n])
	}

	hasher.WriteBlock(outputsBuf)

	before, after := ChecksumParts(h)
	hasher.WriteBlock(before)
	hasher.WriteBlock(after)

	headerPadding := make([]byte, Alignment-HeaderSize)
	if _, err := io.ReadFull(io.NewSectionReader(file, HeaderSize, int64(len(headerPadding))), headerPadding); err != nil {
		return VerifyResult{}, err
	}

	computed := hasher.Sum(headerPadding, nil)

	result := VerifyResult{
		Header:       h,
		Computed:     computed,
		BlocksHashed: blockEnd - blockStart,
		FileSize:     info.Size(),
	}

	if computed != h.Checksum {
		return result, fmt.Errorf("%w: have %x want %x", ErrChecksum, computed, h.Checksum)
	}

	return result, nil
}
