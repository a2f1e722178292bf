package v5a

import (
	"errors"
	"io"

	"github.com/zk2u/ckt/internal/blockio"
	"github.com/zk2u/ckt/pkg/fs"
)

// Reader streams blocks from a v5a file in file order.
type Reader struct {
	file    fs.File
	header  Header
	outputs []uint64
	blocks  *blockio.Reader
	scratch *Scratch

	gatesRead uint64
	eof       bool
}

// Open reads and validates the header and outputs vector, then starts
// streaming the block region. useDirect requests direct I/O for the block
// region (see internal/blockio); it falls back to a buffered handle, and
// the block reader's alignment math, whenever the filesystem can't honor
// O_DIRECT.
func Open(fsys fs.FS, path string, useDirect bool) (*Reader, error) {
	file, direct, err := openBlockFile(fsys, path, useDirect)
	if err != nil {
		return nil, err
	}

	useDirect = direct

	headerBuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(io.NewSectionReader(file, 0, HeaderSize), headerBuf); err != nil {
		file.Close()
		return nil, err
	}

	h, err := DecodeHeader(headerBuf)
	if err != nil {
		file.Close()
		return nil, err
	}

	outputsStart := int64(HeaderSize)
	outputsLen := int64(h.NumOutputs) * outputEntrySize
	outputsBuf := make([]byte, outputsLen)

	if outputsLen > 0 {
		if _, err := io.ReadFull(io.NewSectionReader(file, outputsStart, outputsLen), outputsBuf); err != nil {
			file.Close()
			return nil, err
		}
	}

	outputs, err := DecodeOutputs(outputsBuf, int(h.NumOutputs))
	if err != nil {
		file.Close()
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	blockStart := outputsStart + outputsLen
	blockEnd := info.Size()

	return &Reader{
		file:    file,
		header:  h,
		outputs: outputs,
		blocks:  blockio.Open(file, blockStart, blockEnd, useDirect, 0),
		scratch: NewScratch(),
	}, nil
}

// Header returns the validated file header.
func (r *Reader) Header() Header { return r.header }

// Outputs returns the output wire ids.
func (r *Reader) Outputs() []uint64 { return r.outputs }

// NextBlockSoA returns the next decoded block, or io.EOF once every
// declared gate has been delivered. The returned DecodedBlock is only
// valid until the next call.
func (r *Reader) NextBlockSoA() (DecodedBlock, error) {
	if r.eof {
		return DecodedBlock{}, io.EOF
	}

	remaining := r.header.TotalGates() - r.gatesRead
	if remaining == 0 {
		r.eof = true
		return DecodedBlock{}, io.EOF
	}

	n := GatesPerBlock
	if remaining < uint64(n) {
		n = int(remaining)
	}

	raw, err := r.blocks.NextBlock(BlockSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return DecodedBlock{}, err
	}

	gotEOF := errors.Is(err, io.EOF)

	decoded, derr := DecodeBlock(raw, n, r.scratch)
	if derr != nil {
		return DecodedBlock{}, derr
	}

	r.gatesRead += uint64(n)

	if gotEOF || r.gatesRead >= r.header.TotalGates() {
		r.eof = true
	}

	return decoded, nil
}

// Close stops the underlying block reader and closes the file.
func (r *Reader) Close() error {
	r.blocks.Close()
	return r.file.Close()
}

// openBlockFile opens path, requesting O_DIRECT through fsys when wantDirect
// is set. It reports whether direct I/O actually ended up in effect, so the
// caller can tell blockio.Open not to apply sector alignment to a handle
// that fell back to buffered I/O.
func openBlockFile(fsys fs.FS, path string, wantDirect bool) (fs.File, bool, error) {
	if !wantDirect {
		file, err := fsys.Open(path)
		return file, false, err
	}

	return fsys.OpenDirect(path)
}
