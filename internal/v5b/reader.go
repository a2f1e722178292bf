package v5b

import (
	"io"

	"github.com/zk2u/ckt/internal/blockio"
	"github.com/zk2u/ckt/pkg/fs"
)

// Reader streams levels from a v5b file in file order.
type Reader struct {
	file    fs.File
	header  Header
	outputs []uint32
	blocks  *blockio.Reader

	levelsRead uint32
	eof        bool
}

// Open reads and validates the header and outputs vector, then starts
// streaming the levels region. useDirect requests direct I/O for the
// levels region (see internal/blockio); it falls back to a buffered
// handle, and the block reader's alignment math, whenever the filesystem
// can't honor O_DIRECT.
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

	levelsStart := outputsStart + outputsLen
	levelsEnd := info.Size()

	return &Reader{
		file:    file,
		header:  h,
		outputs: outputs,
		blocks:  blockio.Open(file, levelsStart, levelsEnd, useDirect, 0),
	}, nil
}

// Header returns the validated file header.
func (r *Reader) Header() Header { return r.header }

// Outputs returns the output scratch addresses.
func (r *Reader) Outputs() []uint32 { return r.outputs }

// Level is one decoded level: its framing header plus gates in the
// XOR-then-AND order the file stores them.
type Level struct {
	Header LevelHeader
	XOR    []Gate
	AND    []Gate
}

// NextLevel returns the next decoded level, or io.EOF once every declared
// level has been delivered.
func (r *Reader) NextLevel() (Level, error) {
	if r.eof {
		return Level{}, io.EOF
	}

	if r.levelsRead >= r.header.NumLevels {
		r.eof = true
		return Level{}, io.EOF
	}

	raw, err := r.blocks.NextBlock(levelHeaderSize)
	if err != nil && err != io.EOF {
		return Level{}, err
	}

	lh, derr := decodeLevelHeader(raw)
	if derr != nil {
		return Level{}, derr
	}

	xor := make([]Gate, lh.NumXOR)
	for i := range xor {
		gb, err := r.blocks.NextBlock(gateSize)
		if err != nil && err != io.EOF {
			return Level{}, err
		}

		xor[i] = decodeGate(gb)
	}

	and := make([]Gate, lh.NumAND)
	for i := range and {
		gb, err := r.blocks.NextBlock(gateSize)
		if err != nil && err != io.EOF {
			return Level{}, err
		}

		and[i] = decodeGate(gb)
	}

	// NumLevels from the header is authoritative for end-of-stream, since
	// the final level's last gate read may or may not surface io.EOF
	// depending on exactly where it lands relative to the region end.
	r.levelsRead++
	if r.levelsRead >= r.header.NumLevels {
		r.eof = true
	}

	return Level{Header: lh, XOR: xor, AND: and}, nil
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
