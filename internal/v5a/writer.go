package v5a

import (
	"os"

	"github.com/zk2u/ckt/internal/ckthash"
	"github.com/zk2u/ckt/internal/gate"
	"github.com/zk2u/ckt/pkg/fs"
)

// DefaultIOBufferCap is the default aggregation buffer size writers flush
// to disk with; see spec §5 "Resource policy".
const DefaultIOBufferCap = 8 << 20 // 8 MiB

// Stats is returned by Finalize.
type Stats struct {
	TotalGates    uint64
	XORGates      uint64
	ANDGates      uint64
	PrimaryInputs uint64
	NumOutputs    uint64
	Checksum      [32]byte
}

// Writer streams gates to a v5a file: placeholder header + outputs first,
// then blocks as they fill, hashing on the fly, then a header backpatch at
// Finalize.
type Writer struct {
	file          fs.File
	primaryInputs uint64
	outputs       []uint64

	nextOffset uint64
	ioBuf      []byte
	ioBufCap   int

	block Block

	xorGates uint64
	andGates uint64

	hasher *ckthash.Hasher
}

// Create opens path (creating or truncating it) and writes the placeholder
// header and outputs vector.
func Create(fsys fs.FS, path string, primaryInputs uint64, outputs []uint64) (*Writer, error) {
	outputsBytes, err := EncodeOutputs(outputs)
	if err != nil {
		return nil, err
	}

	file, err := fsys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}

	if _, err := file.WriteAt(make([]byte, HeaderSize), 0); err != nil {
		file.Close()
		return nil, err
	}

	if _, err := file.WriteAt(outputsBytes, HeaderSize); err != nil {
		file.Close()
		return nil, err
	}

	return &Writer{
		file:          file,
		primaryInputs: primaryInputs,
		outputs:       outputs,
		nextOffset:    uint64(HeaderSize + len(outputsBytes)),
		ioBuf:         make([]byte, 0, DefaultIOBufferCap),
		ioBufCap:      DefaultIOBufferCap,
		hasher:        ckthash.New(),
	}, nil
}

// SetIOBufferCapacity tunes the aggregation buffer size. Call before
// writing any gates for effect.
func (w *Writer) SetIOBufferCapacity(n int) {
	if n < BlockSize {
		n = BlockSize
	}

	w.ioBufCap = n
}

// WriteGate buffers one gate, flushing a full block to the aggregation
// buffer as needed.
func (w *Writer) WriteGate(g Gate) error {
	if err := w.block.Push(g); err != nil {
		return err
	}

	if g.Type == gate.AND {
		w.andGates++
	} else {
		w.xorGates++
	}

	if w.block.Full() {
		return w.flushBlock()
	}

	return nil
}

// WriteGates writes a slice of gates in order.
func (w *Writer) WriteGates(gates []Gate) error {
	for _, g := range gates {
		if err := w.WriteGate(g); err != nil {
			return err
		}
	}

	return nil
}

func (w *Writer) flushBlock() error {
	var buf [BlockSize]byte

	w.block.Encode(buf[:])
	w.block.Reset()

	w.hasher.WriteBlock(buf[:])

	if len(w.ioBuf)+BlockSize > w.ioBufCap {
		if err := w.flushIOBuffer(); err != nil {
			return err
		}
	}

	w.ioBuf = append(w.ioBuf, buf[:]...)

	return nil
}

func (w *Writer) flushIOBuffer() error {
	if len(w.ioBuf) == 0 {
		return nil
	}

	if _, err := w.file.WriteAt(w.ioBuf, int64(w.nextOffset)); err != nil {
		return err
	}

	w.nextOffset += uint64(len(w.ioBuf))
	w.ioBuf = w.ioBuf[:0]

	return nil
}

// Finalize flushes remaining data, completes the checksum, backpatches the
// header, and syncs the file. The Writer must not be used afterward.
func (w *Writer) Finalize() (Stats, error) {
	defer w.file.Close()

	if w.block.Len() > 0 {
		if err := w.flushBlock(); err != nil {
			return Stats{}, err
		}
	}

	if err := w.flushIOBuffer(); err != nil {
		return Stats{}, err
	}

	outputsBytes, err := EncodeOutputs(w.outputs)
	if err != nil {
		return Stats{}, err
	}

	h := Header{
		XORGates:      w.xorGates,
		ANDGates:      w.andGates,
		PrimaryInputs: w.primaryInputs,
		NumOutputs:    uint64(len(w.outputs)),
	}

	h.Checksum = w.hasher.Sum(outputsBytes, HeaderTail(h))

	if _, err := w.file.WriteAt(EncodeHeader(h), 0); err != nil {
		return Stats{}, err
	}

	if err := w.file.Sync(); err != nil {
		return Stats{}, err
	}

	return Stats{
		TotalGates:    w.xorGates + w.andGates,
		XORGates:      w.xorGates,
		ANDGates:      w.andGates,
		PrimaryInputs: w.primaryInputs,
		NumOutputs:    uint64(len(w.outputs)),
		Checksum:      h.Checksum,
	}, nil
}
