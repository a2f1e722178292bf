package v5c

import (
	"errors"
	"os"

	"github.com/zk2u/ckt/internal/ckthash"
	"github.com/zk2u/ckt/internal/gate"
	"github.com/zk2u/ckt/pkg/fs"
)

// DefaultIOBufferCap is the default aggregation buffer size writers flush
// to disk with.
const DefaultIOBufferCap = 8 << 20 // 8 MiB

// Stats is returned by Finalize.
type Stats struct {
	TotalGates    uint64
	XORGates      uint64
	ANDGates      uint64
	PrimaryInputs uint64
	ScratchSpace  uint64
	NumOutputs    uint64
	Checksum      [32]byte
}

// Writer streams gates to a v5c file: a placeholder header and zeroed
// outputs, each padded to a whole Alignment section, then full BlockSize
// blocks as they fill (every block, including the last, is always written
// and hashed at its full padded size), then a header backpatch at
// Finalize.
type Writer struct {
	file          fs.File
	primaryInputs uint64
	numOutputs    uint64

	outputsOffset uint64
	outputsPadded int
	nextOffset    uint64

	ioBuf    []byte
	ioBufCap int

	block Block

	xorGates    uint64
	andGates    uint64
	maxAddrSeen uint32

	hasher *ckthash.Hasher
}

// Create opens path (creating or truncating it) and writes the placeholder
// header and outputs regions, each padded up to Alignment.
func Create(fsys fs.FS, path string, primaryInputs uint64, numOutputs uint64) (*Writer, error) {
	file, err := fsys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}

	if _, err := file.WriteAt(make([]byte, Alignment), 0); err != nil {
		file.Close()
		return nil, err
	}

	outputsOffset := uint64(Alignment)
	outputsPadded := PaddedSize(int(numOutputs) * outputEntrySize)

	if outputsPadded > 0 {
		if _, err := file.WriteAt(make([]byte, outputsPadded), int64(outputsOffset)); err != nil {
			file.Close()
			return nil, err
		}
	}

	return &Writer{
		file:          file,
		primaryInputs: primaryInputs,
		numOutputs:    numOutputs,
		outputsOffset: outputsOffset,
		outputsPadded: outputsPadded,
		nextOffset:    outputsOffset + uint64(outputsPadded),
		ioBuf:         make([]byte, 0, DefaultIOBufferCap),
		ioBufCap:      DefaultIOBufferCap,
		hasher:        ckthash.New(),
	}, nil
}

// SetIOBufferCapacity tunes the aggregation buffer size.
func (w *Writer) SetIOBufferCapacity(n int) {
	if n < BlockSize {
		n = BlockSize
	}

	w.ioBufCap = n
}

// WriteGate buffers one gate in execution order, flushing a full block as
// needed.
func (w *Writer) WriteGate(g Gate, t gate.Type) error {
	if err := validateAddr(g.In1); err != nil {
		return err
	}

	if err := validateAddr(g.In2); err != nil {
		return err
	}

	if err := validateAddr(g.Out); err != nil {
		return err
	}

	if w.block.Full() {
		if err := w.flushBlock(); err != nil {
			return err
		}
	}

	w.block.Push(g, t == gate.AND)

	if t == gate.AND {
		w.andGates++
	} else {
		w.xorGates++
	}

	if g.In1 > w.maxAddrSeen {
		w.maxAddrSeen = g.In1
	}

	if g.In2 > w.maxAddrSeen {
		w.maxAddrSeen = g.In2
	}

	if g.Out > w.maxAddrSeen {
		w.maxAddrSeen = g.Out
	}

	return nil
}

func (w *Writer) flushBlock() error {
	if w.block.Len() == 0 {
		return nil
	}

	var buf [BlockSize]byte

	w.block.Encode(buf[:])
	w.block.Reset()

	w.hasher.WriteBlock(buf[:])

	return w.enqueue(buf[:])
}

func (w *Writer) enqueue(data []byte) error {
	if len(w.ioBuf)+len(data) > w.ioBufCap {
		if err := w.flushIOBuffer(); err != nil {
			return err
		}
	}

	w.ioBuf = append(w.ioBuf, data...)

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

// Finalize flushes the trailing partial block, overwrites the outputs
// section, completes the checksum, backpatches the header, and syncs. The
// Writer must not be used afterward.
func (w *Writer) Finalize(scratchSpace uint64, outputs []uint32) (Stats, error) {
	defer w.file.Close()

	if uint64(len(outputs)) != w.numOutputs {
		return Stats{}, errors.New("v5c: finalize outputs length does not match the initial num_outputs")
	}

	if err := w.flushBlock(); err != nil {
		return Stats{}, err
	}

	if err := w.flushIOBuffer(); err != nil {
		return Stats{}, err
	}

	if scratchSpace > MaxAddr {
		return Stats{}, ErrInvalidInput
	}

	outputsBytes, maxOutAddr, err := EncodeOutputs(outputs)
	if err != nil {
		return Stats{}, err
	}

	if maxOutAddr > w.maxAddrSeen {
		w.maxAddrSeen = maxOutAddr
	}

	if uint64(w.maxAddrSeen) >= scratchSpace {
		return Stats{}, errors.New("v5c: some addresses are >= scratch_space")
	}

	outputsPadded := make([]byte, w.outputsPadded)
	copy(outputsPadded, outputsBytes)

	if len(outputsPadded) > 0 {
		if _, err := w.file.WriteAt(outputsPadded, int64(w.outputsOffset)); err != nil {
			return Stats{}, err
		}
	}

	w.hasher.WriteBlock(outputsPadded)

	h := Header{
		XORGates:      w.xorGates,
		ANDGates:      w.andGates,
		PrimaryInputs: w.primaryInputs,
		ScratchSpace:  scratchSpace,
		NumOutputs:    w.numOutputs,
	}

	before, after := ChecksumParts(h)
	w.hasher.WriteBlock(before)
	w.hasher.WriteBlock(after)

	headerPadding := make([]byte, Alignment-HeaderSize)
	h.Checksum = w.hasher.Sum(headerPadding, nil)

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
		ScratchSpace:  scratchSpace,
		NumOutputs:    w.numOutputs,
		Checksum:      h.Checksum,
	}, nil
}
