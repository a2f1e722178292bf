package v5b

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

// ErrLevelInProgress and ErrNoLevelInProgress guard the start_level /
// add_gate / finish_level protocol.
var (
	ErrLevelInProgress   = errors.New("v5b: level already started")
	ErrNoLevelInProgress = errors.New("v5b: no level in progress")
	ErrEmptyLevel        = errors.New("v5b: empty levels are not allowed")
)

// Stats is returned by Finalize.
type Stats struct {
	TotalGates    uint64
	XORGates      uint64
	ANDGates      uint64
	PrimaryInputs uint64
	ScratchSpace  uint64
	NumOutputs    uint64
	NumLevels     uint32
	Checksum      [32]byte
}

// Writer streams level-framed gates to a v5b file: placeholder header +
// zeroed outputs first, then levels as they're finished, hashing on the
// fly, then outputs and a header backpatch at Finalize.
type Writer struct {
	file          fs.File
	primaryInputs uint64
	numOutputs    uint64

	outputsOffset uint64
	nextOffset    uint64

	ioBuf    []byte
	ioBufCap int

	hasher *ckthash.Hasher

	xorGates  uint64
	andGates  uint64
	numLevels uint32

	maxAddrSeen uint32

	inLevel bool
	level   levelBuilder
}

// Create opens path (creating or truncating it) and writes the placeholder
// header and zeroed outputs region.
func Create(fsys fs.FS, path string, primaryInputs uint64, numOutputs uint64) (*Writer, error) {
	file, err := fsys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}

	if _, err := file.WriteAt(make([]byte, HeaderSize), 0); err != nil {
		file.Close()
		return nil, err
	}

	outputsOffset := uint64(HeaderSize)
	outputsLen := numOutputs * outputEntrySize

	if outputsLen > 0 {
		if _, err := file.WriteAt(make([]byte, outputsLen), int64(outputsOffset)); err != nil {
			file.Close()
			return nil, err
		}
	}

	return &Writer{
		file:          file,
		primaryInputs: primaryInputs,
		numOutputs:    numOutputs,
		outputsOffset: outputsOffset,
		nextOffset:    outputsOffset + outputsLen,
		ioBuf:         make([]byte, 0, DefaultIOBufferCap),
		ioBufCap:      DefaultIOBufferCap,
		hasher:        ckthash.New(),
	}, nil
}

// SetIOBufferCapacity tunes the aggregation buffer size.
func (w *Writer) SetIOBufferCapacity(n int) {
	if n < gateSize {
		n = gateSize
	}

	w.ioBufCap = n
}

// StartLevel begins a new level.
func (w *Writer) StartLevel() error {
	if w.inLevel {
		return ErrLevelInProgress
	}

	w.inLevel = true
	w.level.reset()

	return nil
}

// AddGate adds a gate of the given type to the in-progress level. XOR and
// AND gates may be added in any order; FinishLevel writes them XORs-first.
func (w *Writer) AddGate(t gate.Type, g Gate) error {
	if !w.inLevel {
		return ErrNoLevelInProgress
	}

	if err := validateAddr(g.In1); err != nil {
		return err
	}

	if err := validateAddr(g.In2); err != nil {
		return err
	}

	if err := validateAddr(g.Out); err != nil {
		return err
	}

	w.level.addGate(t, g)

	return nil
}

// FinishLevel writes the level's LevelHeader and gates (XORs then ANDs),
// hashing as it writes.
func (w *Writer) FinishLevel() error {
	if !w.inLevel {
		return ErrNoLevelInProgress
	}

	numXOR := w.level.numXOR()
	numAND := w.level.numAND()

	if numXOR+numAND == 0 {
		return ErrEmptyLevel
	}

	w.xorGates += uint64(numXOR)
	w.andGates += uint64(numAND)
	w.numLevels++

	if w.level.maxAddrSeen > w.maxAddrSeen {
		w.maxAddrSeen = w.level.maxAddrSeen
	}

	lh := encodeLevelHeader(LevelHeader{NumXOR: numXOR, NumAND: numAND})
	w.hasher.WriteBlock(lh)

	if err := w.enqueue(lh); err != nil {
		return err
	}

	for _, g := range w.level.xors {
		gb := encodeGate(g)
		if err := w.enqueue(gb); err != nil {
			return err
		}

		w.hasher.WriteBlock(gb)
	}

	for _, g := range w.level.ands {
		gb := encodeGate(g)
		if err := w.enqueue(gb); err != nil {
			return err
		}

		w.hasher.WriteBlock(gb)
	}

	w.inLevel = false
	w.level.reset()

	return nil
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

// Finalize validates outputs and scratchSpace, overwrites the outputs
// region, completes the checksum (levels ‖ outputs ‖ header_tail),
// backpatches the header, and syncs. The Writer must not be used
// afterward.
func (w *Writer) Finalize(scratchSpace uint64, outputs []uint32) (Stats, error) {
	defer w.file.Close()

	if w.inLevel {
		return Stats{}, ErrLevelInProgress
	}

	if uint64(len(outputs)) != w.numOutputs {
		return Stats{}, errors.New("v5b: finalize outputs length does not match the initial num_outputs")
	}

	outputsBytes, maxOutAddr, err := EncodeOutputs(outputs)
	if err != nil {
		return Stats{}, err
	}

	if maxOutAddr > w.maxAddrSeen {
		w.maxAddrSeen = maxOutAddr
	}

	if scratchSpace > MaxAddr {
		return Stats{}, ErrInvalidInput
	}

	if uint64(w.maxAddrSeen) >= scratchSpace {
		return Stats{}, errors.New("v5b: some addresses are >= scratch_space")
	}

	if err := w.flushIOBuffer(); err != nil {
		return Stats{}, err
	}

	if len(outputsBytes) > 0 {
		if _, err := w.file.WriteAt(outputsBytes, int64(w.outputsOffset)); err != nil {
			return Stats{}, err
		}
	}

	h := Header{
		XORGates:      w.xorGates,
		ANDGates:      w.andGates,
		PrimaryInputs: w.primaryInputs,
		ScratchSpace:  scratchSpace,
		NumOutputs:    w.numOutputs,
		NumLevels:     w.numLevels,
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
		ScratchSpace:  scratchSpace,
		NumOutputs:    w.numOutputs,
		NumLevels:     w.numLevels,
		Checksum:      h.Checksum,
	}, nil
}
