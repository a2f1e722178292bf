// Package v5c implements the v5c container: a flat, execution-ordered AoS
// gate stream, bit-packed gate types, and fixed 256 KiB section alignment
// (header, outputs, and every block each occupy a whole number of 256 KiB
// sections) chosen to fit a block plus its garbling working set in a
// typical 1 MiB L2 cache.
package v5c

import "github.com/zk2u/ckt/internal/gate"

// Magic is the shared v5 magic, "Zk2u".
var Magic = [4]byte{0x5A, 0x6B, 0x32, 0x75}

// NKAS is v5c's secondary magic, "nkas".
var NKAS = [4]byte{0x6E, 0x6B, 0x61, 0x73}

// Version is the only version byte this package understands.
const Version = 0x05

// FormatType identifies v5c among the v5 family.
const FormatType = 0x02

const (
	// Alignment is the section size every region (header, outputs,
	// blocks) is padded up to.
	Alignment = 256 * 1024

	// BlockSize equals Alignment: a block is exactly one section.
	BlockSize = Alignment

	// GatesPerBlock is the number of 12-byte gates that, plus their
	// bit-packed types and one byte of padding, exactly fill BlockSize.
	GatesPerBlock = 21_620

	gateSize = 12

	gatesSize = GatesPerBlock * gateSize // 259,440

	// typesSize is GatesPerBlock bits, rounded up to a byte.
	typesSize = (GatesPerBlock + 7) / 8 // 2,703

	typesOffset = gatesSize

	blockPadding = BlockSize - gatesSize - typesSize // 1

	// HeaderSize is the packed (unpadded) header; the on-disk header
	// region is padded up to Alignment.
	HeaderSize = 88

	outputEntrySize = 4

	// MaxAddr is the exclusive upper bound on a 32-bit scratch address.
	MaxAddr = uint64(1) << 32
)

// PaddedSize rounds size up to the next multiple of Alignment.
func PaddedSize(size int) int {
	if size <= 0 {
		return 0
	}

	return (size + Alignment - 1) / Alignment * Alignment
}

// Header is the decoded 88-byte v5c header (stored padded to Alignment).
type Header struct {
	Checksum      [32]byte
	XORGates      uint64
	ANDGates      uint64
	PrimaryInputs uint64
	ScratchSpace  uint64
	NumOutputs    uint64
}

// TotalGates returns the declared gate count.
func (h Header) TotalGates() uint64 { return h.XORGates + h.ANDGates }

// Gate is the flat AoS gate shape v5c stores: three raw 32-bit scratch
// addresses in execution order, with type recorded separately in the
// block's bit-packed types section.
type Gate = gate.V5C
