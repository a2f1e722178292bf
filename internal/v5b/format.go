// Package v5b implements the v5b container: 32-bit scratch-arena
// addresses, AoS gates framed into explicit levels (XOR gates before AND
// gates within each level), no fixed block size.
package v5b

import "github.com/zk2u/ckt/internal/gate"

// Magic is the shared v5 magic, "Zk2u".
var Magic = [4]byte{0x5A, 0x6B, 0x32, 0x75}

// Version is the only version byte this package understands.
const Version = 0x05

// FormatType identifies v5b among the v5 family.
const FormatType = 0x01

const (
	// HeaderSize is the fixed 88-byte v5b header.
	HeaderSize = 88

	// gateSize is the AoS byte size of one gate: 3 little-endian uint32s.
	gateSize = 12

	// levelHeaderSize is the byte size of a level's (num_xor, num_and)
	// framing header.
	levelHeaderSize = 8

	// outputEntrySize is the packed byte size of one output address.
	outputEntrySize = 4

	// MaxAddr is the exclusive upper bound on a 32-bit scratch address.
	MaxAddr = uint64(1) << 32
)

// Header is the decoded 88-byte v5b header.
type Header struct {
	Checksum      [32]byte
	XORGates      uint64
	ANDGates      uint64
	PrimaryInputs uint64
	ScratchSpace  uint64
	NumOutputs    uint64
	NumLevels     uint32
}

// TotalGates returns the declared gate count.
func (h Header) TotalGates() uint64 { return h.XORGates + h.ANDGates }

// Gate is the shared 32-bit-address AoS gate shape.
type Gate = gate.V5B

// LevelHeader frames one level's gate counts.
type LevelHeader struct {
	NumXOR uint32
	NumAND uint32
}

// NumGates returns NumXOR + NumAND.
func (l LevelHeader) NumGates() uint32 { return l.NumXOR + l.NumAND }
