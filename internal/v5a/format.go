// Package v5a implements the v5a container: 34-bit-wire-id gates in
// append-ordered 4064-byte Structure-of-Arrays blocks of 256 gates each,
// behind a streaming, checksummed writer/reader pair.
package v5a

import "github.com/zk2u/ckt/internal/gate"

// Magic is the four-byte file identifier every v5 container (a/b/c)
// shares.
var Magic = [4]byte{0x5A, 0x6B, 0x32, 0x75} // "Zk2u"

// Version is the only version byte this package understands.
const Version = 0x05

// FormatType identifies v5a among the v5 family.
const FormatType = 0x00

const (
	// HeaderSize is the fixed 72-byte v5a header.
	HeaderSize = 72

	// GatesPerBlock is the number of gates packed into one block.
	GatesPerBlock = 256

	// wireStreamSize is the packed byte size of one 256-entry 34-bit stream.
	wireStreamSize = 1088 // ceil(256*34/8)

	// creditsStreamSize is the packed byte size of the 256-entry 24-bit
	// credits stream.
	creditsStreamSize = 768 // 256*24/8

	// typesStreamSize is the packed byte size of the 256-bit gate-type
	// bitmap.
	typesStreamSize = 32 // 256/8

	// BlockSize is the total size of one v5a block.
	BlockSize = wireStreamSize*3 + creditsStreamSize + typesStreamSize // 4064

	// outputEntrySize is the packed byte size of one output wire id.
	outputEntrySize = 5
)

const (
	in1Offset     = 0
	in2Offset     = in1Offset + wireStreamSize
	outOffset     = in2Offset + wireStreamSize
	creditsOffset = outOffset + wireStreamSize
	typesOffset   = creditsOffset + creditsStreamSize
)

// Header is the decoded 72-byte v5a header.
type Header struct {
	Checksum      [32]byte
	XORGates      uint64
	ANDGates      uint64
	PrimaryInputs uint64
	NumOutputs    uint64
}

// TotalGates returns the declared gate count, the authoritative bound on
// block iteration (the final block may be zero-padded past it).
func (h Header) TotalGates() uint64 {
	return h.XORGates + h.ANDGates
}

// Gate is an alias for the shared 34-bit-wire-id gate shape, kept local so
// callers of this package don't need to import internal/gate for the
// common case.
type Gate = gate.V5A
