package v5a

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/zk2u/ckt/internal/gate"
)

// Error classification codes. Classify with errors.Is.
var (
	ErrBadMagic     = errors.New("v5a: bad magic")
	ErrBadVersion   = errors.New("v5a: bad version")
	ErrBadFormat    = errors.New("v5a: bad format type")
	ErrReservedSet  = errors.New("v5a: reserved bytes not zero")
	ErrShortRead    = errors.New("v5a: short read")
	ErrInvalidInput = errors.New("v5a: invalid input")
	ErrChecksum     = errors.New("v5a: checksum mismatch")
)

// Header field offsets, mirroring the byte layout in spec §4.C.1.
const (
	offMagic         = 0x00 // [4]byte
	offVersion       = 0x04 // byte
	offFormat        = 0x05 // byte
	offReserved      = 0x06 // [2]byte
	offChecksum      = 0x08 // [32]byte
	offXORGates      = 0x28 // uint64 LE
	offANDGates      = 0x30 // uint64 LE
	offPrimaryInputs = 0x38 // uint64 LE
	offNumOutputs    = 0x40 // uint64 LE
)

// EncodeHeader serializes h into a HeaderSize-byte slice.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)

	copy(buf[offMagic:], Magic[:])
	buf[offVersion] = Version
	buf[offFormat] = FormatType
	copy(buf[offChecksum:], h.Checksum[:])
	binary.LittleEndian.PutUint64(buf[offXORGates:], h.XORGates)
	binary.LittleEndian.PutUint64(buf[offANDGates:], h.ANDGates)
	binary.LittleEndian.PutUint64(buf[offPrimaryInputs:], h.PrimaryInputs)
	binary.LittleEndian.PutUint64(buf[offNumOutputs:], h.NumOutputs)

	return buf
}

// HeaderTail returns the bytes hashed for the checksum's "header_tail"
// component: every header byte after the checksum field.
func HeaderTail(h Header) []byte {
	full := EncodeHeader(h)
	return full[offXORGates:]
}

// DecodeHeader parses and validates a HeaderSize-byte slice.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, got %d", ErrShortRead, HeaderSize, len(buf))
	}

	if [4]byte(buf[offMagic:offMagic+4]) != Magic {
		return Header{}, fmt.Errorf("%w: got %x", ErrBadMagic, buf[offMagic:offMagic+4])
	}

	if buf[offVersion] != Version {
		return Header{}, fmt.Errorf("%w: got %#x", ErrBadVersion, buf[offVersion])
	}

	if buf[offFormat] != FormatType {
		return Header{}, fmt.Errorf("%w: got %#x", ErrBadFormat, buf[offFormat])
	}

	if buf[offReserved] != 0 || buf[offReserved+1] != 0 {
		return Header{}, ErrReservedSet
	}

	var h Header

	copy(h.Checksum[:], buf[offChecksum:offChecksum+32])
	h.XORGates = binary.LittleEndian.Uint64(buf[offXORGates:])
	h.ANDGates = binary.LittleEndian.Uint64(buf[offANDGates:])
	h.PrimaryInputs = binary.LittleEndian.Uint64(buf[offPrimaryInputs:])
	h.NumOutputs = binary.LittleEndian.Uint64(buf[offNumOutputs:])

	return h, nil
}

// EncodeOutputs packs wire ids as num_outputs * 5-byte little-endian
// 34-bit entries. Returns ErrInvalidInput if any id doesn't fit.
func EncodeOutputs(outputs []uint64) ([]byte, error) {
	buf := make([]byte, len(outputs)*outputEntrySize)

	for i, w := range outputs {
		if w > gate.MaxWireID34 {
			return nil, fmt.Errorf("%w: output wire id %d exceeds 34-bit range", ErrInvalidInput, w)
		}

		var le [8]byte
		binary.LittleEndian.PutUint64(le[:], w)
		copy(buf[i*outputEntrySize:], le[:outputEntrySize])
	}

	return buf, nil
}

// DecodeOutputs unpacks n 5-byte little-endian 34-bit entries.
func DecodeOutputs(buf []byte, n int) ([]uint64, error) {
	need := n * outputEntrySize
	if len(buf) < need {
		return nil, fmt.Errorf("%w: outputs need %d bytes, got %d", ErrShortRead, need, len(buf))
	}

	out := make([]uint64, n)

	for i := range n {
		var le [8]byte
		copy(le[:outputEntrySize], buf[i*outputEntrySize:(i+1)*outputEntrySize])
		out[i] = binary.LittleEndian.Uint64(le[:])
	}

	return out, nil
}
