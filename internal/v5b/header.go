package v5b

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Error classification codes. Classify with errors.Is.
var (
	ErrBadMagic     = errors.New("v5b: bad magic")
	ErrBadVersion   = errors.New("v5b: bad version")
	ErrBadFormat    = errors.New("v5b: bad format type")
	ErrReservedSet  = errors.New("v5b: reserved bytes not zero")
	ErrShortRead    = errors.New("v5b: short read")
	ErrInvalidInput = errors.New("v5b: invalid input")
	ErrChecksum     = errors.New("v5b: checksum mismatch")
)

// Header field offsets, mirroring the byte layout in spec §4.C.2.
const (
	offMagic         = 0x00 // [4]byte
	offVersion       = 0x04 // byte
	offFormat        = 0x05 // byte
	offReserved      = 0x06 // [2]byte
	offChecksum      = 0x08 // [32]byte
	offXORGates      = 0x28 // uint64 LE
	offANDGates      = 0x30 // uint64 LE
	offPrimaryInputs = 0x38 // uint64 LE
	offScratchSpace  = 0x40 // uint64 LE
	offNumOutputs    = 0x48 // uint64 LE
	offNumLevels     = 0x50 // uint32 LE
	offReserved2     = 0x54 // [4]byte
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
	binary.LittleEndian.PutUint64(buf[offScratchSpace:], h.ScratchSpace)
	binary.LittleEndian.PutUint64(buf[offNumOutputs:], h.NumOutputs)
	binary.LittleEndian.PutUint32(buf[offNumLevels:], h.NumLevels)

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

	if binary.LittleEndian.Uint32(buf[offReserved2:]) != 0 {
		return Header{}, ErrReservedSet
	}

	var h Header

	copy(h.Checksum[:], buf[offChecksum:offChecksum+32])
	h.XORGates = binary.LittleEndian.Uint64(buf[offXORGates:])
	h.ANDGates = binary.LittleEndian.Uint64(buf[offANDGates:])
	h.PrimaryInputs = binary.LittleEndian.Uint64(buf[offPrimaryInputs:])
	h.ScratchSpace = binary.LittleEndian.Uint64(buf[offScratchSpace:])
	h.NumOutputs = binary.LittleEndian.Uint64(buf[offNumOutputs:])
	h.NumLevels = binary.LittleEndian.Uint32(buf[offNumLevels:])

	return h, nil
}

func validateAddr(addr uint32) error {
	if uint64(addr) >= MaxAddr {
		return fmt.Errorf("%w: address %d exceeds scratch space", ErrInvalidInput, addr)
	}

	return nil
}

// EncodeOutputs packs addresses as num_outputs 4-byte little-endian u32
// entries, returning the encoded bytes and the max address seen (for
// scratch_space validation at Finalize).
func EncodeOutputs(outputs []uint32) ([]byte, uint32, error) {
	buf := make([]byte, len(outputs)*outputEntrySize)

	var maxAddr uint32

	for i, addr := range outputs {
		if err := validateAddr(addr); err != nil {
			return nil, 0, err
		}

		binary.LittleEndian.PutUint32(buf[i*outputEntrySize:], addr)

		if addr > maxAddr {
			maxAddr = addr
		}
	}

	return buf, maxAddr, nil
}

// DecodeOutputs unpacks n 4-byte little-endian u32 entries.
func DecodeOutputs(buf []byte, n int) ([]uint32, error) {
	need := n * outputEntrySize
	if len(buf) < need {
		return nil, fmt.Errorf("%w: outputs need %d bytes, got %d", ErrShortRead, need, len(buf))
	}

	out := make([]uint32, n)
	for i := range n {
		out[i] = binary.LittleEndian.Uint32(buf[i*outputEntrySize:])
	}

	return out, nil
}

// encodeLevelHeader serializes a LevelHeader to levelHeaderSize bytes.
func encodeLevelHeader(l LevelHeader) []byte {
	buf := make([]byte, levelHeaderSize)
	binary.LittleEndian.PutUint32(buf, l.NumXOR)
	binary.LittleEndian.PutUint32(buf[4:], l.NumAND)

	return buf
}

// decodeLevelHeader parses a levelHeaderSize-byte slice.
func decodeLevelHeader(buf []byte) (LevelHeader, error) {
	if len(buf) < levelHeaderSize {
		return LevelHeader{}, fmt.Errorf("%w: level header needs %d bytes, got %d", ErrShortRead, levelHeaderSize, len(buf))
	}

	return LevelHeader{
		NumXOR: binary.LittleEndian.Uint32(buf),
		NumAND: binary.LittleEndian.Uint32(buf[4:]),
	}, nil
}

// encodeGate serializes a Gate to gateSize bytes: in1, in2, out as LE u32s.
func encodeGate(g Gate) []byte {
	buf := make([]byte, gateSize)
	binary.LittleEndian.PutUint32(buf, g.In1)
	binary.LittleEndian.PutUint32(buf[4:], g.In2)
	binary.LittleEndian.PutUint32(buf[8:], g.Out)

	return buf
}

// decodeGate parses a gateSize-byte slice.
func decodeGate(buf []byte) Gate {
	return Gate{
		In1: binary.LittleEndian.Uint32(buf),
		In2: binary.LittleEndian.Uint32(buf[4:]),
		Out: binary.LittleEndian.Uint32(buf[8:]),
	}
}
