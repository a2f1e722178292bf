package v5c

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Error classification codes. Classify with errors.Is.
var (
	ErrBadMagic     = errors.New("v5c: bad magic")
	ErrBadVersion   = errors.New("v5c: bad version")
	ErrBadFormat    = errors.New("v5c: bad format type")
	ErrBadNKAS      = errors.New("v5c: bad secondary magic")
	ErrReservedSet  = errors.New("v5c: reserved bytes not zero")
	ErrShortRead    = errors.New("v5c: short read")
	ErrInvalidInput = errors.New("v5c: invalid input")
	ErrChecksum     = errors.New("v5c: checksum mismatch")
)

// Header field offsets within the packed (unpadded) HeaderSize bytes.
const (
	offMagic         = 0x00 // [4]byte
	offVersion       = 0x04 // byte
	offFormat        = 0x05 // byte
	offNKAS          = 0x06 // [4]byte
	offChecksum      = 0x0A // [32]byte
	offXORGates      = 0x2A // uint64 LE
	offANDGates      = 0x32 // uint64 LE
	offPrimaryInputs = 0x3A // uint64 LE
	offScratchSpace  = 0x42 // uint64 LE
	offNumOutputs    = 0x4A // uint64 LE
	offReserved2     = 0x52 // [6]byte
)

// EncodeHeader serializes h into a HeaderSize-byte slice (unpadded; callers
// writing to disk pad the region up to Alignment separately).
func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)

	copy(buf[offMagic:], Magic[:])
	buf[offVersion] = Version
	buf[offFormat] = FormatType
	copy(buf[offNKAS:], NKAS[:])
	copy(buf[offChecksum:], h.Checksum[:])
	binary.LittleEndian.PutUint64(buf[offXORGates:], h.XORGates)
	binary.LittleEndian.PutUint64(buf[offANDGates:], h.ANDGates)
	binary.LittleEndian.PutUint64(buf[offPrimaryInputs:], h.PrimaryInputs)
	binary.LittleEndian.PutUint64(buf[offScratchSpace:], h.ScratchSpace)
	binary.LittleEndian.PutUint64(buf[offNumOutputs:], h.NumOutputs)

	return buf
}

// ChecksumParts returns the two header byte ranges the checksum covers:
// everything before the checksum field, and everything after it up to
// HeaderSize. The checksum field itself is never hashed.
func ChecksumParts(h Header) (before, after []byte) {
	full := EncodeHeader(h)
	return full[:offChecksum], full[offChecksum+32:]
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

	if [4]byte(buf[offNKAS:offNKAS+4]) != NKAS {
		return Header{}, fmt.Errorf("%w: got %x", ErrBadNKAS, buf[offNKAS:offNKAS+4])
	}

	for _, b := range buf[offReserved2 : offReserved2+6] {
		if b != 0 {
			return Header{}, ErrReservedSet
		}
	}

	var h Header

	copy(h.Checksum[:], buf[offChecksum:offChecksum+32])
	h.XORGates = binary.LittleEndian.Uint64(buf[offXORGates:])
	h.ANDGates = binary.LittleEndian.Uint64(buf[offANDGates:])
	h.PrimaryInputs = binary.LittleEndian.Uint64(buf[offPrimaryInputs:])
	h.ScratchSpace = binary.LittleEndian.Uint64(buf[offScratchSpace:])
	h.NumOutputs = binary.LittleEndian.Uint64(buf[offNumOutputs:])

	if h.ScratchSpace > MaxAddr {
		return Header{}, fmt.Errorf("%w: scratch_space exceeds max addressable memory", ErrInvalidInput)
	}

	return h, nil
}

func validateAddr(addr uint32) error {
	if uint64(addr) >= MaxAddr {
		return fmt.Errorf("%w: address %d exceeds addressable memory", ErrInvalidInput, addr)
	}

	return nil
}

// EncodeOutputs packs addresses as num_outputs 4-byte little-endian u32
// entries, returning the encoded bytes and the max address seen.
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

// setGateType sets bit index in a GatesPerBlock-bit, byte-packed array: 1
// for AND, 0 for XOR.
func setGateType(types []byte, index int, isAND bool) {
	byteIdx, bitIdx := index/8, uint(index%8)
	if isAND {
		types[byteIdx] |= 1 << bitIdx
	} else {
		types[byteIdx] &^= 1 << bitIdx
	}
}

// getGateType reports whether gate index is an AND gate.
func getGateType(types []byte, index int) bool {
	byteIdx, bitIdx := index/8, uint(index%8)
	return (types[byteIdx]>>bitIdx)&1 != 0
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
