// Package bitpack packs and unpacks sequences of fixed-width little-endian
// integer fields tightly into byte streams, with no inter-field padding.
// The container formats use it for 34-bit wire ids (v5a) and 24-bit credits
// (v5a); v5b/v5c use whole bytes and don't need it.
//
// Two code paths exist: a scalar path (always available) and an amd64
// vectorized path selected at runtime by CPU feature detection. Both must
// agree on every input — see covariance_test.go.
package bitpack

import "fmt"

// Pack34 writes len(values) 34-bit fields into out, LSB-first within each
// field, fields concatenated starting at bit 0 of out[0]. out must be
// zero-initialized and at least Bytes34(len(values)) bytes; unaligned writes
// OR into existing bytes, so a dirty buffer corrupts adjacent fields.
// Values are masked to 34 bits before packing.
func Pack34(values []uint64, out []byte) {
	if HasVectorSupport() {
		pack34Vector(values, out)
		return
	}

	pack34Scalar(values, out)
}

// Unpack34 reads the first n*34 bits of in and writes n values to out.
func Unpack34(in []byte, n int, out []uint64) {
	if HasVectorSupport() {
		unpack34Vector(in, n, out)
		return
	}

	unpack34Scalar(in, n, out)
}

// Pack24 writes len(values) 24-bit fields into out. See Pack34 for the
// packing contract; values are masked to 24 bits.
func Pack24(values []uint32, out []byte) {
	if HasVectorSupport() {
		pack24Vector(values, out)
		return
	}

	pack24Scalar(values, out)
}

// Unpack24 reads the first n*24 bits of in and writes n values to out.
func Unpack24(in []byte, n int, out []uint32) {
	if HasVectorSupport() {
		unpack24Vector(in, n, out)
		return
	}

	unpack24Scalar(in, n, out)
}

// Bytes34 returns the number of bytes needed to hold n 34-bit fields.
func Bytes34(n int) int {
	return (n*34 + 7) / 8
}

// Bytes24 returns the number of bytes needed to hold n 24-bit fields.
func Bytes24(n int) int {
	return (n*24 + 7) / 8
}

const (
	mask34 = (1 << 34) - 1
	mask24 = (1 << 24) - 1
)

func pack34Scalar(values []uint64, out []byte) {
	bitOff := 0

	for _, raw := range values {
		v := raw & mask34
		byteOff := bitOff / 8
		shift := uint(bitOff % 8)

		shifted := v << shift
		out[byteOff] |= byte(shifted)
		out[byteOff+1] |= byte(shifted >> 8)
		out[byteOff+2] |= byte(shifted >> 16)
		out[byteOff+3] |= byte(shifted >> 24)
		out[byteOff+4] |= byte(shifted >> 32)

		if sixth := byte(shifted >> 40); sixth != 0 {
			out[byteOff+5] |= sixth
		}

		bitOff += 34
	}
}

func unpack34Scalar(in []byte, n int, out []uint64) {
	bitOff := 0

	for i := range n {
		byteOff := bitOff / 8
		shift := uint(bitOff % 8)

		var buf [8]byte

		toCopy := min(len(in)-byteOff, 8)
		if toCopy > 0 {
			copy(buf[:toCopy], in[byteOff:byteOff+toCopy])
		}

		v := le64(buf[:])
		out[i] = (v >> shift) & mask34

		bitOff += 34
	}
}

func pack24Scalar(values []uint32, out []byte) {
	bitOff := 0

	for _, raw := range values {
		v := raw & mask24
		byteOff := bitOff / 8
		shift := uint(bitOff % 8)

		shifted := v << shift
		out[byteOff] |= byte(shifted)
		out[byteOff+1] |= byte(shifted >> 8)
		out[byteOff+2] |= byte(shifted >> 16)

		if fourth := byte(shifted >> 24); fourth != 0 {
			out[byteOff+3] |= fourth
		}

		bitOff += 24
	}
}

func unpack24Scalar(in []byte, n int, out []uint32) {
	bitOff := 0

	for i := range n {
		byteOff := bitOff / 8
		shift := uint(bitOff % 8)

		var buf [4]byte

		toCopy := min(len(in)-byteOff, 4)
		if toCopy > 0 {
			copy(buf[:toCopy], in[byteOff:byteOff+toCopy])
		}

		v := le32(buf[:])
		out[i] = (v >> shift) & mask24

		bitOff += 24
	}
}

func le64(b []byte) uint64 {
	_ = b[7]
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

func le32(b []byte) uint32 {
	_ = b[3]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// PackBitset packs one bit per entry (bit i%8 of byte i/8 is set iff
// typeOf(i) is true), matching the v5a/v5c gate-type bitmap layout: byte 0
// bit 0 is gate 0, etc. Scalar only — the spec notes the volume is too small
// to justify a vector path.
func PackBitset(n int, typeOf func(i int) bool, out []byte) {
	need := (n + 7) / 8
	if len(out) < need {
		panic(fmt.Sprintf("bitpack: PackBitset needs %d bytes, got %d", need, len(out)))
	}

	for i := range n {
		if typeOf(i) {
			out[i/8] |= 1 << uint(i%8)
		}
	}
}

// UnpackBitset reports, for each of the first n gates, whether its type bit
// is set.
func UnpackBitset(in []byte, n int, out []bool) {
	for i := range n {
		out[i] = (in[i/8]>>uint(i%8))&1 != 0
	}
}
