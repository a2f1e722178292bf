// Package ckthash computes the checksum every v5 container carries: a
// single BLAKE3 hash over the block region, then the outputs vector, then
// every header byte after the checksum field itself. Writers stream the
// block-region bytes into it as they're emitted and only add the remaining
// two pieces at finalize, so hashing never needs a second pass over the
// file.
package ckthash

import (
	"hash"

	"lukechampine.com/blake3"
)

// Size is the length in bytes of a checksum (BLAKE3's default output size).
const Size = 32

// Hasher accumulates the three regions in the required order. The zero
// value is not usable; use New.
type Hasher struct {
	h hash.Hash
}

// New returns a Hasher ready to receive block-region bytes.
func New() *Hasher {
	return &Hasher{h: blake3.New(Size, nil)}
}

// WriteBlock feeds a slice of the block region. Call it once per emitted
// block, in file order, as the writer streams blocks to disk.
func (h *Hasher) WriteBlock(p []byte) {
	h.h.Write(p) //nolint:errcheck // hash.Hash.Write never errors
}

// Sum hashes outputs and headerTail (every header byte after the checksum
// field) and returns the final 32-byte digest. The Hasher must not be used
// afterward.
func (h *Hasher) Sum(outputs, headerTail []byte) [Size]byte {
	h.h.Write(outputs)    //nolint:errcheck
	h.h.Write(headerTail) //nolint:errcheck

	var out [Size]byte
	copy(out[:], h.h.Sum(nil))

	return out
}

// Verify hashes the three regions in one pass, as a standalone verifier
// does (no streaming writer state available). It's the spec's "independent
// pass" recomputation: equal output means the file is intact.
func Verify(blocks, outputs, headerTail []byte) [Size]byte {
	h := New()
	h.WriteBlock(blocks)

	return h.Sum(outputs, headerTail)
}
