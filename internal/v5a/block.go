package v5a

import (
	"fmt"

	"github.com/zk2u/ckt/internal/bitpack"
	"github.com/zk2u/ckt/internal/gate"
)

// Block is a fixed-capacity builder for one 256-gate SoA block. The zero
// value is ready to use.
type Block struct {
	n       int
	in1     [GatesPerBlock]uint64
	in2     [GatesPerBlock]uint64
	out     [GatesPerBlock]uint64
	credits [GatesPerBlock]uint32
	types   [GatesPerBlock]gate.Type
}

// Len reports how many gates are currently buffered.
func (b *Block) Len() int { return b.n }

// Full reports whether the block has reached GatesPerBlock gates.
func (b *Block) Full() bool { return b.n >= GatesPerBlock }

// Push appends a gate, returning ErrInvalidInput if any field overflows its
// declared width. Caller must check Full before calling.
func (b *Block) Push(g Gate) error {
	if b.Full() {
		panic("v5a: push into full block")
	}

	if g.In1 > gate.MaxWireID34 || g.In2 > gate.MaxWireID34 || g.Out > gate.MaxWireID34 {
		return fmt.Errorf("%w: wire id exceeds 34-bit range", ErrInvalidInput)
	}

	if g.Credits > gate.MaxCredits24 {
		return fmt.Errorf("%w: credits exceed 24-bit range", ErrInvalidInput)
	}

	i := b.n
	b.in1[i] = g.In1
	b.in2[i] = g.In2
	b.out[i] = g.Out
	b.credits[i] = g.Credits
	b.types[i] = g.Type
	b.n++

	return nil
}

// Reset clears the block for reuse.
func (b *Block) Reset() { b.n = 0 }

// Encode packs the buffered gates into a BlockSize-byte slice, zero-padding
// unused trailing gate slots.
func (b *Block) Encode(out []byte) {
	if len(out) < BlockSize {
		panic(fmt.Sprintf("v5a: block buffer needs %d bytes, got %d", BlockSize, len(out)))
	}

	clear(out[:BlockSize])

	bitpack.Pack34(b.in1[:b.n], out[in1Offset:in1Offset+wireStreamSize])
	bitpack.Pack34(b.in2[:b.n], out[in2Offset:in2Offset+wireStreamSize])
	bitpack.Pack34(b.out[:b.n], out[outOffset:outOffset+wireStreamSize])
	bitpack.Pack24(b.credits[:b.n], out[creditsOffset:creditsOffset+creditsStreamSize])
	bitpack.PackBitset(b.n, func(i int) bool { return b.types[i] == gate.AND }, out[typesOffset:typesOffset+typesStreamSize])
}

// DecodedBlock holds borrowed SoA arrays for one decoded block, valid until
// the next DecodeBlock call reusing the same buffers.
type DecodedBlock struct {
	N       int
	In1     []uint64
	In2     []uint64
	Out     []uint64
	Credits []uint32
	Types   []bool // false = XOR, true = AND
}

// Scratch holds the arrays DecodeBlock reuses across calls so readers
// don't allocate per block.
type Scratch struct {
	in1     [GatesPerBlock]uint64
	in2     [GatesPerBlock]uint64
	out     [GatesPerBlock]uint64
	credits [GatesPerBlock]uint32
	types   [GatesPerBlock]bool
}

// DecodeBlock unpacks the first n gates (n <= GatesPerBlock) of a
// BlockSize-byte block into scratch, returning views into it.
func DecodeBlock(block []byte, n int, scratch *Scratch) (DecodedBlock, error) {
	if len(block) < BlockSize {
		return DecodedBlock{}, fmt.Errorf("%w: block needs %d bytes, got %d", ErrShortRead, BlockSize, len(block))
	}

	if n > GatesPerBlock {
		return DecodedBlock{}, fmt.Errorf("%w: block can hold at most %d gates, asked for %d", ErrInvalidInput, GatesPerBlock, n)
	}

	bitpack.Unpack34(block[in1Offset:], n, scratch.in1[:n])
	bitpack.Unpack34(block[in2Offset:], n, scratch.in2[:n])
	bitpack.Unpack34(block[outOffset:], n, scratch.out[:n])
	bitpack.Unpack24(block[creditsOffset:], n, scratch.credits[:n])
	bitpack.UnpackBitset(block[typesOffset:], n, scratch.types[:n])

	return DecodedBlock{
		N:       n,
		In1:     scratch.in1[:n],
		In2:     scratch.in2[:n],
		Out:     scratch.out[:n],
		Credits: scratch.credits[:n],
		Types:   scratch.types[:n],
	}, nil
}

// NewScratch allocates the reusable per-block decode scratch space.
func NewScratch() *Scratch { return &Scratch{} }

// Gate returns the i-th gate of d as a gate.V5A value (the convenience AoS
// view spec §4.C.1 calls for).
func (d DecodedBlock) Gate(i int) Gate {
	t := gate.XOR
	if d.Types[i] {
		t = gate.AND
	}

	return Gate{In1: d.In1[i], In2: d.In2[i], Out: d.Out[i], Credits: d.Credits[i], Type: t}
}
