package v5c

// Block buffers up to GatesPerBlock gates in execution order plus their
// bit-packed types, ready to encode to a full BlockSize byte buffer.
type Block struct {
	n     int
	gates [GatesPerBlock]Gate
	types [typesSize]byte
}

// Len returns the number of gates currently buffered.
func (b *Block) Len() int { return b.n }

// Full reports whether the block has reached GatesPerBlock gates.
func (b *Block) Full() bool { return b.n >= GatesPerBlock }

// Push appends one gate. The caller must check Full first.
func (b *Block) Push(g Gate, isAND bool) {
	b.gates[b.n] = g
	setGateType(b.types[:], b.n, isAND)
	b.n++
}

// Reset clears the block for reuse.
func (b *Block) Reset() {
	b.n = 0

	for i := range b.types {
		b.types[i] = 0
	}
}

// Encode writes the full BlockSize-byte on-disk representation: every
// gate slot (buffered gates, then zeroed padding out to GatesPerBlock),
// the types bitset, and one byte of block padding. Unused gate slots
// always encode as zero, matching what a zeroed buffer flushed with fewer
// than GatesPerBlock gates would produce.
func (b *Block) Encode(out []byte) {
	for i := range out {
		out[i] = 0
	}

	for i := 0; i < b.n; i++ {
		copy(out[i*gateSize:], encodeGate(b.gates[i]))
	}

	copy(out[typesOffset:], b.types[:])
}

// DecodedBlock is a read-side view of one decoded block.
type DecodedBlock struct {
	N     int
	Gates []Gate
	IsAND []bool
}

// Scratch holds reusable backing arrays for DecodeBlock, avoiding a fresh
// allocation per block.
type Scratch struct {
	gates [GatesPerBlock]Gate
	isAND [GatesPerBlock]bool
}

// NewScratch returns a ready-to-use Scratch.
func NewScratch() *Scratch { return &Scratch{} }

// DecodeBlock decodes a BlockSize-byte block, reading out only the first n
// gates (the rest is padding). The returned DecodedBlock's slices alias
// scratch and are valid only until the next DecodeBlock call using it.
func DecodeBlock(block []byte, n int, scratch *Scratch) (DecodedBlock, error) {
	if len(block) < BlockSize {
		return DecodedBlock{}, ErrShortRead
	}

	if n > GatesPerBlock {
		return DecodedBlock{}, ErrInvalidInput
	}

	types := block[typesOffset : typesOffset+typesSize]

	for i := 0; i < n; i++ {
		scratch.gates[i] = decodeGate(block[i*gateSize:])
		scratch.isAND[i] = getGateType(types, i)
	}

	return DecodedBlock{
		N:     n,
		Gates: scratch.gates[:n],
		IsAND: scratch.isAND[:n],
	}, nil
}
