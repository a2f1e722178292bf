package v5b

import "github.com/zk2u/ckt/internal/gate"

// levelBuilder buffers one level's gates, keeping XOR and AND separate so
// they can be written XORs-first regardless of the order add_gate saw them.
type levelBuilder struct {
	xors []Gate
	ands []Gate

	maxAddrSeen uint32
}

func (b *levelBuilder) addGate(t gate.Type, g Gate) {
	if g.In1 > b.maxAddrSeen {
		b.maxAddrSeen = g.In1
	}

	if g.In2 > b.maxAddrSeen {
		b.maxAddrSeen = g.In2
	}

	if g.Out > b.maxAddrSeen {
		b.maxAddrSeen = g.Out
	}

	if t == gate.AND {
		b.ands = append(b.ands, g)
	} else {
		b.xors = append(b.xors, g)
	}
}

func (b *levelBuilder) numXOR() uint32 { return uint32(len(b.xors)) }
func (b *levelBuilder) numAND() uint32 { return uint32(len(b.ands)) }

func (b *levelBuilder) reset() {
	b.xors = b.xors[:0]
	b.ands = b.ands[:0]
	b.maxAddrSeen = 0
}
