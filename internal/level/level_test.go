package level_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zk2u/ckt/internal/gate"
	"github.com/zk2u/ckt/internal/level"
)

func drainReady(t *testing.T, e *level.Engine) []*level.Level {
	t.Helper()

	var out []*level.Level

	for {
		lvl, err := e.TakeLevel()
		require.NoError(t, err)

		if lvl == nil {
			break
		}

		out = append(out, lvl)
	}

	return out
}

// primary inputs are wires 2,3; wire 10 = in2 XOR in3; wire 11 = wire10 AND in2.
func TestLevelling_SimpleChain(t *testing.T) {
	e := level.New(2)

	require.NoError(t, e.AddGate(gate.V5A{In1: 10, In2: 2, Out: 11, Credits: 0, Type: gate.AND}))
	require.NoError(t, e.AddGate(gate.V5A{In1: 2, In2: 3, Out: 10, Credits: 1, Type: gate.XOR}))

	// Taking level 1 announces wire 10, which re-drives the waiting AND
	// gate, so level 2 is already pending within the same drain.
	levels := drainReady(t, e)
	require.Len(t, levels, 2)
	require.Equal(t, uint32(1), levels[0].ID)
	require.Len(t, levels[0].XOR, 1)
	require.Empty(t, levels[0].AND)
	require.Equal(t, uint64(10), levels[0].XOR[0].Out)

	require.Equal(t, uint32(2), levels[1].ID)
	require.Len(t, levels[1].AND, 1)
	require.Equal(t, uint64(11), levels[1].AND[0].Out)

	require.Empty(t, drainReady(t, e))
	require.True(t, e.Idle())
}

func TestLevelling_XORBeforeAND_SameLevel(t *testing.T) {
	e := level.New(2)

	require.NoError(t, e.AddGate(gate.V5A{In1: 2, In2: 3, Out: 10, Credits: 0, Type: gate.AND}))
	require.NoError(t, e.AddGate(gate.V5A{In1: 2, In2: 3, Out: 11, Credits: 0, Type: gate.XOR}))

	levels := drainReady(t, e)
	require.Len(t, levels, 1)
	require.Len(t, levels[0].XOR, 1)
	require.Len(t, levels[0].AND, 1)
	require.Equal(t, uint64(11), levels[0].XOR[0].Out)
	require.Equal(t, uint64(10), levels[0].AND[0].Out)
}

func TestLevelling_GateAddedBeforeEitherInputReady(t *testing.T) {
	e := level.New(2)

	// wire 20 depends on 10 and 11, both still pending.
	require.NoError(t, e.AddGate(gate.V5A{In1: 10, In2: 11, Out: 20, Credits: 0, Type: gate.XOR}))
	require.Nil(t, drainReadyOne(t, e))

	require.NoError(t, e.AddGate(gate.V5A{In1: 2, In2: 3, Out: 10, Credits: 1, Type: gate.XOR}))
	lvl := drainReadyOne(t, e)
	require.NotNil(t, lvl)
	require.Equal(t, uint64(10), lvl.XOR[0].Out)

	require.Nil(t, drainReadyOne(t, e)) // 20 still waiting on 11

	require.NoError(t, e.AddGate(gate.V5A{In1: 2, In2: 3, Out: 11, Credits: 1, Type: gate.XOR}))
	lvl = drainReadyOne(t, e)
	require.NotNil(t, lvl)
	require.Equal(t, uint64(11), lvl.XOR[0].Out)

	lvl = drainReadyOne(t, e)
	require.NotNil(t, lvl)
	require.Equal(t, uint64(20), lvl.XOR[0].Out)

	require.True(t, e.Idle())
}

func drainReadyOne(t *testing.T, e *level.Engine) *level.Level {
	t.Helper()

	lvl, err := e.TakeLevel()
	require.NoError(t, err)

	return lvl
}

func TestLevelling_DuplicateAddIsNoOp(t *testing.T) {
	e := level.New(2)

	require.NoError(t, e.AddGate(gate.V5A{In1: 2, In2: 3, Out: 10, Credits: 0, Type: gate.XOR}))
	require.NoError(t, e.AddGate(gate.V5A{In1: 2, In2: 3, Out: 10, Credits: 0, Type: gate.XOR}))

	lvl, err := e.TakeLevel()
	require.NoError(t, err)
	require.Len(t, lvl.XOR, 1)
}

func TestLevelling_RepeatedOutputIsFatal(t *testing.T) {
	e := level.New(2)

	require.NoError(t, e.AddGate(gate.V5A{In1: 2, In2: 3, Out: 10, Credits: 0, Type: gate.XOR}))
	_, err := e.TakeLevel()
	require.NoError(t, err)

	require.NoError(t, e.AddGate(gate.V5A{In1: 2, In2: 3, Out: 10, Credits: 0, Type: gate.AND}))
	_, err = e.TakeLevel()
	require.ErrorIs(t, err, level.ErrRepeatedOutput)
}

func TestLevelling_CreditUnderflowIsFatal(t *testing.T) {
	e := level.New(2)

	require.NoError(t, e.AddGate(gate.V5A{In1: 2, In2: 3, Out: 10, Credits: 0, Type: gate.XOR}))
	_, err := e.TakeLevel()
	require.NoError(t, err)

	// wire 10 has 0 credits (preserved output), so any gate consuming it
	// underflows as soon as both its inputs are available, inside AddGate,
	// and is never scheduled.
	require.ErrorIs(t, e.AddGate(gate.V5A{In1: 10, In2: 2, Out: 11, Credits: 0, Type: gate.XOR}), level.ErrCreditUnderflow)
	require.ErrorIs(t, e.AddGate(gate.V5A{In1: 10, In2: 3, Out: 12, Credits: 0, Type: gate.XOR}), level.ErrCreditUnderflow)

	lvl, err := e.TakeLevel()
	require.NoError(t, err)
	require.Nil(t, lvl)
}
