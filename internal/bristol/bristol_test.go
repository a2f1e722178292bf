package bristol_test

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zk2u/ckt/internal/bristol"
	"github.com/zk2u/ckt/internal/gate"
)

func TestParseLine(t *testing.T) {
	g, blank, err := bristol.ParseLine("2 1 2 3 4 XOR")
	require.NoError(t, err)
	require.False(t, blank)
	require.Equal(t, bristol.Gate{In1: 2, In2: 3, Out: 4, Type: gate.XOR}, g)

	_, blank, err = bristol.ParseLine("   ")
	require.NoError(t, err)
	require.True(t, blank)

	_, _, err = bristol.ParseLine("2 1 2 3 4 NOT")
	require.ErrorIs(t, err, bristol.ErrBadGateType)

	_, _, err = bristol.ParseLine("2 1 2 3 4")
	require.ErrorIs(t, err, bristol.ErrBadLine)

	_, _, err = bristol.ParseLine("2 1 abc 3 4 AND")
	require.ErrorIs(t, err, bristol.ErrWireID)
}

func TestReadAll_SkipsBlankLines(t *testing.T) {
	input := "2 1 2 3 4 XOR\n\n2 1 4 2 5 AND\n   \n"

	gates, err := bristol.ReadAll(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, []bristol.Gate{
		{In1: 2, In2: 3, Out: 4, Type: gate.XOR},
		{In1: 4, In2: 2, Out: 5, Type: gate.AND},
	}, gates)
}

// XOR(2,3)->10, credits=2; AND(2,10)->11, credits=1; XOR(10,11)->12,
// credits=0 (never consumed: the circuit output).
func TestFanoutAndOutputs(t *testing.T) {
	gates := []bristol.Gate{
		{In1: 2, In2: 3, Out: 10, Type: gate.XOR},
		{In1: 2, In2: 10, Out: 11, Type: gate.AND},
		{In1: 10, In2: 11, Out: 12, Type: gate.XOR},
	}

	fanout := bristol.Fanout(gates)
	require.Equal(t, uint32(2), fanout[10])
	require.Equal(t, uint32(1), fanout[11])
	require.Equal(t, uint32(0), fanout[12])

	require.Equal(t, []uint64{12}, bristol.Outputs(gates, fanout))
}

func TestPrimaryInputs(t *testing.T) {
	// wires 2,3 are primary inputs (never produced); 10,11 are gate outputs.
	gates := []bristol.Gate{
		{In1: 2, In2: 3, Out: 10, Type: gate.XOR},
		{In1: 2, In2: 10, Out: 11, Type: gate.AND},
	}

	require.Equal(t, uint64(2), bristol.PrimaryInputs(gates))
}

func TestWriteAll_RoundTrip(t *testing.T) {
	want := []bristol.Gate{
		{In1: 2, In2: 3, Out: 10, Type: gate.XOR},
		{In1: 2, In2: 10, Out: 11, Type: gate.AND},
	}

	path := filepath.Join(t.TempDir(), "out.bristol")

	i := 0
	err := bristol.WriteAll(path, func() (bristol.Gate, error) {
		if i >= len(want) {
			return bristol.Gate{}, io.EOF
		}

		g := want[i]
		i++

		return g, nil
	})
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := bristol.ReadAll(f)
	require.NoError(t, err)
	require.Equal(t, want, got)
}
