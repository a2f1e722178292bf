package v5c_test

import (
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zk2u/ckt/internal/gate"
	"github.com/zk2u/ckt/internal/v5c"
	"github.com/zk2u/ckt/pkg/fs"
)

func randGate(r *rand.Rand, maxAddr uint32) v5c.Gate {
	return v5c.Gate{
		In1: uint32(r.Intn(int(maxAddr))),
		In2: uint32(r.Intn(int(maxAddr))),
		Out: uint32(r.Intn(int(maxAddr))),
	}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	fsys := fs.NewReal()
	path := filepath.Join(t.TempDir(), "circuit.v5c")

	r := rand.New(rand.NewSource(31))

	const numGates = 50_000 // spans multiple blocks, including a partial one
	const primaryInputs = 8
	const scratchSpace = 1 << 20

	outputs := []uint32{1, 2, 3, 999}

	w, err := v5c.Create(fsys, path, primaryInputs, uint64(len(outputs)))
	require.NoError(t, err)

	type wantGate struct {
		g     v5c.Gate
		isAND bool
	}

	want := make([]wantGate, numGates)

	for i := 0; i < numGates; i++ {
		g := randGate(r, scratchSpace)
		gt := gate.XOR

		if r.Intn(2) == 1 {
			gt = gate.AND
		}

		require.NoError(t, w.WriteGate(g, gt))
		want[i] = wantGate{g: g, isAND: gt == gate.AND}
	}

	stats, err := w.Finalize(scratchSpace, outputs)
	require.NoError(t, err)
	require.Equal(t, uint64(numGates), stats.TotalGates)

	reader, err := v5c.Open(fsys, path, false)
	require.NoError(t, err)
	defer reader.Close()

	require.Equal(t, outputs, reader.Outputs())
	require.Equal(t, stats.Checksum, reader.Header().Checksum)

	var got []wantGate

	for {
		block, err := reader.NextBlock()
		for i := 0; i < block.N; i++ {
			got = append(got, wantGate{g: block.Gates[i], isAND: block.IsAND[i]})
		}

		if err == io.EOF {
			break
		}

		require.NoError(t, err)
	}

	require.Equal(t, want, got)
}

func TestVerifyChecksum(t *testing.T) {
	fsys := fs.NewReal()
	path := filepath.Join(t.TempDir(), "circuit.v5c")

	r := rand.New(rand.NewSource(32))

	w, err := v5c.Create(fsys, path, 4, 1)
	require.NoError(t, err)

	for range 1000 {
		require.NoError(t, w.WriteGate(randGate(r, 1<<10), gate.XOR))
	}

	stats, err := w.Finalize(1<<10, []uint32{7})
	require.NoError(t, err)

	result, err := v5c.VerifyChecksum(fsys, path)
	require.NoError(t, err)
	require.Equal(t, stats.Checksum, result.Computed)
}

func TestVerifyChecksum_DetectsCorruption(t *testing.T) {
	fsys := fs.NewReal()
	path := filepath.Join(t.TempDir(), "circuit.v5c")

	w, err := v5c.Create(fsys, path, 1, 0)
	require.NoError(t, err)
	require.NoError(t, w.WriteGate(v5c.Gate{In1: 1, In2: 2, Out: 3}, gate.XOR))

	_, err = w.Finalize(10, nil)
	require.NoError(t, err)

	f, err := fsys.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte{0xFF}, int64(v5c.HeaderSize)+10)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = v5c.VerifyChecksum(fsys, path)
	require.ErrorIs(t, err, v5c.ErrChecksum)
}
