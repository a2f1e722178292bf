package v5a_test

import (
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zk2u/ckt/internal/gate"
	"github.com/zk2u/ckt/internal/v5a"
	"github.com/zk2u/ckt/pkg/fs"
)

func randGate(r *rand.Rand, maxWire uint64) v5a.Gate {
	t := gate.XOR
	if r.Intn(2) == 1 {
		t = gate.AND
	}

	return v5a.Gate{
		In1:     r.Uint64() % maxWire,
		In2:     r.Uint64() % maxWire,
		Out:     r.Uint64() % maxWire,
		Credits: uint32(r.Intn(1 << 20)),
		Type:    t,
	}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	fsys := fs.NewReal()
	path := filepath.Join(t.TempDir(), "circuit.v5a")

	r := rand.New(rand.NewSource(11))

	const numGates = 1000
	const primaryInputs = 64
	outputs := []uint64{1, 2, 3, 100}

	gates := make([]v5a.Gate, numGates)
	for i := range gates {
		gates[i] = randGate(r, 1<<20)
	}

	w, err := v5a.Create(fsys, path, primaryInputs, outputs)
	require.NoError(t, err)
	require.NoError(t, w.WriteGates(gates))

	stats, err := w.Finalize()
	require.NoError(t, err)
	require.Equal(t, uint64(numGates), stats.TotalGates)
	require.Equal(t, uint64(primaryInputs), stats.PrimaryInputs)

	reader, err := v5a.Open(fsys, path, false)
	require.NoError(t, err)

	defer reader.Close()

	require.Equal(t, outputs, reader.Outputs())
	require.Equal(t, stats.Checksum, reader.Header().Checksum)

	var got []v5a.Gate

	for {
		block, err := reader.NextBlockSoA()
		for i := 0; i < block.N; i++ {
			got = append(got, block.Gate(i))
		}

		if err == io.EOF {
			break
		}

		require.NoError(t, err)
	}

	require.Equal(t, gates, got)
}

func TestVerifyChecksum(t *testing.T) {
	fsys := fs.NewReal()
	path := filepath.Join(t.TempDir(), "circuit.v5a")

	r := rand.New(rand.NewSource(12))

	w, err := v5a.Create(fsys, path, 4, []uint64{7})
	require.NoError(t, err)

	for range 600 {
		require.NoError(t, w.WriteGate(randGate(r, 1<<10)))
	}

	stats, err := w.Finalize()
	require.NoError(t, err)

	result, err := v5a.VerifyChecksum(fsys, path)
	require.NoError(t, err)
	require.Equal(t, stats.Checksum, result.Computed)
}

func TestVerifyChecksum_DetectsCorruption(t *testing.T) {
	fsys := fs.NewReal()
	path := filepath.Join(t.TempDir(), "circuit.v5a")

	w, err := v5a.Create(fsys, path, 1, nil)
	require.NoError(t, err)
	require.NoError(t, w.WriteGate(v5a.Gate{In1: 1, In2: 2, Out: 3, Credits: 1, Type: gate.XOR}))

	_, err = w.Finalize()
	require.NoError(t, err)

	f, err := fsys.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte{0xFF}, int64(v5a.HeaderSize)+10)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = v5a.VerifyChecksum(fsys, path)
	require.ErrorIs(t, err, v5a.ErrChecksum)
}
