package v5b_test

import (
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zk2u/ckt/internal/gate"
	"github.com/zk2u/ckt/internal/v5b"
	"github.com/zk2u/ckt/pkg/fs"
)

func randGate(r *rand.Rand, maxAddr uint32) v5b.Gate {
	return v5b.Gate{
		In1: uint32(r.Intn(int(maxAddr))),
		In2: uint32(r.Intn(int(maxAddr))),
		Out: uint32(r.Intn(int(maxAddr))),
	}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	fsys := fs.NewReal()
	path := filepath.Join(t.TempDir(), "circuit.v5b")

	r := rand.New(rand.NewSource(21))

	const numLevels = 10
	const primaryInputs = 32
	const scratchSpace = 1 << 16

	outputs := []uint32{1, 2, 3, 400}

	w, err := v5b.Create(fsys, path, primaryInputs, uint64(len(outputs)))
	require.NoError(t, err)

	type wantLevel struct {
		xor []v5b.Gate
		and []v5b.Gate
	}

	var want []wantLevel

	for l := 0; l < numLevels; l++ {
		require.NoError(t, w.StartLevel())

		var lvl wantLevel

		numXOR := 1 + r.Intn(5)
		for i := 0; i < numXOR; i++ {
			g := randGate(r, scratchSpace)
			require.NoError(t, w.AddGate(gate.XOR, g))
			lvl.xor = append(lvl.xor, g)
		}

		numAND := 1 + r.Intn(5)
		for i := 0; i < numAND; i++ {
			g := randGate(r, scratchSpace)
			require.NoError(t, w.AddGate(gate.AND, g))
			lvl.and = append(lvl.and, g)
		}

		require.NoError(t, w.FinishLevel())

		want = append(want, lvl)
	}

	stats, err := w.Finalize(scratchSpace, outputs)
	require.NoError(t, err)
	require.Equal(t, uint32(numLevels), stats.NumLevels)

	reader, err := v5b.Open(fsys, path, false)
	require.NoError(t, err)
	defer reader.Close()

	require.Equal(t, outputs, reader.Outputs())
	require.Equal(t, stats.Checksum, reader.Header().Checksum)

	var got []wantLevel

	for {
		lvl, err := reader.NextLevel()
		if err == io.EOF {
			break
		}

		require.NoError(t, err)
		got = append(got, wantLevel{xor: lvl.XOR, and: lvl.AND})
	}

	require.Equal(t, want, got)
}

func TestVerifyChecksum(t *testing.T) {
	fsys := fs.NewReal()
	path := filepath.Join(t.TempDir(), "circuit.v5b")

	r := rand.New(rand.NewSource(22))

	w, err := v5b.Create(fsys, path, 4, 1)
	require.NoError(t, err)

	for l := 0; l < 5; l++ {
		require.NoError(t, w.StartLevel())
		require.NoError(t, w.AddGate(gate.XOR, randGate(r, 1<<10)))
		require.NoError(t, w.AddGate(gate.AND, randGate(r, 1<<10)))
		require.NoError(t, w.FinishLevel())
	}

	stats, err := w.Finalize(1<<10, []uint32{5})
	require.NoError(t, err)

	result, err := v5b.VerifyChecksum(fsys, path)
	require.NoError(t, err)
	require.Equal(t, stats.Checksum, result.Computed)
}

func TestVerifyChecksum_DetectsCorruption(t *testing.T) {
	fsys := fs.NewReal()
	path := filepath.Join(t.TempDir(), "circuit.v5b")

	w, err := v5b.Create(fsys, path, 1, 0)
	require.NoError(t, err)
	require.NoError(t, w.StartLevel())
	require.NoError(t, w.AddGate(gate.XOR, v5b.Gate{In1: 0, In2: 1, Out: 2}))
	require.NoError(t, w.FinishLevel())

	_, err = w.Finalize(10, nil)
	require.NoError(t, err)

	f, err := fsys.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte{0xFF}, int64(v5b.HeaderSize)+2)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = v5b.VerifyChecksum(fsys, path)
	require.ErrorIs(t, err, v5b.ErrChecksum)
}

func TestAddGate_RequiresLevelInProgress(t *testing.T) {
	fsys := fs.NewReal()
	path := filepath.Join(t.TempDir(), "circuit.v5b")

	w, err := v5b.Create(fsys, path, 0, 0)
	require.NoError(t, err)

	err = w.AddGate(gate.XOR, v5b.Gate{})
	require.ErrorIs(t, err, v5b.ErrNoLevelInProgress)
}

func TestFinishLevel_RejectsEmptyLevel(t *testing.T) {
	fsys := fs.NewReal()
	path := filepath.Join(t.TempDir(), "circuit.v5b")

	w, err := v5b.Create(fsys, path, 0, 0)
	require.NoError(t, err)
	require.NoError(t, w.StartLevel())

	err = w.FinishLevel()
	require.ErrorIs(t, err, v5b.ErrEmptyLevel)
}
