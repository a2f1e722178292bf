package blockio_test

import (
	"bytes"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zk2u/ckt/internal/blockio"
	"github.com/zk2u/ckt/pkg/fs"
)

func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "region.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	return path
}

func TestReader_StreamsExactRegion(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	data := make([]byte, 5*1<<20+777)
	r.Read(data)

	start := int64(1000)
	end := int64(len(data) - 333)
	path := writeTempFile(t, data)

	f, err := fs.NewReal().Open(path)
	require.NoError(t, err)

	defer f.Close()

	reader := blockio.Open(f, start, end, false, 64*1024)
	defer reader.Close()

	var got bytes.Buffer

	for {
		block, err := reader.NextBlock(4096)
		got.Write(block)

		if err == io.EOF {
			break
		}

		require.NoError(t, err)
	}

	require.Equal(t, data[start:end], got.Bytes())
}

func TestReader_SmallRegionSmallerThanBlock(t *testing.T) {
	data := []byte("hello, world! this is a small region.")
	path := writeTempFile(t, data)

	f, err := fs.NewReal().Open(path)
	require.NoError(t, err)

	defer f.Close()

	reader := blockio.Open(f, 0, int64(len(data)), false, 16)
	defer reader.Close()

	block, err := reader.NextBlock(len(data))
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, data, block)
}

func TestReader_DirectAlignment(t *testing.T) {
	data := make([]byte, 3*fs.SectorSize+200)
	for i := range data {
		data[i] = byte(i)
	}

	path := writeTempFile(t, data)

	f, _, err := fs.OpenDirect(path, os.O_RDONLY, 0)
	require.NoError(t, err)

	defer f.Close()

	start := int64(50)
	end := int64(len(data) - 30)

	reader := blockio.Open(f, start, end, true, 4*fs.SectorSize)
	defer reader.Close()

	var got bytes.Buffer

	for {
		block, err := reader.NextBlock(1024)
		got.Write(block)

		if err == io.EOF {
			break
		}

		require.NoError(t, err)
	}

	require.Equal(t, data[start:end], got.Bytes())
}
