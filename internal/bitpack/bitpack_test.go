package bitpack_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zk2u/ckt/internal/bitpack"
)

func randValues34(n int, r *rand.Rand) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = r.Uint64() & ((1 << 34) - 1)
	}

	return out
}

func randValues24(n int, r *rand.Rand) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = r.Uint32() & ((1 << 24) - 1)
	}

	return out
}

func TestPack34_RoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for _, n := range []int{0, 1, 7, 8, 9, 16, 17, 255, 256, 257, 1000} {
		values := randValues34(n, r)
		buf := make([]byte, bitpack.Bytes34(n))
		bitpack.Pack34(values, buf)

		got := make([]uint64, n)
		bitpack.Unpack34(buf, n, got)

		require.Equal(t, values, got, "n=%d", n)
	}
}

func TestPack24_RoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(2))

	for _, n := range []int{0, 1, 7, 8, 9, 16, 17, 255, 256, 257, 1000} {
		values := randValues24(n, r)
		buf := make([]byte, bitpack.Bytes24(n))
		bitpack.Pack24(values, buf)

		got := make([]uint32, n)
		bitpack.Unpack24(buf, n, got)

		require.Equal(t, values, got, "n=%d", n)
	}
}

func TestBitset_RoundTrip(t *testing.T) {
	n := 1000
	truth := make([]bool, n)
	r := rand.New(rand.NewSource(5))

	for i := range truth {
		truth[i] = r.Intn(2) == 1
	}

	buf := make([]byte, (n+7)/8)
	bitpack.PackBitset(n, func(i int) bool { return truth[i] }, buf)

	got := make([]bool, n)
	bitpack.UnpackBitset(buf, n, got)

	require.Equal(t, truth, got)
}
