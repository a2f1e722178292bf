package bitpack

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestScalarVectorAgree exercises both code paths directly (bypassing
// HasVectorSupport, which depends on the host CPU) so CI catches a
// divergence even on a machine without AVX-512F.
func TestScalarVectorAgree(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for _, n := range []int{0, 1, 2, 7, 8, 9, 15, 16, 17, 100, 1000, 21620} {
		values34 := make([]uint64, n)
		values24 := make([]uint32, n)

		for i := range n {
			values34[i] = r.Uint64() & ((1 << 34) - 1)
			values24[i] = r.Uint32() & ((1 << 24) - 1)
		}

		bufA := make([]byte, Bytes34(n))
		bufB := make([]byte, Bytes34(n))
		pack34Scalar(values34, bufA)
		pack34Vector(values34, bufB)
		require.Equal(t, bufA, bufB, "pack34 n=%d", n)

		gotA := make([]uint64, n)
		gotB := make([]uint64, n)
		unpack34Scalar(bufA, n, gotA)
		unpack34Vector(bufA, n, gotB)
		require.Equal(t, gotA, gotB, "unpack34 n=%d", n)
		require.Equal(t, values34, gotA, "unpack34 roundtrip n=%d", n)

		bufC := make([]byte, Bytes24(n))
		bufD := make([]byte, Bytes24(n))
		pack24Scalar(values24, bufC)
		pack24Vector(values24, bufD)
		require.Equal(t, bufC, bufD, "pack24 n=%d", n)

		gotC := make([]uint32, n)
		gotD := make([]uint32, n)
		unpack24Scalar(bufC, n, gotC)
		unpack24Vector(bufC, n, gotD)
		require.Equal(t, gotC, gotD, "unpack24 n=%d", n)
		require.Equal(t, values24, gotC, "unpack24 roundtrip n=%d", n)
	}
}
