//go:build !amd64

package bitpack

// HasVectorSupport always reports false off amd64; there is no vector path
// to select.
func HasVectorSupport() bool {
	return false
}

func pack34Vector(values []uint64, out []byte)       { pack34Scalar(values, out) }
func unpack34Vector(in []byte, n int, out []uint64)  { unpack34Scalar(in, n, out) }
func pack24Vector(values []uint32, out []byte)       { pack24Scalar(values, out) }
func unpack24Vector(in []byte, n int, out []uint32)  { unpack24Scalar(in, n, out) }
