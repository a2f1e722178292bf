package ckthash_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zk2u/ckt/internal/ckthash"
)

func TestStreamingMatchesOnePass(t *testing.T) {
	blocks := []byte("block-region-bytes-spanning-several-emitted-blocks")
	outputs := []byte("outputs-vector-bytes")
	headerTail := []byte("header-tail-bytes-after-checksum-field")

	h := ckthash.New()

	for _, chunk := range [][]byte{blocks[:10], blocks[10:30], blocks[30:]} {
		h.WriteBlock(chunk)
	}

	streamed := h.Sum(outputs, headerTail)
	onePass := ckthash.Verify(blocks, outputs, headerTail)

	require.Equal(t, onePass, streamed)
}

func TestDifferentInputsDiffer(t *testing.T) {
	a := ckthash.Verify([]byte("a"), []byte("b"), []byte("c"))
	b := ckthash.Verify([]byte("a"), []byte("b"), []byte("d"))

	require.NotEqual(t, a, b)
}
