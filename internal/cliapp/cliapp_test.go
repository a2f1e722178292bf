package cliapp_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zk2u/ckt/internal/cliapp"
)

const sampleBristol = `2 1 2 3 10 XOR
2 1 10 2 11 AND
`

func writeSample(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "sample.bristol")
	require.NoError(t, os.WriteFile(path, []byte(sampleBristol), 0o644))

	return path
}

func TestConvertExtractRoundTrip(t *testing.T) {
	t.Parallel()

	c := cliapp.NewCLI(t)
	input := writeSample(t, c.Dir)

	out := c.MustRun("convert", input, "-o", filepath.Join(c.Dir, "sample.v5a"))
	require.Contains(t, out, "gates: 2")
	require.Contains(t, out, "1 XOR")
	require.Contains(t, out, "1 AND")

	out = c.MustRun("extract", filepath.Join(c.Dir, "sample.v5a"), "-o", filepath.Join(c.Dir, "roundtrip.bristol"))
	require.Contains(t, out, "gates: 2")

	got, err := os.ReadFile(filepath.Join(c.Dir, "roundtrip.bristol"))
	require.NoError(t, err)
	require.Equal(t, sampleBristol, string(got))
}

func TestVerifyReportsOK(t *testing.T) {
	t.Parallel()

	c := cliapp.NewCLI(t)
	input := writeSample(t, c.Dir)
	output := filepath.Join(c.Dir, "sample.v5a")

	c.MustRun("convert", input, "-o", output)

	out := c.MustRun("verify", output, "--detailed")
	require.Contains(t, out, "checksum: OK")
	require.Contains(t, out, "primary inputs: 2, outputs: 1")
}

func TestVerifyDetectsCorruption(t *testing.T) {
	t.Parallel()

	c := cliapp.NewCLI(t)
	input := writeSample(t, c.Dir)
	output := filepath.Join(c.Dir, "sample.v5a")

	c.MustRun("convert", input, "-o", output)

	f, err := os.OpenFile(output, os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte{0xFF}, 100)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	stderr := c.MustFail("verify", output)
	require.Contains(t, stderr, "checksum")
}

func TestInfoOnBristolFile(t *testing.T) {
	t.Parallel()

	c := cliapp.NewCLI(t)
	input := writeSample(t, c.Dir)

	out := c.MustRun("info", input)
	require.Contains(t, out, "format: bristol")
	require.Contains(t, out, "ckt verify")
}

func TestCompareIdenticalFiles(t *testing.T) {
	t.Parallel()

	c := cliapp.NewCLI(t)
	input := writeSample(t, c.Dir)
	output := filepath.Join(c.Dir, "sample.v5a")

	c.MustRun("convert", input, "-o", output)

	out := c.MustRun("compare", output, output)
	require.Contains(t, out, "same gate count")
	require.Contains(t, out, "same gate type distribution")
}

func TestConvertMissingInputFails(t *testing.T) {
	t.Parallel()

	c := cliapp.NewCLI(t)
	stderr := c.MustFail("convert")
	require.Contains(t, stderr, "input file required")
}

func TestUnknownCommandFails(t *testing.T) {
	t.Parallel()

	c := cliapp.NewCLI(t)
	stderr := c.MustFail("frobnicate")
	require.Contains(t, stderr, "unknown command")
}

func TestHelpFlagPrintsUsage(t *testing.T) {
	t.Parallel()

	c := cliapp.NewCLI(t)
	out := c.MustRun("--help")
	require.Contains(t, out, "ckt - circuit container")
}
