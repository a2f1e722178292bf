package bristol

import (
	"bufio"
	"fmt"
	"io"

	"github.com/natefinch/atomic"
)

// GateSource yields gates in order; Next returns io.EOF once exhausted.
// v5a.Reader's NextBlockSoA/DecodedBlock shape doesn't match this directly,
// so callers adapt it with a small closure (see internal/cliapp's extract
// command).
type GateSource func() (Gate, error)

// WriteAll streams every gate from next as a Bristol text line to path,
// replacing it atomically on success (github.com/natefinch/atomic) and
// leaving the destination untouched on any error. Gates are piped through
// an io.Pipe rather than buffered in memory first, since a circuit can run
// to billions of gates.
func WriteAll(path string, next GateSource) error {
	pr, pw := io.Pipe()

	go func() {
		pw.CloseWithError(streamLines(pw, next))
	}()

	return atomic.WriteFile(path, pr)
}

func streamLines(w io.Writer, next GateSource) error {
	bw := bufio.NewWriterSize(w, 1<<20)

	for {
		g, err := next()
		if err == io.EOF {
			break
		}

		if err != nil {
			return err
		}

		if _, err := fmt.Fprintf(bw, "2 1 %d %d %d %s\n", g.In1, g.In2, g.Out, g.Type); err != nil {
			return err
		}
	}

	return bw.Flush()
}
