package cliapp

import (
	"fmt"
	"io"
)

// IO wraps a command's output streams, matching the split the engine's own
// writer/reader split uses: nothing is buffered beyond what fmt does, and
// every write goes straight to its stream.
type IO struct {
	out    io.Writer
	errOut io.Writer
}

// NewIO creates an IO writing to out/errOut.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

// Println writes to stdout.
func (o *IO) Println(a ...any) {
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout.
func (o *IO) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}
