package cliapp

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/zk2u/ckt/pkg/fs"
)

// InfoCmd returns the "info" command: file size, format and, for v5
// files, the gate count. That count comes from the same full checksum pass
// verify runs; the checksum result itself is not printed. Bristol files
// are not parsed.
func InfoCmd(fsys fs.FS) *Command {
	return &Command{
		Flags: flag.NewFlagSet("info", flag.ContinueOnError),
		Usage: "info <file>",
		Short: "Print a quick summary of a circuit file",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("%w: input file required", errUsage)
			}

			return runInfo(o, fsys, args[0])
		},
	}
}

func runInfo(o *IO, fsys fs.FS, path string) error {
	format, err := sniffFormat(fsys, path)
	if err != nil {
		return fmt.Errorf("info %s: %w", path, err)
	}

	file, err := fsys.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	size, err := file.Stat()
	if err != nil {
		return err
	}

	o.Printf("file: %s\n", path)
	o.Printf("size: %.2f MB (%d bytes)\n", float64(size.Size())/1_048_576, size.Size())
	o.Printf("format: %s\n", format)

	if format == formatBristol {
		o.Printf("use 'ckt verify' for a gate-count breakdown\n")
		return nil
	}

	s, err := loadStats(fsys, path)
	if err != nil {
		o.Printf("gates: unable to read header (%v)\n", err)
		return nil
	}

	o.Printf("gates: %d\n", s.TotalGates())

	if s.TotalGates() > 0 {
		o.Printf("bytes per gate: %.2f\n", float64(size.Size())/float64(s.TotalGates()))
	}

	return nil
}
