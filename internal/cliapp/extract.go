package cliapp

import (
	"context"
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/zk2u/ckt/internal/bristol"
	"github.com/zk2u/ckt/internal/v5a"
	"github.com/zk2u/ckt/pkg/fs"
)

// ExtractCmd returns the "extract" command: v5a binary to Bristol text.
func ExtractCmd(fsys fs.FS, cfg Config) *Command {
	flags := flag.NewFlagSet("extract", flag.ContinueOnError)
	output := flags.StringP("output", "o", "", "Output `file` (default: input with .bristol extension)")

	return &Command{
		Flags: flags,
		Usage: "extract <input.v5a> [-o output]",
		Short: "Convert a v5a binary circuit to Bristol text",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("%w: input file required", errUsage)
			}

			out := *output
			if out == "" {
				out = replaceExt(args[0], ".bristol")
			}

			return runExtract(ctx, o, fsys, cfg, args[0], out)
		},
	}
}

func runExtract(ctx context.Context, o *IO, fsys fs.FS, cfg Config, input, output string) error {
	reader, err := v5a.Open(fsys, input, cfg.DirectIO)
	if err != nil {
		return fmt.Errorf("open %s: %w", input, err)
	}
	defer reader.Close()

	var block v5a.DecodedBlock

	var i int

	err = bristol.WriteAll(output, func() (bristol.Gate, error) {
		for i >= block.N {
			if ctx.Err() != nil {
				return bristol.Gate{}, ctx.Err()
			}

			block, err = reader.NextBlockSoA()
			if errors.Is(err, io.EOF) {
				return bristol.Gate{}, io.EOF
			}

			if err != nil {
				return bristol.Gate{}, err
			}

			i = 0
		}

		g := block.Gate(i)
		i++

		return bristol.Gate{In1: g.In1, In2: g.In2, Out: g.Out, Type: g.Type}, nil
	})
	if err != nil {
		return fmt.Errorf("extract %s: %w", input, err)
	}

	o.Printf("extracted %s -> %s\n", input, output)
	o.Printf("  gates: %d (%d XOR, %d AND)\n", reader.Header().TotalGates(), reader.Header().XORGates, reader.Header().ANDGates)

	return nil
}
