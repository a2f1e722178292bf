package cliapp

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/zk2u/ckt/pkg/fs"
)

// VerifyCmd returns the "verify" command: re-reads a circuit file end to
// end and reports whether its checksum (v5 family) or structure
// (Bristol) is intact.
func VerifyCmd(fsys fs.FS) *Command {
	flags := flag.NewFlagSet("verify", flag.ContinueOnError)
	detailed := flags.BoolP("detailed", "d", false, "Print gate-type breakdown")

	return &Command{
		Flags: flags,
		Usage: "verify <file> [-d]",
		Short: "Verify a circuit file's integrity",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("%w: input file required", errUsage)
			}

			return runVerify(o, fsys, args[0], *detailed)
		},
	}
}

func runVerify(o *IO, fsys fs.FS, path string, detailed bool) error {
	s, err := loadStats(fsys, path)
	if err != nil {
		return fmt.Errorf("verify %s: %w", path, err)
	}

	o.Printf("format: %s\n", s.Format)

	switch s.Format {
	case formatBristol:
		o.Printf("structure: OK (%d gates)\n", s.TotalGates())
	default:
		if s.ChecksumValid {
			o.Printf("checksum: OK\n")
		} else {
			o.Printf("checksum: MISMATCH\n")
		}
	}

	if detailed {
		o.Printf("  gates: %d (%d XOR, %d AND)\n", s.TotalGates(), s.XORGates, s.ANDGates)
		o.Printf("  primary inputs: %d, outputs: %d\n", s.PrimaryInputs, s.NumOutputs)

		if s.ScratchSpace > 0 {
			o.Printf("  scratch space: %d\n", s.ScratchSpace)
		}

		if s.NumLevels > 0 {
			o.Printf("  levels: %d\n", s.NumLevels)
		}

		if s.Format != formatBristol {
			o.Printf("  bytes hashed: %d gate data, %d outputs\n", s.MainRegionBytes, s.OutputsBytes)
		}

		o.Printf("  size: %d bytes\n", s.FileSize)
	}

	if s.Format != formatBristol && !s.ChecksumValid {
		return fmt.Errorf("verify %s: checksum mismatch", path)
	}

	return nil
}
