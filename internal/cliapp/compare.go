package cliapp

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/zk2u/ckt/pkg/fs"
)

// CompareCmd returns the "compare" command: an independent stats pass
// over two circuit files (any mix of formats) and a delta report.
func CompareCmd(fsys fs.FS) *Command {
	return &Command{
		Flags: flag.NewFlagSet("compare", flag.ContinueOnError),
		Usage: "compare <file1> <file2>",
		Short: "Compare two circuit files",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) < 2 {
				return fmt.Errorf("%w: two input files required", errUsage)
			}

			return runCompare(o, fsys, args[0], args[1])
		},
	}
}

func runCompare(o *IO, fsys fs.FS, path1, path2 string) error {
	o.Println("Comparing circuits...")
	o.Println()

	s1, err := loadStats(fsys, path1)
	if err != nil {
		return fmt.Errorf("compare %s: %w", path1, err)
	}

	s2, err := loadStats(fsys, path2)
	if err != nil {
		return fmt.Errorf("compare %s: %w", path2, err)
	}

	printFileStats(o, "File 1", path1, s1)
	o.Println()
	printFileStats(o, "File 2", path2, s2)

	o.Println()
	o.Println("Differences:")

	t1, t2 := s1.TotalGates(), s2.TotalGates()
	if t1 == t2 {
		o.Println("  same gate count")
	} else {
		diff := int64(t1) - int64(t2)
		if diff < 0 {
			diff = -diff
		}

		o.Printf("  gate count differs by %d\n", diff)
	}

	if s1.XORGates == s2.XORGates && s1.ANDGates == s2.ANDGates {
		o.Println("  same gate type distribution")
	} else {
		o.Println("  different gate type distribution")
	}

	switch {
	case s2.FileSize == 0:
		o.Println("  file 2 is empty, cannot compare size")
	case s1.FileSize > s2.FileSize:
		o.Printf("  file 1 is %.2fx larger\n", float64(s1.FileSize)/float64(s2.FileSize))
	case s1.FileSize > 0:
		o.Printf("  file 2 is %.2fx larger\n", float64(s2.FileSize)/float64(s1.FileSize))
	default:
		o.Println("  both files are empty")
	}

	return nil
}

func printFileStats(o *IO, label, path string, s stats) {
	o.Printf("%s: %s\n", label, path)
	o.Printf("  format: %s\n", s.Format)
	o.Printf("  gates: %d\n", s.TotalGates())

	if total := s.TotalGates(); total > 0 {
		o.Printf("  XOR: %d (%.1f%%)\n", s.XORGates, float64(s.XORGates)/float64(total)*100)
		o.Printf("  AND: %d (%.1f%%)\n", s.ANDGates, float64(s.ANDGates)/float64(total)*100)
	}

	o.Printf("  size: %.2f MB\n", float64(s.FileSize)/1_048_576)
}
