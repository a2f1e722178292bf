package cliapp

import (
	"context"
	"errors"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command defines a CLI command with unified help generation.
type Command struct {
	// Flags defines command-specific flags. Command identity comes from
	// the first word of Usage, not the FlagSet's own name.
	Flags *flag.FlagSet

	// Usage is the freeform usage string shown after "ckt" in help, e.g.
	// "convert <input> [-o output] [-l level]".
	Usage string

	// Short is a one-line description for the top-level help listing.
	Short string

	// Long is the full description shown in "ckt <cmd> --help". Falls
	// back to Short when empty.
	Long string

	// Exec runs the command after flags are parsed.
	Exec func(ctx context.Context, io *IO, args []string) error
}

// Name returns the command name (first word of Usage).
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")
	return name
}

// HelpLine returns the one-line summary shown in the top-level listing.
func (c *Command) HelpLine() string {
	return "  " + c.Usage + strings.Repeat(" ", max(1, 24-len(c.Usage))) + c.Short
}

// PrintHelp prints the full help output for "ckt <cmd> --help".
func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage: ckt", c.Usage)
	o.Println()

	desc := c.Long
	if desc == "" {
		desc = c.Short
	}

	o.Println(desc)

	if c.Flags != nil && c.Flags.HasFlags() {
		o.Println()
		o.Println("Flags:")

		var buf strings.Builder
		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		o.Printf("%s", buf.String())
	}
}

// Run parses flags and executes the command, returning the process exit
// code. Error printing happens here so every command reports failures the
// same way.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(&strings.Builder{}) // discard pflag's own error/usage output

	if err := c.Flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.PrintHelp(o)
			return 0
		}

		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		c.PrintHelp(o)

		return 1
	}

	if err := c.Exec(ctx, o, c.Flags.Args()); err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}

	return 0
}
