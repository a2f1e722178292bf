package cliapp

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/zk2u/ckt/pkg/fs"
)

// Run is CKT's entry point. Returns the process exit code. sigCh may be
// nil when signal handling isn't needed, e.g. in tests.
func Run(_ io.Reader, out, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globalFlags := flag.NewFlagSet("ckt", flag.ContinueOnError)
	globalFlags.SetInterspersed(false)
	globalFlags.Usage = func() {}
	globalFlags.SetOutput(&strings.Builder{})

	flagHelp := globalFlags.BoolP("help", "h", false, "Show help")
	flagCwd := globalFlags.StringP("cwd", "C", "", "Run as if started in `dir`")
	flagConfig := globalFlags.StringP("config", "c", "", "Use specified config `file`")

	if err := globalFlags.Parse(args[1:]); err != nil {
		fprintln(errOut, "error:", err)
		printGlobalOptions(errOut)

		return 1
	}

	workDir := *flagCwd
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			fprintln(errOut, "error:", err)
			return 1
		}
	}

	cfg, err := LoadConfig(workDir, *flagConfig, env)
	if err != nil {
		fprintln(errOut, "error:", err)
		printGlobalOptions(errOut)

		return 1
	}

	fsys := fs.NewReal()
	commands := allCommands(fsys, cfg)

	commandMap := make(map[string]*Command, len(commands))
	for _, cmd := range commands {
		commandMap[cmd.Name()] = cmd
	}

	commandAndArgs := globalFlags.Args()

	if *flagHelp || (len(commandAndArgs) == 0 && globalFlags.NFlag() == 0) {
		printUsage(out, commands)
		return 0
	}

	if len(commandAndArgs) == 0 {
		fprintln(errOut, "error: no command provided")
		printUsage(errOut, commands)

		return 1
	}

	cmdName := commandAndArgs[0]

	cmd, ok := commandMap[cmdName]
	if !ok {
		fprintln(errOut, "error: unknown command:", cmdName)
		printUsage(errOut, commands)

		return 1
	}

	cmdIO := NewIO(out, errOut)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan int, 1)

	go func() {
		done <- cmd.Run(ctx, cmdIO, commandAndArgs[1:])
	}()

	select {
	case exitCode := <-done:
		return exitCode
	case <-sigCh:
		fprintln(errOut, "shutting down with 5s timeout...")
		cancel()
	}

	select {
	case <-done:
		fprintln(errOut, "graceful shutdown ok (130)")
		return 130
	case <-time.After(5 * time.Second):
		fprintln(errOut, "graceful shutdown timed out, forced exit (130)")
		return 130
	case <-sigCh:
		fprintln(errOut, "graceful shutdown interrupted, forced exit (130)")
		return 130
	}
}

// allCommands returns all commands in display order.
func allCommands(fsys fs.FS, cfg Config) []*Command {
	return []*Command{
		ConvertCmd(fsys),
		ExtractCmd(fsys, cfg),
		VerifyCmd(fsys),
		InfoCmd(fsys),
		CompareCmd(fsys),
	}
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

const globalOptionsHelp = `  -h, --help             Show help
  -C, --cwd <dir>        Run as if started in <dir>
  -c, --config <file>    Use specified config file`

func printGlobalOptions(w io.Writer) {
	fprintln(w, "Usage: ckt [flags] <command> [args]")
	fprintln(w)
	fprintln(w, "Global flags:")
	fprintln(w, globalOptionsHelp)
	fprintln(w)
	fprintln(w, "Run 'ckt --help' for a list of commands.")
}

func printUsage(w io.Writer, commands []*Command) {
	fprintln(w, "ckt - circuit container conversion and verification")
	fprintln(w)
	fprintln(w, "Usage: ckt [flags] <command> [args]")
	fprintln(w)
	fprintln(w, "Flags:")
	fprintln(w, globalOptionsHelp)
	fprintln(w)
	fprintln(w, "Commands:")

	for _, cmd := range commands {
		fprintln(w, cmd.HelpLine())
	}
}
