// cmd/slcsp/main.go
//
// This is the entry point for the slcsp CLI.
//
// Flow:
// 1. Parse flags; any remaining arguments are ZIP codes to look up
// 2. Load .slcsp/config.yaml (created with defaults on first run)
// 3. Resolve second-lowest rates and print them
// 4. Ask where the complete output should be written

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/kingrea/slcsp/internal/app"
	"github.com/kingrea/slcsp/internal/config"
	"github.com/kingrea/slcsp/internal/logbook"
)

type cliOptions struct {
	Dir        string
	ConfigPath string
	Metal      string
	Write      string
	Journal    int
	Lookups    []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		stop()
		exitf("Error: %v", err)
	}
}

// exitf writes a formatted error message to stderr and exits with code 1.
func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func parseArgs(args []string, stderr io.Writer) (cliOptions, error) {
	opts := cliOptions{Dir: "."}
	fs := flag.NewFlagSet("slcsp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.Dir, "dir", opts.Dir, "project directory that relative paths resolve against")
	fs.StringVar(&opts.ConfigPath, "config", "", "config file (default <dir>/.slcsp/config.yaml)")
	fs.StringVar(&opts.Metal, "metal", "", "metal level to resolve (overrides config)")
	fs.StringVar(&opts.Write, "write", "", "write output without prompting: source, separate or none")
	fs.IntVar(&opts.Journal, "journal", 0, "print the last `N` run journal entries and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "\nUsage:\n")
		fmt.Fprintf(fs.Output(), "  slcsp [flags]                resolve every ZIP in the targets table\n")
		fmt.Fprintf(fs.Output(), "  slcsp [flags] zip1 zip2 ...  show the rates for the given ZIP codes\n\n")
		fmt.Fprintf(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output())
	}
	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}
	opts.Lookups = fs.Args()
	return opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	if opts.ConfigPath == "" {
		if err := config.InitDir(opts.Dir); err != nil {
			return fmt.Errorf("initializing %s directory: %w", config.StateDirName, err)
		}
	}
	cfg, err := config.Load(opts.Dir, opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.Metal != "" {
		if err := cfg.SetMetalLevel(opts.Metal); err != nil {
			return err
		}
	}

	lb, err := logbook.New(cfg.LogPath())
	if err != nil {
		fmt.Fprintf(stderr, "Warning: run journal disabled: %v\n", err)
		lb = nil
	}

	if opts.Journal > 0 {
		return printJournal(stdout, lb, opts.Journal)
	}

	return app.Run(ctx, cfg, lb, app.Options{
		Lookups: opts.Lookups,
		Write:   opts.Write,
		In:      stdin,
		Out:     stdout,
	})
}

func printJournal(out io.Writer, lb *logbook.Logbook, n int) error {
	lines := lb.Tail(n)
	if len(lines) == 0 {
		_, err := fmt.Fprintln(out, "No runs recorded yet.")
		return err
	}
	if _, err := fmt.Fprintf(out, "Run journal (%s):\n", lb.Path()); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}
