// Package app runs one slcsp invocation: load the reference tables, resolve
// rates, show them, and persist the complete output where the user asks.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kingrea/slcsp/internal/config"
	"github.com/kingrea/slcsp/internal/logbook"
	"github.com/kingrea/slcsp/internal/rates"
	"github.com/kingrea/slcsp/internal/report"
	"github.com/kingrea/slcsp/internal/tables"
	"github.com/kingrea/slcsp/internal/tui"
)

// PromptFunc asks where the complete output should be written.
type PromptFunc func(ctx context.Context, sourcePath, separatePath string) (tui.Destination, error)

// Options controls a single run.
type Options struct {
	// Lookups are ZIP codes to display instead of the full table.
	Lookups []string

	// Write skips the interactive prompt when set to source, separate or none.
	Write string

	In     io.Reader
	Out    io.Writer
	Prompt PromptFunc
}

// Run executes one invocation. Only table loading and output writing fail;
// unresolvable ZIP codes show up as blank rates.
func Run(ctx context.Context, cfg *config.Config, lb *logbook.Logbook, opts Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg == nil {
		return errors.New("app: config is required")
	}
	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = io.Discard
	}

	var preset *tui.Destination
	if opts.Write != "" {
		dest, err := tui.ParseDestination(opts.Write)
		if err != nil {
			return err
		}
		preset = &dest
	}

	lb.Record(logbook.LevelInfo, "run started", logbook.Fields{
		"zips":    cfg.ZipsPath(),
		"plans":   cfg.PlansPath(),
		"targets": cfg.TargetsPath(),
		"metal":   cfg.MetalLevel(),
		"match":   string(cfg.MatchMode()),
	})

	ds, err := tables.Load(tables.Paths{
		Zips:    cfg.ZipsPath(),
		Plans:   cfg.PlansPath(),
		Targets: cfg.TargetsPath(),
	})
	if err != nil {
		lb.Error("load failed: %v", err)
		return err
	}
	lb.Record(logbook.LevelInfo, "tables loaded", logbook.Fields{
		"zip_rows":    len(ds.Areas),
		"plan_rows":   len(ds.Plans),
		"target_rows": len(ds.Targets),
	})

	resolver := rates.Resolver{MetalLevel: cfg.MetalLevel(), Match: cfg.MatchMode()}
	rows := resolver.Resolve(ds.Targets, ds.Areas, ds.Plans)
	summary := rates.Summarize(rows)
	lb.Record(logbook.LevelInfo, "rates resolved", logbook.Fields{
		"total":    summary.Total,
		"resolved": summary.Resolved,
		"blank":    summary.Blank,
	})

	if err := display(out, lb, rows, opts.Lookups); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out, report.SummaryLine(summary)); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	dest, err := chooseDestination(ctx, cfg, preset, opts.Prompt, in, out)
	if err != nil {
		lb.Error("prompt failed: %v", err)
		return err
	}
	return persist(out, lb, cfg, dest, rows)
}

func display(out io.Writer, lb *logbook.Logbook, rows []rates.OutputRow, lookups []string) error {
	if len(lookups) == 0 {
		_, err := fmt.Fprintln(out, report.Render(rows))
		return err
	}
	selected := report.Select(rows, lookups)
	for _, l := range selected {
		if l.Err != nil {
			lb.Warn("lookup %q: %v", l.Arg, l.Err)
		}
	}
	return report.WriteLookups(out, selected)
}

func chooseDestination(ctx context.Context, cfg *config.Config, preset *tui.Destination, prompt PromptFunc, in io.Reader, out io.Writer) (tui.Destination, error) {
	if preset != nil {
		return *preset, nil
	}
	if prompt == nil {
		prompt = func(ctx context.Context, source, separate string) (tui.Destination, error) {
			return tui.Ask(ctx, in, out, source, separate)
		}
	}
	return prompt(ctx, cfg.TargetsPath(), cfg.OutputPath())
}

func persist(out io.Writer, lb *logbook.Logbook, cfg *config.Config, dest tui.Destination, rows []rates.OutputRow) error {
	var path string
	switch dest {
	case tui.DestinationSource:
		path = cfg.TargetsPath()
	case tui.DestinationSeparate:
		path = cfg.OutputPath()
	default:
		lb.Info("output not written")
		_, err := fmt.Fprintln(out, "\nNo output written.")
		return err
	}

	if err := tables.WriteOutput(path, rows); err != nil {
		lb.Error("write %s: %v", path, err)
		return err
	}
	lb.Record(logbook.LevelInfo, "output written", logbook.Fields{
		"destination": dest.String(),
		"path":        path,
		"rows":        len(rows),
	})
	_, err := fmt.Fprintf(out, "\nOutput file available at: %s\n\n", path)
	return err
}
