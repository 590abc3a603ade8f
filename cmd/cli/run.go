package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/kcaldas/condenser/internal/di"
	"github.com/kcaldas/condenser/pkg/discovery"
	"github.com/kcaldas/condenser/pkg/engine"
	"github.com/kcaldas/condenser/pkg/events"
	"github.com/kcaldas/condenser/pkg/report"
)

func newRunCommand(a *app) *cobra.Command {
	var (
		reportPath   string
		reportFormat string
		output       string
		toClipboard  bool
	)
	cmd := &cobra.Command{
		Use:   "run [dir]",
		Short: "Condense a directory into the budget",
		Long: `Discover the text files below dir (default "."), allocate the budget and
condense every file to fit its share. The combined output goes to stdout
unless --output is given.

Examples:
  condenser run --token-limit 8000
  condenser run ./service --char-limit 50000 --strategy aggressive
  condenser run --critical-files "README.md,docs/*.md" --report run.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(reportFormat)
			if err != nil {
				return err
			}
			r, rep, err := a.condenseDir(cmd, dirArg(args))
			if err != nil {
				return err
			}

			out := bundle(rep)
			if output != "" {
				if err := r.Files.WriteFile(output, []byte(out)); err != nil {
					return err
				}
				a.logger.Info("output written", "path", output)
			} else if _, err := io.WriteString(cmd.OutOrStdout(), out); err != nil {
				return err
			}

			if reportPath != "" {
				var buf bytes.Buffer
				if err := rep.WithoutText().Write(&buf, format); err != nil {
					return err
				}
				if err := r.Files.WriteFile(reportPath, buf.Bytes()); err != nil {
					return err
				}
				a.logger.Info("report written", "path", reportPath)
			}

			if toClipboard {
				if err := clipboard.WriteAll(out); err != nil {
					a.logger.Warn("clipboard unavailable", "error", err)
				}
			}
			if !a.quiet {
				return renderMarkdown(cmd.ErrOrStderr(), rep.WithoutText().Markdown())
			}
			return nil
		},
	}
	addBudgetFlags(cmd)
	cmd.Flags().StringVar(&reportPath, "report", "", "write the run report to this file")
	cmd.Flags().StringVar(&reportFormat, "report-format", "yaml", "report format: yaml or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the condensed output to this file")
	cmd.Flags().BoolVar(&toClipboard, "clipboard", false, "copy the condensed output to the clipboard")
	return cmd
}

func dirArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

// condenseDir discovers dir and runs the engine over it.
func (a *app) condenseDir(cmd *cobra.Command, dir string) (*di.Runner, *report.Report, error) {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	r, err := di.ProvideRunner(cfg)
	if err != nil {
		return nil, nil, err
	}
	defer r.Bus.Shutdown()
	if a.verbose {
		r.Bus.Subscribe(events.Wildcard, progress(cmd.ErrOrStderr()))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	found, err := r.Walker.Walk(ctx, dir)
	if err != nil {
		return nil, nil, err
	}
	for _, s := range found.Skipped {
		a.logger.Debug("skipped", "path", s.Path, "reason", s.Reason)
	}
	if len(found.Files) == 0 {
		return nil, nil, fmt.Errorf("no text files found in %s", dir)
	}

	rep, err := r.Engine.Run(ctx, toInputs(found.Files))
	if err != nil {
		return nil, nil, err
	}
	return r, rep, nil
}

// progress prints run events as they arrive.
func progress(w io.Writer) events.Handler {
	return func(e events.Event) {
		switch ev := e.(type) {
		case events.RunStarted:
			fmt.Fprintf(w, "run %s: %d files, %d %s units, %s, %s\n", ev.RunID, ev.Files, ev.TotalUnits, ev.UnitKind, ev.Strategy, ev.Estimator)
		case events.FileCondensed:
			mark := ""
			if ev.OverBudget {
				mark = " (over budget)"
			}
			fmt.Fprintf(w, "  %-8s %-8s %6d/%-6d %s%s\n", ev.Tier, ev.Level, ev.FinalUnits, ev.AllocatedUnits, ev.Path, mark)
		case events.RunWarning:
			fmt.Fprintf(w, "  warning %s %s: %s\n", ev.Kind, ev.Path, ev.Message)
		case events.RunCompleted:
			fmt.Fprintf(w, "done: %d/%d units in %s\n", ev.Consumed, ev.Allocated, ev.Duration)
		}
	}
}

func toInputs(files []discovery.File) []engine.Input {
	inputs := make([]engine.Input, len(files))
	for i, f := range files {
		inputs[i] = engine.Input{Path: f.Path, Text: f.Text, SizeBytes: f.SizeBytes}
	}
	return inputs
}
