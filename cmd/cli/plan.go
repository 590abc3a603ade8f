package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kcaldas/condenser/internal/di"
	"github.com/kcaldas/condenser/pkg/engine"
)

func newPlanCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [dir]",
		Short: "Show tiers and allocations without condensing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			r, err := di.ProvideRunner(cfg)
			if err != nil {
				return err
			}
			defer r.Bus.Shutdown()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			found, err := r.Walker.Walk(ctx, dirArg(args))
			if err != nil {
				return err
			}
			p, err := r.Engine.Plan(ctx, toInputs(found.Files))
			if err != nil {
				return err
			}
			return renderMarkdown(cmd.OutOrStdout(), planMarkdown(p, cfg.Budget().TotalUnits, r.Engine.Estimator().Name()))
		},
	}
	addBudgetFlags(cmd)
	return cmd
}

func planMarkdown(p *engine.Plan, total int, estimator string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Allocation plan\n\n")
	fmt.Fprintf(&b, "Budget %d, reserved %d, pool %d, %d redistribution rounds, estimator %s.\n\n",
		total, p.Allocation.Reserved, p.Allocation.Pool, p.Allocation.Iterations, estimator)
	if len(p.Profile.Dominant) > 0 {
		fmt.Fprintf(&b, "Dominant languages: %s.\n\n", strings.Join(p.Profile.Dominant, ", "))
	}
	b.WriteString("| File | Tier | Estimated | Allocated | Notes |\n")
	b.WriteString("|---|---|---:|---:|---|\n")
	for _, f := range p.Files {
		var notes []string
		if f.Reserved {
			notes = append(notes, "reserved")
		}
		if f.Capped {
			notes = append(notes, "capped")
		}
		if f.Sampled {
			notes = append(notes, "sampled")
		}
		fmt.Fprintf(&b, "| `%s` | %s | %d | %d | %s |\n", f.Path, f.Tier, f.EstimatedUnits, f.AllocatedUnits, strings.Join(notes, ", "))
	}
	for _, w := range p.Warnings {
		fmt.Fprintf(&b, "\n> **%s**: %s\n", w.Kind, w.Message)
	}
	return b.String()
}
