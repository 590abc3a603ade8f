package report

import (
	"fmt"
	"strings"

	"github.com/kcaldas/condenser/pkg/condense"
)

// Markdown renders the run summary and per-file table.
func (r *Report) Markdown() string {
	var b strings.Builder
	s := r.Summary
	fmt.Fprintf(&b, "# Condensing report\n\n")
	fmt.Fprintf(&b, "Run `%s` with **%s** (%s), strategy **%s**.\n\n", r.RunID, r.Estimator, r.UnitKind, r.Strategy)
	fmt.Fprintf(&b, "| Budget | Allocated | Consumed | Saved | Ratio | Over budget | Hard cuts |\n")
	fmt.Fprintf(&b, "|---:|---:|---:|---:|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %.2f | %d | %d |\n\n",
		r.TotalUnits, s.TotalAllocated, s.TotalConsumed, s.UnitsSaved, s.CompressionRatio, s.OverBudgetCount, s.HardCuts)

	var levels []string
	for _, l := range condense.Levels {
		levels = append(levels, fmt.Sprintf("%s %d", l, s.LevelCounts[l.String()]))
	}
	fmt.Fprintf(&b, "Levels: %s.\n\n", strings.Join(levels, ", "))

	if len(r.Files) > 0 {
		b.WriteString("| File | Tier | Estimated | Allocated | Final | Level | Notes |\n")
		b.WriteString("|---|---|---:|---:|---:|---|---|\n")
		for _, f := range r.Files {
			var notes []string
			if f.OverBudget {
				notes = append(notes, "over budget")
			}
			if f.Fallback != "" && f.Fallback != "none" {
				notes = append(notes, f.Fallback+"/"+f.FallbackReason)
			}
			if f.Sampled {
				notes = append(notes, "sampled")
			}
			fmt.Fprintf(&b, "| `%s` | %s | %d | %d | %d | %s | %s |\n",
				f.Path, f.Tier, f.EstimatedUnits, f.AllocatedUnits, f.FinalUnits, f.Level, strings.Join(notes, ", "))
		}
		b.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			if w.Path != "" {
				fmt.Fprintf(&b, "- **%s** `%s`: %s\n", w.Kind, w.Path, w.Message)
			} else {
				fmt.Fprintf(&b, "- **%s**: %s\n", w.Kind, w.Message)
			}
		}
	}
	return b.String()
}
