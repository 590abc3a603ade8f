package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kcaldas/condenser/pkg/report"
)

func newCompareCommand(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "compare <before> <after>",
		Short: "Compare two run reports",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			before, err := loadReport(args[0])
			if err != nil {
				return err
			}
			after, err := loadReport(args[1])
			if err != nil {
				return err
			}
			c, err := report.Compare(before, after)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, d := range c.Deltas {
				if !all && !d.Changed() {
					continue
				}
				switch {
				case !d.InBefore:
					fmt.Fprintf(out, "+ %s %s %d\n", d.Path, d.LevelAfter, d.UnitsAfter)
				case !d.InAfter:
					fmt.Fprintf(out, "- %s %s %d\n", d.Path, d.LevelBefore, d.UnitsBefore)
				default:
					fmt.Fprintf(out, "~ %s %s -> %s, %d -> %d\n", d.Path, d.LevelBefore, d.LevelAfter, d.UnitsBefore, d.UnitsAfter)
				}
			}
			fmt.Fprintf(out, "consumed %+d %ss\n", c.ConsumedDelta, after.UnitKind)
			a.logger.Debug("reports compared", "files", len(c.Deltas))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list unchanged files too")
	return cmd
}

func loadReport(path string) (*report.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening report: %w", err)
	}
	defer f.Close()
	return report.Load(f)
}
