package cli

import (
	"fmt"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/kcaldas/condenser/pkg/discovery"
)

func newDiffCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <dir> <path>",
		Short: "Show how one file was condensed",
		Long: `Run the budget over dir and print a unified diff between the original and
the condensed form of path, which is relative to dir.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, rel := args[0], filepath.ToSlash(filepath.Clean(args[1]))
			r, rep, err := a.condenseDir(cmd, dir)
			if err != nil {
				return err
			}
			f, ok := rep.Lookup(rel)
			if !ok {
				return fmt.Errorf("%s was not part of the run", rel)
			}
			original, err := r.Files.ReadFile(discovery.Join(dir, rel))
			if err != nil {
				return err
			}

			diff, err := unifiedDiff(rel, string(original), f.Text)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s: %s, %d/%d %ss\n", rel, f.Level, f.FinalUnits, f.AllocatedUnits, rep.UnitKind)
			_, err = fmt.Fprint(cmd.OutOrStdout(), diff)
			return err
		},
	}
	addBudgetFlags(cmd)
	return cmd
}

func unifiedDiff(path, before, after string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: path,
		ToFile:   path + " (condensed)",
		Context:  3,
		Eol:      "\n",
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("error generating diff: %w", err)
	}
	return text, nil
}
