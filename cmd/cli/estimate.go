package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kcaldas/condenser/pkg/tokens"
)

func newEstimateCommand(a *app) *cobra.Command {
	var characters bool
	cmd := &cobra.Command{
		Use:   "estimate [file|-]",
		Short: "Count the tokens of a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			opts := cfg.TokenOptions()
			if characters {
				opts.Unit = tokens.UnitCharacter
			} else {
				opts.Unit = tokens.UnitToken
			}
			sel := tokens.Select(opts)
			if sel.Degraded {
				a.logger.Warn("exact tokenizer unavailable, using heuristic", "error", sel.Cause)
			}

			_, text, err := readSource(cmd, args)
			if err != nil {
				return err
			}

			n := sel.Estimator.Estimate(text)
			fmt.Fprintf(cmd.OutOrStdout(), "%d %ss (%s)\n", n, sel.Estimator.Kind(), sel.Estimator.Name())
			return nil
		},
	}
	addEstimatorFlags(cmd)
	cmd.Flags().BoolVar(&characters, "chars", false, "count characters instead of tokens")
	return cmd
}
