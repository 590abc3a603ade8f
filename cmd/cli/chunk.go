package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kcaldas/condenser/pkg/chunk"
	"github.com/kcaldas/condenser/pkg/tokens"
)

func newChunkCommand(a *app) *cobra.Command {
	var (
		size       int
		characters bool
		name       string
		noFrame    bool
	)
	cmd := &cobra.Command{
		Use:   "chunk [file|-]",
		Short: "Split one file into parts that each fit a size",
		Long: `chunk splits a file into parts of at most --size tokens (or characters with
--chars), cutting between functions, classes and blocks where it can. Parts
after the first carry a continuation header naming their position.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if size <= 0 {
				return fmt.Errorf("--size must be positive")
			}
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			opts := cfg.TokenOptions()
			opts.Unit = tokens.UnitToken
			if characters {
				opts.Unit = tokens.UnitCharacter
			}
			sel := tokens.Select(opts)
			if sel.Degraded {
				a.logger.Warn("exact tokenizer unavailable, using heuristic", "error", sel.Cause)
			}

			source, text, err := readSource(cmd, args)
			if err != nil {
				return err
			}
			if name == "" {
				name = source
				if source == "-" {
					name = "stdin.txt"
				}
			}

			chunkOpts := []chunk.Option{chunk.WithLogger(a.logger.With("phase", "chunk"))}
			if noFrame {
				chunkOpts = append(chunkOpts, chunk.WithoutFrame())
			}
			c := chunk.New(sel.Estimator, chunkOpts...)
			parts, err := c.Split(cmd.Context(), name, text, size)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, p := range parts {
				if i > 0 && !noFrame {
					fmt.Fprintln(out)
				}
				fmt.Fprint(out, p.Text)
				if p.OverBudget {
					a.logger.Warn("part over size", "part", p.Part, "units", p.Units, "size", size)
				}
			}
			if !a.quiet {
				st := c.Stats()
				fmt.Fprintf(cmd.ErrOrStderr(), "%d parts, %d split constructs, %d continuation notes (%s)\n",
					len(parts), st.SplitUnits, st.Continuations, sel.Estimator.Name())
			}
			return nil
		},
	}
	addEstimatorFlags(cmd)
	f := cmd.Flags()
	f.IntVar(&size, "size", 0, "largest part, in tokens or characters")
	f.BoolVar(&characters, "chars", false, "measure parts in characters instead of tokens")
	f.StringVar(&name, "name", "", "path used to detect the language (default the file name)")
	f.BoolVar(&noFrame, "no-frame", false, "leave out part headers and continuation notes")
	return cmd
}
