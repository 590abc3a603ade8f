package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// budgetFlags maps flag names onto config keys.
var budgetFlags = map[string]string{
	"strategy":                "strategy",
	"critical-files":          "critical_paths",
	"min-floor":               "minimum_floor_units",
	"timeout-ms":              "per_file_timeout_ms",
	"run-timeout-ms":          "run_timeout_ms",
	"workers":                 "workers",
	"estimator":               "estimator",
	"token-estimation-method": "estimation_method",
	"encoding":                "encoding",
	"model":                   "model",
	"tokenizer-dir":           "tokenizer_dir",
	"max-file-size":           "max_file_bytes",
	"budget-ratio":            "budget_ratio",
}

func addEstimatorFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("estimator", "", "token counting: heuristic or exact")
	f.String("token-estimation-method", "", "heuristic ratio: conservative, average or optimistic")
	f.String("encoding", "", "tiktoken encoding for exact counting (default cl100k_base)")
	f.String("model", "", "model name; picks the tiktoken encoding and the default budget")
	f.String("tokenizer-dir", "", "directory holding tiktoken rank files")
}

func addBudgetFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("token-limit", 0, "total budget in tokens")
	f.Int("char-limit", 0, "total budget in characters (overrides --token-limit)")
	f.String("strategy", "", "allocation strategy: conservative, balanced or aggressive")
	f.StringSlice("critical-files", nil, "comma-separated patterns of files reserved in full")
	f.Int("min-floor", 0, "minimum units per non-critical file")
	f.Int("timeout-ms", 0, "per-file condensing timeout in milliseconds")
	f.Int("run-timeout-ms", 0, "whole-run timeout in milliseconds")
	f.Int("workers", 0, "parallel workers (default one per CPU)")
	f.Int64("max-file-size", 0, "skip files larger than this many bytes")
	f.Float64("budget-ratio", 0, "share of the model context window used when no limit is given")
	addEstimatorFlags(cmd)
}

// bindBudgetFlags gives explicitly set flags precedence over config files
// and the environment.
func bindBudgetFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range budgetFlags {
		if fl := cmd.Flags().Lookup(name); fl != nil {
			if err := v.BindPFlag(key, fl); err != nil {
				return err
			}
		}
	}
	f := cmd.Flags()
	switch {
	case f.Changed("char-limit"):
		n, _ := f.GetInt("char-limit")
		v.Set("unit_kind", "character")
		v.Set("total_units", n)
	case f.Changed("token-limit"):
		n, _ := f.GetInt("token-limit")
		v.Set("unit_kind", "token")
		v.Set("total_units", n)
	}
	return nil
}
