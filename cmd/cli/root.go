package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kcaldas/condenser/pkg/config"
	"github.com/kcaldas/condenser/pkg/logging"
	"github.com/kcaldas/condenser/pkg/version"
)

// app holds global flag values and state shared by subcommands.
type app struct {
	configFile string
	verbose    bool
	quiet      bool

	logger logging.Logger
	viper  *viper.Viper
}

// RootCmd is the command main executes.
var RootCmd = NewRootCommand()

// NewRootCommand builds the command tree with fresh flag state.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "condenser",
		Short: "Fit a source tree into a token budget",
		Long: `condenser prioritizes the files of a directory, splits a token or character
budget across them and condenses each file just enough to fit its share.`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.NewViper(a.configFile, ".env")
			if err != nil {
				return err
			}
			a.viper = v
			a.logger = newLogger(config.NewManager(v), a.verbose, a.quiet)
			logging.SetGlobalLogger(a.logger)
			if f := config.ConfigFileUsed(v); f != "" {
				a.logger.Debug("config loaded", "file", f)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default ~/.condenser.yaml or ./.condenser.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output (debug level)")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "quiet output (errors only)")
	root.SetVersionTemplate(version.GetInfo().String() + "\n")

	root.AddCommand(
		newRunCommand(a),
		newPlanCommand(a),
		newEstimateCommand(a),
		newChunkCommand(a),
		newDiffCommand(a),
		newCompareCommand(a),
		newVersionCommand(),
	)
	return root
}

// loadConfig applies the command's flags on top of file and environment
// settings and validates the result.
func (a *app) loadConfig(cmd *cobra.Command) (config.Config, error) {
	if err := bindBudgetFlags(a.viper, cmd); err != nil {
		return config.Config{}, fmt.Errorf("error binding flags: %w", err)
	}
	return config.FromViper(a.viper)
}

// newLogger builds the process logger from the flags and the log_format,
// debug_file and debug_level settings (CONDENSER_LOG_FORMAT and so on).
// A debug file replaces stderr logging.
func newLogger(m config.Manager, verbose, quiet bool) logging.Logger {
	format := logging.ParseFormat(m.GetStringWithDefault("log_format", "text"))
	if path := m.GetStringWithDefault("debug_file", ""); path != "" {
		level := logging.ParseLevel(m.GetStringWithDefault("debug_level", ""), slog.LevelError)
		return logging.NewFileLogger(path, level, format)
	}
	return logging.NewCLILogger(verbose, quiet, format)
}
