package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/thruflo/nodewars/internal/config"
	"github.com/thruflo/nodewars/internal/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	baseDir string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "nodewars",
	Short: "Train on Codewars challenges from the command line",
	Long: `Nodewars fetches coding challenges from Codewars, writes a code template
for each one into your project directory, submits your solution for
evaluation, and finalizes it once it passes.

Progress is tracked locally in .nodewars/nwdata under the working directory.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: configureLogging,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("nodewars version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&baseDir, "dir", "C", "", "base directory holding .nodewars/ (default: current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests, polls, and state changes")
}

func configureLogging(cmd *cobra.Command, args []string) error {
	logging.SetOutput(cmd.ErrOrStderr())
	if verbose {
		logging.SetLevel(logging.LevelDebug)
		return nil
	}
	if name := os.Getenv(config.EnvLogLevel); name != "" {
		level, err := logging.ParseLevel(name)
		if err != nil {
			return fmt.Errorf("%s: %w", config.EnvLogLevel, err)
		}
		logging.SetLevel(level)
	}
	return nil
}

// Execute runs the root command. Cancelling ctx aborts in-flight requests
// and polling.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
