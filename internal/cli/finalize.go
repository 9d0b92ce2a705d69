package cli

import (
	"github.com/spf13/cobra"
	"github.com/thruflo/nodewars/internal/workflow"
)

var finalizeCmd = &cobra.Command{
	Use:   "finalize <id|slug>",
	Short: "Publish a passing solution",
	Long: `Finalizes a challenge whose last submission passed (state FINAL) and
marks it COMPLETED. Nothing is sent unless the challenge is FINAL.

Example:
  nodewars finalize multiply`,
	Args: cobra.ExactArgs(1),
	RunE: runFinalize,
}

func init() {
	rootCmd.AddCommand(finalizeCmd)
}

func runFinalize(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd, true)
	if err != nil {
		return err
	}
	err = a.workflow.FinalizeSolution(commandContext(cmd), args[0])
	if workflow.IsInvalidState(err) {
		a.presenter.NotFinal(args[0])
	}
	return err
}
