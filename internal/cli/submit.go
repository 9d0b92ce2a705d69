package cli

import (
	"github.com/spf13/cobra"
)

var submitCmd = &cobra.Command{
	Use:   "submit <id|slug>",
	Short: "Submit your solution and wait for the result",
	Long: `Sends the code below the begin-code line for evaluation and polls until
the result is ready. A passing solution moves the challenge to FINAL; a
failing one returns it to ACTIVE so you can try again.

Example:
  nodewars submit multiply`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd, true)
	if err != nil {
		return err
	}
	_, err = a.workflow.SubmitSolution(commandContext(cmd), args[0])
	return err
}
