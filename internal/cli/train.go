package cli

import (
	"github.com/spf13/cobra"
)

var trainCmd = &cobra.Command{
	Use:   "train <id|slug>",
	Short: "Start training on a specific challenge",
	Long: `Starts a training session for a challenge, saves the session in the
project directory, and writes a code template with the description, the
provided setup code, and the sample tests. Write your solution below the
begin-code line.

Training is refused while a submission is pending (QUEUED) or a passing
solution awaits finalizing (FINAL).

Example:
  nodewars train multiply`,
	Args: cobra.ExactArgs(1),
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd, true)
	if err != nil {
		return err
	}
	_, err = a.workflow.StartTraining(commandContext(cmd), args[0])
	return err
}
