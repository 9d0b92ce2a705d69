package cli

import (
	"github.com/spf13/cobra"
	"github.com/thruflo/nodewars/internal/workflow"
)

var nextStrategies bool

var nextCmd = &cobra.Command{
	Use:   "next [strategy]",
	Short: "Start training on the next challenge the service picks",
	Long: `Asks Codewars to choose your next challenge using a selection strategy,
starts a training session for it, and writes the code template.

Run with --strategies to list the available strategies.

Example:
  nodewars next
  nodewars next kyu_7_workout`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNext,
}

func init() {
	nextCmd.Flags().BoolVar(&nextStrategies, "strategies", false, "list strategies and exit")
	rootCmd.AddCommand(nextCmd)
}

func runNext(cmd *cobra.Command, args []string) error {
	if nextStrategies {
		showStrategies(cmd)
		return nil
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	}
	strategy, err := workflow.ParseStrategy(name)
	if err != nil {
		showStrategies(cmd)
		return err
	}

	a, err := loadApp(cmd, true)
	if err != nil {
		return err
	}
	_, err = a.workflow.TrainNext(commandContext(cmd), strategy)
	return err
}
