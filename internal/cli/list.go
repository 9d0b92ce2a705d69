package cli

import (
	"github.com/spf13/cobra"
	"github.com/thruflo/nodewars/internal/reference"
)

var listCmd = &cobra.Command{
	Use:   "list [state]",
	Short: "List locally recorded challenges",
	Long: `Lists recorded challenges grouped by state. Pass a state (SAVED, ACTIVE,
QUEUED, FINAL, COMPLETED) to show only that group.

Example:
  nodewars list
  nodewars list active`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	var filter reference.State
	if len(args) > 0 {
		st, err := reference.ParseState(args[0])
		if err != nil {
			return err
		}
		filter = st
	}

	a, err := loadApp(cmd, false)
	if err != nil {
		return err
	}
	a.presenter.Records(a.workflow.List(filter))
	return nil
}
