package cli

import (
	"github.com/spf13/cobra"
	"github.com/thruflo/nodewars/internal/reference"
)

var infoSave bool

var infoCmd = &cobra.Command{
	Use:   "info <id|slug>",
	Short: "Show a challenge's details",
	Long: `Fetches challenge metadata and prints it along with the local state.

With --save the metadata is written to the project directory and the
challenge is recorded as SAVED. A challenge that is already recorded keeps
its state.

Example:
  nodewars info multiply
  nodewars info 5277c8a221e9f97d4e000001 --save`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().BoolVarP(&infoSave, "save", "s", false, "record the challenge locally as SAVED")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd, true)
	if err != nil {
		return err
	}

	c, err := a.workflow.FetchChallenge(commandContext(cmd), args[0], infoSave)
	if err != nil {
		return err
	}

	var state reference.State
	rec, err := a.workflow.Lookup(c.ID)
	if err == nil {
		state = rec.State
	}
	a.presenter.Challenge(c, state, a.cfg.Language)
	if infoSave && state != "" {
		a.presenter.Saved(rec)
	}
	return nil
}
