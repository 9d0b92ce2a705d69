package cli

import (
	"fmt"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/thruflo/nodewars/internal/api"
	"github.com/thruflo/nodewars/internal/workflow"
)

// openURL launches the system browser.
// It can be overridden in tests.
var openURL = browser.OpenURL

var openCmd = &cobra.Command{
	Use:   "open <id|slug>",
	Short: "Open a challenge's page in the browser",
	Long: `Opens the Codewars page for a challenge. Recorded challenges are resolved
to their slug locally; anything else is treated as a slug.

Example:
  nodewars open multiply`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd, false)
	if err != nil {
		return err
	}

	c, err := a.workflow.CachedChallenge(args[0])
	if err != nil {
		c = &api.Challenge{Slug: args[0]}
		if rec, err := a.workflow.Lookup(args[0]); err == nil {
			c.Slug = rec.Slug
		}
	}

	url := workflow.KataURL(c)
	fmt.Fprintf(cmd.OutOrStdout(), "Opening %s\n", url)
	return openURL(url)
}
