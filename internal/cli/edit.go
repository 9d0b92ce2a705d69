package cli

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// runEditor opens path in editor, attached to the terminal.
// It can be overridden in tests.
var runEditor = func(editor, path string) error {
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		return fmt.Errorf("no editor configured")
	}

	oldState, err := term.GetState(int(os.Stdin.Fd()))
	if err != nil {
		oldState = nil
	}

	editorCmd := exec.Command(fields[0], append(fields[1:], path)...)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr
	runErr := editorCmd.Run()

	if oldState != nil {
		if restoreErr := term.Restore(int(os.Stdin.Fd()), oldState); restoreErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to restore terminal: %v\n", restoreErr)
		}
	}

	if runErr != nil {
		return fmt.Errorf("%s exited with error: %w", fields[0], runErr)
	}
	return nil
}

var editCmd = &cobra.Command{
	Use:   "edit <id|slug>",
	Short: "Open a challenge's code file in your editor",
	Long: `Opens the code template written by train or next in the configured
editor (editor in config.yaml, NODEWARS_EDITOR, or EDITOR).

Example:
  nodewars edit multiply`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd, false)
	if err != nil {
		return err
	}

	path, err := a.workflow.CodeFilePath(args[0])
	if err != nil {
		return err
	}
	if _, err := appFs.Stat(path); err != nil {
		return fmt.Errorf("no code file for %s; run 'nodewars train %s' first", args[0], args[0])
	}
	return runEditor(a.cfg.Editor, path)
}
