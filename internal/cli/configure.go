package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thruflo/nodewars/internal/config"
	"github.com/thruflo/nodewars/internal/workflow"
	"golang.org/x/term"
)

var (
	configureUsername   string
	configureAPIKey     string
	configureProjectDir string
	configureLanguage   string
	configureYes        bool
)

// readSecret reads the API key without echo when stdin is a terminal.
// It can be overridden in tests.
var readSecret = func(in *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		return string(b), err
	}
	return readLine(in)
}

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Set your Codewars credentials and project directory",
	Long: `Writes .nodewars/config.yaml under the base directory.

Values passed as flags are used as-is; anything missing is prompted for.
Your API key is available at https://www.codewars.com/users/edit.

Example:
  nodewars configure
  nodewars configure --username alice --api-key KEY --language python --yes`,
	Args: cobra.NoArgs,
	RunE: runConfigure,
}

func init() {
	configureCmd.Flags().StringVar(&configureUsername, "username", "", "Codewars username")
	configureCmd.Flags().StringVar(&configureAPIKey, "api-key", "", "Codewars API key")
	configureCmd.Flags().StringVar(&configureProjectDir, "project-dir", "", "where challenge files are written")
	configureCmd.Flags().StringVar(&configureLanguage, "language", "", "training language")
	configureCmd.Flags().BoolVarP(&configureYes, "yes", "y", false, "save without asking for confirmation")
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	base, err := resolveBase()
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if config.Exists(appFs, base) {
		existing, err := config.LoadConfig(appFs, base)
		if err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		cfg = *existing
		if rel, err := filepath.Rel(base, cfg.ProjectDir); err == nil && !strings.HasPrefix(rel, "..") {
			cfg.ProjectDir = rel
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "It's probably your first time. Let's get some basic information.")
		fmt.Fprintln(cmd.OutOrStdout())
	}

	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())

	for {
		if err := promptConfig(out, in, &cfg); err != nil {
			return err
		}
		if configureYes {
			break
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Does this look correct?")
		fmt.Fprintf(out, "  username:    %s\n", cfg.Username)
		fmt.Fprintf(out, "  api key:     %s\n", maskKey(cfg.APIKey))
		fmt.Fprintf(out, "  project dir: %s\n", cfg.ProjectDir)
		fmt.Fprintf(out, "  language:    %s\n", cfg.Language)

		ok, err := confirm(out, in)
		if err != nil {
			return err
		}
		if ok {
			break
		}
		configureUsername, configureAPIKey, configureProjectDir, configureLanguage = "", "", "", ""
	}

	if err := config.ValidateConfig(&cfg); err != nil {
		return err
	}
	if err := config.SaveConfig(appFs, base, &cfg); err != nil {
		return err
	}

	projectDir := cfg.ProjectDir
	if !filepath.IsAbs(projectDir) {
		projectDir = filepath.Join(base, projectDir)
	}
	if err := appFs.MkdirAll(projectDir, 0o755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	fmt.Fprintf(out, "Saved %s\n", config.Paths{Base: base}.ConfigFile())
	return nil
}

func promptConfig(out io.Writer, in *bufio.Reader, cfg *config.Config) error {
	var err error
	if cfg.Username, err = promptValue(out, in, "Codewars username", configureUsername, cfg.Username); err != nil {
		return err
	}

	switch {
	case configureAPIKey != "":
		cfg.APIKey = configureAPIKey
	case configureYes && cfg.APIKey != "":
	default:
		fmt.Fprint(out, "Codewars API key (available at https://www.codewars.com/users/edit)")
		if cfg.APIKey != "" {
			fmt.Fprintf(out, " [%s]", maskKey(cfg.APIKey))
		}
		fmt.Fprint(out, ": ")
		key, err := readSecret(in)
		if err != nil {
			return err
		}
		if key = strings.TrimSpace(key); key != "" {
			cfg.APIKey = key
		}
		if cfg.APIKey == "" {
			return errors.New("an API key is required")
		}
	}

	if cfg.ProjectDir, err = promptValue(out, in, "Where would you like to store project data?", configureProjectDir, cfg.ProjectDir); err != nil {
		return err
	}

	prompt := fmt.Sprintf("Language (%s)", strings.Join(workflow.LanguageNames(), ", "))
	if cfg.Language, err = promptValue(out, in, prompt, configureLanguage, cfg.Language); err != nil {
		return err
	}
	if _, err := workflow.LookupLanguage(cfg.Language); err != nil {
		return err
	}
	return nil
}

// promptValue returns flag when set, otherwise asks with current as the
// default answer. With --yes a non-empty current value is kept unasked.
func promptValue(out io.Writer, in *bufio.Reader, prompt, flag, current string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if configureYes && current != "" {
		return current, nil
	}
	if current != "" {
		fmt.Fprintf(out, "%s [%s]: ", prompt, current)
	} else {
		fmt.Fprintf(out, "%s: ", prompt)
	}
	answer, err := readLine(in)
	if err != nil {
		return "", err
	}
	if answer == "" {
		if current == "" {
			return "", fmt.Errorf("%s: a value is required", prompt)
		}
		return current, nil
	}
	return answer, nil
}

func confirm(out io.Writer, in *bufio.Reader) (bool, error) {
	for {
		fmt.Fprint(out, "yes/no [yes]: ")
		answer, err := readLine(in)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "", "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(out, "Must respond yes or no")
	}
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", errors.New("unexpected end of input")
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
