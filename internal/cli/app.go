package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/thruflo/nodewars/internal/api"
	"github.com/thruflo/nodewars/internal/artifact"
	"github.com/thruflo/nodewars/internal/config"
	"github.com/thruflo/nodewars/internal/deferred"
	"github.com/thruflo/nodewars/internal/logging"
	"github.com/thruflo/nodewars/internal/presenter"
	"github.com/thruflo/nodewars/internal/reference"
	"github.com/thruflo/nodewars/internal/workflow"
)

// appFs backs the reference and artifact stores.
// It can be overridden in tests.
var appFs afero.Fs = afero.NewOsFs()

// newTransport builds the transport used by commands.
// It can be overridden in tests.
var newTransport = func(cfg *config.Config) api.Transport {
	return api.NewHTTPTransport(cfg.APIKey, api.WithBaseURL(cfg.BaseURL))
}

// app bundles everything a command needs.
type app struct {
	base      string
	cfg       *config.Config
	workflow  *workflow.Workflow
	presenter *presenter.Presenter
}

func resolveBase() (string, error) {
	if baseDir != "" {
		abs, err := filepath.Abs(baseDir)
		if err != nil {
			return "", fmt.Errorf("failed to resolve --dir: %w", err)
		}
		return abs, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return cwd, nil
}

// loadApp reads the configuration and wires the workflow. With
// needCredentials the command fails early when no API key is configured.
func loadApp(cmd *cobra.Command, needCredentials bool) (*app, error) {
	base, err := resolveBase()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(appFs, base)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if needCredentials {
		if err := cfg.RequireCredentials(); err != nil {
			return nil, err
		}
	}

	lang, err := workflow.LookupLanguage(cfg.Language)
	if err != nil {
		return nil, err
	}

	log := logging.Default()
	store, err := reference.Open(appFs, config.Paths{Base: base}.DataFile(), reference.WithLogger(log))
	if err != nil {
		return nil, err
	}

	transport := newTransport(cfg)
	poller := deferred.New(transport,
		deferred.WithInterval(cfg.Poll.Interval),
		deferred.WithMaxWait(cfg.Poll.MaxWait),
		deferred.WithLogger(log),
	)
	pres := presenter.New(cmd.OutOrStdout())

	wf := workflow.New(transport, store, artifact.NewStore(appFs, cfg.ProjectDir), lang,
		workflow.WithReporter(pres),
		workflow.WithPoller(poller),
		workflow.WithLogger(log),
	)

	return &app{base: base, cfg: cfg, workflow: wf, presenter: pres}, nil
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func showStrategies(cmd *cobra.Command) {
	presenter.New(cmd.OutOrStdout()).Strategies(workflow.Strategies)
}
