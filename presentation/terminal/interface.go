package terminal

import (
	"context"
	"fmt"
	"io"
	"os"

	"auth_harness/application/page"
	"auth_harness/application/runner"
	"auth_harness/application/wait"
	"auth_harness/domain/entities"
	"auth_harness/domain/interfaces"
	"auth_harness/infrastructure/browser"
	"auth_harness/infrastructure/config"
	"auth_harness/infrastructure/security"
	"auth_harness/infrastructure/storage"

	"github.com/sirupsen/logrus"
)

// TerminalInterface wires configuration, the browser launcher and the runner
// for one CLI invocation.
type TerminalInterface struct {
	cfg      *config.Config
	runner   *runner.Runner
	launcher interfaces.Launcher
	store    interfaces.ReportStore
	logger   *logrus.Logger
}

// NewLogger builds the process logger from configuration
func NewLogger(cfg *config.Config, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if cfg.JSONLogs {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
	return logger
}

// RunnerOptions maps configuration onto the runner's injected settings
func RunnerOptions(cfg *config.Config) runner.Options {
	return runner.Options{
		Target:            cfg.BaseURL,
		LoginURL:          cfg.LoginURL(),
		AuthURLPattern:    cfg.AuthURLRegexp(),
		NavigationTimeout: cfg.NavigationTimeout,
		WaitTimeout:       cfg.WaitTimeout,
		ScenarioTimeout:   cfg.ScenarioTimeout,
		Parallelism:       cfg.Parallelism,
		Credentials:       cfg.Credentials(),
	}
}

// NewTerminalInterface - starts the configured browser driver and builds the runner
func NewTerminalInterface(cfg *config.Config, logger *logrus.Logger) (*TerminalInterface, error) {
	if logger == nil {
		logger = NewLogger(cfg, os.Stderr)
	}

	overrides, err := config.LoadLocatorOverrides(cfg.LocatorFile)
	if err != nil {
		return nil, err
	}
	registry, err := page.NewLoginRegistry(overrides...)
	if err != nil {
		return nil, fmt.Errorf("invalid locator registry: %w", err)
	}

	store, err := storage.NewReportStore(cfg.ReportDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize report store: %w", err)
	}

	launcher, err := browser.NewLauncher(cfg, logrus.NewEntry(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize browser: %w", err)
	}

	redactor := security.NewRedactor(logger)
	r := runner.NewRunner(launcher, registry, wait.New(cfg.PollInterval), redactor, store, RunnerOptions(cfg), logger)

	return &TerminalInterface{
		cfg:      cfg,
		runner:   r,
		launcher: launcher,
		store:    store,
		logger:   logger,
	}, nil
}

// Run - executes the scenarios selected by the configured filter
func (t *TerminalInterface) Run(ctx context.Context) (*entities.Report, error) {
	scenarios := runner.Select(runner.LoginSuite(), t.cfg.Filter)
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("filter %q matches no scenario", t.cfg.Filter)
	}
	if t.cfg.Credentials().IsZero() {
		t.logger.Warn("HARNESS_EMAIL/HARNESS_PASSWORD not set, scenarios needing valid credentials will be skipped")
	}
	return t.runner.Run(ctx, scenarios)
}

// Close - shuts the browser driver down
func (t *TerminalInterface) Close() error {
	return t.launcher.Close()
}
