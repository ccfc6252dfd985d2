package terminal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auth_harness/application/page"
	"auth_harness/application/runner"
	"auth_harness/domain/entities"
	"auth_harness/infrastructure/config"
	"auth_harness/infrastructure/storage"

	"github.com/spf13/cobra"
)

// ExitError carries a process exit code out of a command
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCommand().ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

// NewRootCommand builds the auth-harness command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "auth-harness",
		Short:         "Verify login, forgot-password and credential validation flows in a real browser",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("report-dir", "", "directory for JSON reports and screenshots (default ~/.auth_harness/reports)")
	root.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	root.PersistentFlags().Bool("json-logs", false, "emit logs as JSON")

	root.AddCommand(newRunCommand(), newListCommand(), newLocatorsCommand(), newReportCommand())
	return root
}

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scenario suite against the target",
		Long: `Run the login, credential validation and forgot-password scenarios.

Every scenario gets its own browser session. Valid credentials are read from
HARNESS_EMAIL and HARNESS_PASSWORD (or .env); scenarios that need them are
skipped when they are not set.

The exit status is 0 when every scenario passed or was skipped, 1 otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}

			ti, err := NewTerminalInterface(cfg, NewLogger(cfg, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer ti.Close()

			report, runErr := ti.Run(cmd.Context())
			if report != nil {
				RenderReport(cmd.OutOrStdout(), report)
			}
			if runErr != nil {
				return runErr
			}
			if code := report.ExitCode(); code != 0 {
				return &ExitError{Code: code}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("driver", config.DriverPlaywright, "browser driver: playwright, selenium, chromedp or simulated")
	flags.String("base-url", "", "target application base URL")
	flags.String("browser", "chromium", "browser for the playwright driver: chromium, firefox or webkit")
	flags.Bool("headless", true, "run the browser without a window")
	flags.Int("parallel", 2, "number of scenarios to run at once")
	flags.String("filter", "", "comma separated tags or name fragments to select scenarios")
	flags.String("locators", "", "YAML file with locator overrides")
	flags.Duration("wait-timeout", 10*time.Second, "how long to wait for asynchronous page state")
	return cmd
}

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the scenarios in the suite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := cmd.Flags().GetString("filter")
			if err != nil {
				return err
			}
			scenarios := runner.Select(runner.LoginSuite(), filter)
			if len(scenarios) == 0 {
				return fmt.Errorf("filter %q matches no scenario", filter)
			}
			RenderScenarioList(cmd.OutOrStdout(), scenarios)
			return nil
		},
	}
	cmd.Flags().String("filter", "", "comma separated tags or name fragments to select scenarios")
	return cmd
}

func newLocatorsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locators",
		Short: "Show the locator of every page element, overrides applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cmd.Flags().GetString("locators")
			if err != nil {
				return err
			}
			overrides, err := config.LoadLocatorOverrides(path)
			if err != nil {
				return err
			}
			registry, err := page.NewLoginRegistry(overrides...)
			if err != nil {
				return fmt.Errorf("invalid locator registry: %w", err)
			}
			RenderLocators(cmd.OutOrStdout(), registry)
			return nil
		},
	}
	cmd.Flags().String("locators", "", "YAML file with locator overrides")
	return cmd
}

func newReportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "report [run-id]",
		Short: "Show a stored report, the latest one by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cmd.Flags().GetString("report-dir")
			if err != nil {
				return err
			}
			store, err := storage.NewReportStore(dir)
			if err != nil {
				return err
			}

			var report *entities.Report
			if len(args) == 1 {
				report, err = store.LoadReport(args[0])
			} else {
				report, err = store.LatestReport()
			}
			if err != nil {
				return err
			}

			RenderReport(cmd.OutOrStdout(), report)
			if code := report.ExitCode(); code != 0 {
				return &ExitError{Code: code}
			}
			return nil
		},
	}
}
