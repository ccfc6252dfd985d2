package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"time"

	"auth_harness/application/assert"
	"auth_harness/application/page"
	"auth_harness/application/wait"
	"auth_harness/domain/entities"
	"auth_harness/domain/interfaces"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Runner struct {
	launcher interfaces.Launcher
	registry *page.Registry
	waiter   wait.Waiter
	redactor interfaces.Redactor
	store    interfaces.ReportStore
	opts     Options
	logger   *logrus.Logger
}

// NewRunner - creates the scenario orchestrator. store may be nil when
// reports should not be persisted.
func NewRunner(launcher interfaces.Launcher, registry *page.Registry, waiter wait.Waiter, redactor interfaces.Redactor, store interfaces.ReportStore, opts Options, logger *logrus.Logger) *Runner {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	return &Runner{
		launcher: launcher,
		registry: registry,
		waiter:   waiter,
		redactor: redactor,
		store:    store,
		opts:     opts,
		logger:   logger,
	}
}

// Run - executes scenarios in parallel and returns the report in scenario order
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) (*entities.Report, error) {
	if len(scenarios) == 0 {
		return nil, errors.New("no scenarios selected")
	}

	report := &entities.Report{
		RunID:     uuid.NewString(),
		Target:    r.opts.Target,
		Driver:    r.launcher.Name(),
		StartedAt: time.Now(),
	}
	r.logger.WithFields(logrus.Fields{
		"run_id":      report.RunID,
		"driver":      report.Driver,
		"scenarios":   len(scenarios),
		"parallelism": r.opts.Parallelism,
	}).Info("Starting run")

	results := make([]entities.ScenarioResult, len(scenarios))
	var g errgroup.Group
	g.SetLimit(r.opts.Parallelism)
	for i, sc := range scenarios {
		g.Go(func() error {
			results[i] = r.runScenario(ctx, report.RunID, sc)
			return nil
		})
	}
	_ = g.Wait()

	report.Results = results
	report.Duration = time.Since(report.StartedAt)

	counts := report.Counts()
	r.logger.WithFields(logrus.Fields{
		"run_id":  report.RunID,
		"passed":  counts[entities.StatusPassed],
		"failed":  counts[entities.StatusFailed],
		"errored": counts[entities.StatusError],
		"skipped": counts[entities.StatusSkipped],
	}).Info("Run finished")

	if r.store != nil {
		if err := r.store.SaveReport(report); err != nil {
			return report, fmt.Errorf("failed to save report: %w", err)
		}
	}
	return report, ctx.Err()
}

// runScenario - runs one scenario in its own browser session
func (r *Runner) runScenario(ctx context.Context, runID string, sc Scenario) (result entities.ScenarioResult) {
	start := time.Now()
	result = entities.ScenarioResult{Name: sc.Name, StartedAt: start}
	logger := r.logger.WithFields(logrus.Fields{"run_id": runID, "scenario": sc.Name})
	defer func() {
		result.Duration = time.Since(start)
		logger.WithFields(logrus.Fields{
			"status":   result.Status,
			"duration": result.Duration.Round(time.Millisecond),
		}).Info("Scenario finished")
	}()

	if r.opts.ScenarioTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.ScenarioTimeout)
		defer cancel()
	}

	logger.Info("Scenario started")

	session, err := r.launcher.NewSession(ctx)
	if err != nil {
		result.Status = entities.StatusError
		result.Error = fmt.Sprintf("failed to open browser session: %v", err)
		return result
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warnf("Failed to close browser session: %v", err)
		}
	}()

	loginPage, err := page.NewLoginPage(session, r.registry, r.waiter, r.redactor, page.LoginOptions{
		LoginURL:          r.opts.LoginURL,
		AuthURLPattern:    r.opts.AuthURLPattern,
		NavigationTimeout: r.opts.NavigationTimeout,
	}, logger)
	if err != nil {
		result.Status = entities.StatusError
		result.Error = err.Error()
		return result
	}

	engine := assert.New(logger)
	env := &Env{
		Page:        loginPage,
		Assert:      engine,
		Credentials: r.opts.Credentials,
		Options:     r.opts,
		Logger:      logger,
	}

	runErr := r.invoke(ctx, sc, env)
	result.Outcomes = engine.Outcomes()
	result.Status, result.Error = classify(runErr, engine)

	if result.Status == entities.StatusFailed || result.Status == entities.StatusError {
		if path := r.captureFailure(ctx, runID, sc.Name, session, logger); path != "" {
			result.Artifacts = append(result.Artifacts, path)
		}
	}
	return result
}

// invoke - calls the scenario body, turning a panic into an error
func (r *Runner) invoke(ctx context.Context, sc Scenario, env *Env) (err error) {
	defer func() {
		if p := recover(); p != nil {
			env.Logger.WithField("stack", string(debug.Stack())).Error("Scenario panicked")
			err = fmt.Errorf("scenario panicked: %v", p)
		}
	}()
	return sc.Run(ctx, env)
}

// classify maps a scenario's return value and soft outcomes onto a status
func classify(runErr error, engine *assert.Engine) (entities.ScenarioStatus, string) {
	switch {
	case runErr == nil && engine.Failed():
		failed := engine.Err()
		if failed == nil {
			// a hard failure whose error the scenario dropped
			return entities.StatusFailed, "hard assertion failed"
		}
		return entities.StatusFailed, failed.Error()
	case runErr == nil:
		return entities.StatusPassed, ""
	case errors.Is(runErr, entities.ErrSkipped):
		return entities.StatusSkipped, runErr.Error()
	case errors.Is(runErr, entities.ErrValidationMismatch), errors.Is(runErr, entities.ErrNavigationMismatch):
		return entities.StatusFailed, runErr.Error()
	default:
		return entities.StatusError, runErr.Error()
	}
}

// captureFailure - stores a screenshot of the failing session, returns "" when none was taken
func (r *Runner) captureFailure(ctx context.Context, runID, name string, session interfaces.Browser, logger *logrus.Entry) string {
	if r.store == nil {
		return ""
	}
	// the scenario context may already be spent
	shotCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	png, err := session.Screenshot(shotCtx)
	if err != nil {
		logger.Warnf("Failed to capture screenshot: %v", err)
		return ""
	}
	if len(png) == 0 {
		return ""
	}
	path, err := r.store.SaveArtifact(runID, name+".png", png)
	if err != nil {
		logger.Warnf("Failed to save screenshot: %v", err)
		return ""
	}
	logger.WithField("path", path).Info("Saved failure screenshot")
	return path
}
