package browser

import (
	"fmt"

	"auth_harness/domain/interfaces"
	"auth_harness/infrastructure/config"

	"github.com/sirupsen/logrus"
)

// NewLauncher - starts the launcher selected by cfg.Driver
func NewLauncher(cfg *config.Config, logger *logrus.Entry) (interfaces.Launcher, error) {
	opts := Options{
		Browser:           cfg.Browser,
		Headless:          cfg.Headless,
		SlowMo:            cfg.SlowMo,
		ActionTimeout:     cfg.ActionTimeout,
		NavigationTimeout: cfg.NavigationTimeout,
		ChromeDriverPath:  cfg.ChromeDriverPath,
		ChromeBinaryPath:  cfg.ChromeBinaryPath,
		SeleniumPort:      cfg.SeleniumPort,
		Logger:            logger,
	}

	switch cfg.Driver {
	case config.DriverPlaywright:
		return NewPlaywrightLauncher(opts)
	case config.DriverSelenium:
		return NewSeleniumLauncher(opts)
	case config.DriverChromedp:
		return NewChromedpLauncher(opts)
	case config.DriverSimulated:
		return NewSimulatedLauncher(SimulatedAppFromConfig(cfg)), nil
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}
}

// SimulatedAppFromConfig - models the configured target, accepting the configured credentials
func SimulatedAppFromConfig(cfg *config.Config) SimulatedApp {
	app := DefaultSimulatedApp(cfg.BaseURL)
	app.LoginPath = cfg.LoginPath
	app.ForgotPasswordPath = cfg.ForgotPasswordPath
	if cred := cfg.Credentials(); !cred.IsZero() {
		app.Accounts[cred.Email] = cred.Password
	}
	return app
}
