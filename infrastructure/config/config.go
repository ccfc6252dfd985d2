package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"auth_harness/domain/entities"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

const envPrefix = "HARNESS"

// Supported driver names
const (
	DriverPlaywright = "playwright"
	DriverSelenium   = "selenium"
	DriverChromedp   = "chromedp"
	DriverSimulated  = "simulated"
)

var knownDrivers = []string{DriverPlaywright, DriverSelenium, DriverChromedp, DriverSimulated}

// Config is built once by the CLI and injected everywhere else.
// Nothing below the CLI reads the environment.
type Config struct {
	BaseURL            string
	LoginPath          string
	ForgotPasswordPath string
	AuthURLPattern     string

	Driver           string
	Browser          string
	Headless         bool
	SlowMo           time.Duration
	ChromeDriverPath string
	ChromeBinaryPath string
	SeleniumPort     int

	ActionTimeout     time.Duration
	NavigationTimeout time.Duration
	WaitTimeout       time.Duration
	PollInterval      time.Duration
	ScenarioTimeout   time.Duration

	Parallelism int
	Filter      string
	ReportDir   string
	LocatorFile string

	LogLevel string
	JSONLogs bool

	Email    string
	Password string
}

// flagKeys maps CLI flag names onto config keys
var flagKeys = map[string]string{
	"base-url":     "base_url",
	"driver":       "driver",
	"browser":      "browser",
	"headless":     "headless",
	"parallel":     "parallelism",
	"filter":       "filter",
	"report-dir":   "report_dir",
	"locators":     "locator_file",
	"log-level":    "log_level",
	"json-logs":    "json_logs",
	"wait-timeout": "wait_timeout",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "https://webapp.sacredgroves.earth")
	v.SetDefault("login_path", "/")
	v.SetDefault("forgot_password_path", "/login/forget")
	v.SetDefault("auth_url_pattern", "/user")
	v.SetDefault("driver", DriverPlaywright)
	v.SetDefault("browser", "chromium")
	v.SetDefault("headless", true)
	v.SetDefault("slow_mo", time.Duration(0))
	v.SetDefault("selenium_port", 9515)
	v.SetDefault("action_timeout", 5*time.Second)
	v.SetDefault("navigation_timeout", 30*time.Second)
	v.SetDefault("wait_timeout", 10*time.Second)
	v.SetDefault("poll_interval", 100*time.Millisecond)
	v.SetDefault("scenario_timeout", 2*time.Minute)
	v.SetDefault("parallelism", 2)
	v.SetDefault("log_level", "info")
	v.SetDefault("json_logs", false)
}

// Load reads .env (optional), HARNESS_* environment variables and any
// explicitly set flags, in increasing order of precedence.
func Load(flags *pflag.FlagSet) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if flags != nil {
		for flagName, key := range flagKeys {
			if f := flags.Lookup(flagName); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", flagName, err)
				}
			}
		}
	}

	cfg := &Config{
		BaseURL:            strings.TrimRight(v.GetString("base_url"), "/"),
		LoginPath:          v.GetString("login_path"),
		ForgotPasswordPath: v.GetString("forgot_password_path"),
		AuthURLPattern:     v.GetString("auth_url_pattern"),
		Driver:             strings.ToLower(v.GetString("driver")),
		Browser:            strings.ToLower(v.GetString("browser")),
		Headless:           v.GetBool("headless"),
		SlowMo:             v.GetDuration("slow_mo"),
		ChromeDriverPath:   v.GetString("chromedriver_path"),
		ChromeBinaryPath:   v.GetString("chrome_binary_path"),
		SeleniumPort:       v.GetInt("selenium_port"),
		ActionTimeout:      v.GetDuration("action_timeout"),
		NavigationTimeout:  v.GetDuration("navigation_timeout"),
		WaitTimeout:        v.GetDuration("wait_timeout"),
		PollInterval:       v.GetDuration("poll_interval"),
		ScenarioTimeout:    v.GetDuration("scenario_timeout"),
		Parallelism:        v.GetInt("parallelism"),
		Filter:             v.GetString("filter"),
		ReportDir:          v.GetString("report_dir"),
		LocatorFile:        v.GetString("locator_file"),
		LogLevel:           v.GetString("log_level"),
		JSONLogs:           v.GetBool("json_logs"),
		Email:              v.GetString("email"),
		Password:           v.GetString("password"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv loads .env when present; a missing file is fine
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Validate rejects configurations the harness cannot run with
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("base url %q must be absolute", c.BaseURL))
	}

	known := false
	for _, d := range knownDrivers {
		if c.Driver == d {
			known = true
			break
		}
	}
	if !known {
		errs = append(errs, fmt.Errorf("unknown driver %q (want one of %s)", c.Driver, strings.Join(knownDrivers, ", ")))
	}

	for name, d := range map[string]time.Duration{
		"action timeout":     c.ActionTimeout,
		"navigation timeout": c.NavigationTimeout,
		"wait timeout":       c.WaitTimeout,
		"poll interval":      c.PollInterval,
		"scenario timeout":   c.ScenarioTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}

	if c.Parallelism < 1 {
		errs = append(errs, fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism))
	}

	if _, err := regexp.Compile(c.AuthURLPattern); err != nil {
		errs = append(errs, fmt.Errorf("auth url pattern: %w", err))
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return multierr.Combine(errs...)
}

// Credentials returns the environment-supplied valid credential pair
func (c *Config) Credentials() entities.Credential {
	return entities.Credential{Email: c.Email, Password: c.Password}
}

// LoginURL is the login entry point
func (c *Config) LoginURL() string {
	return c.BaseURL + ensureLeadingSlash(c.LoginPath)
}

// AuthURLRegexp compiles the authenticated-area pattern
func (c *Config) AuthURLRegexp() *regexp.Regexp {
	return regexp.MustCompile(c.AuthURLPattern)
}

func ensureLeadingSlash(p string) string {
	if p == "" || strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}
