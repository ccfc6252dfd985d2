package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"auth_harness/domain/entities"
	"auth_harness/domain/interfaces"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
)

const defaultSeleniumPort = 9515

// seleniumLauncher owns the ChromeDriver service; every session is its own WebDriver
type seleniumLauncher struct {
	service      *selenium.Service
	port         int
	chromeBinary string
	opts         Options
	logger       *logrus.Entry
}

// findChromeDriver - finds ChromeDriver executable path
func findChromeDriver(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured, nil
		}
		return "", fmt.Errorf("chromedriver not found at %s", configured)
	}

	commonPaths := []string{
		"/usr/local/bin/chromedriver",
		"/usr/bin/chromedriver",
		"/opt/homebrew/bin/chromedriver",
		filepath.Join(os.Getenv("HOME"), "bin", "chromedriver"),
	}

	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := exec.LookPath("chromedriver"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("chromedriver not found. Please install it or set HARNESS_CHROMEDRIVER_PATH")
}

// findChromeBinary - finds Chrome/Chromium browser executable path
func findChromeBinary(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	chromePaths := []string{
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	}

	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	return ""
}

// NewSeleniumLauncher - starts a ChromeDriver service
func NewSeleniumLauncher(opts Options) (interfaces.Launcher, error) {
	logger := opts.logger().WithField("driver", "selenium")

	driverPath, err := findChromeDriver(opts.ChromeDriverPath)
	if err != nil {
		return nil, fmt.Errorf("failed to find chromedriver: %w", err)
	}
	logger.Infof("Using ChromeDriver at: %s", driverPath)

	chromeBinary := findChromeBinary(opts.ChromeBinaryPath)
	if chromeBinary != "" {
		logger.Infof("Using Chrome binary at: %s", chromeBinary)
	}

	port := opts.SeleniumPort
	if port <= 0 {
		port = defaultSeleniumPort
	}

	service, err := selenium.NewChromeDriverService(driverPath, port)
	if err != nil {
		return nil, fmt.Errorf("failed to start chromedriver: %w", err)
	}

	return &seleniumLauncher{
		service:      service,
		port:         port,
		chromeBinary: chromeBinary,
		opts:         opts,
		logger:       logger,
	}, nil
}

// Name - returns the driver name
func (l *seleniumLauncher) Name() string {
	return "selenium"
}

// NewSession - opens a new WebDriver session with a throwaway profile
func (l *seleniumLauncher) NewSession(ctx context.Context) (interfaces.Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	caps := selenium.Capabilities{
		"browserName": "chrome",
	}

	args := append([]string{}, chromeArgs...)
	if l.opts.Headless {
		args = append(args, "--headless=new", "--window-size=1280,720")
	}
	chromeCaps := chrome.Capabilities{Args: args}
	if l.chromeBinary != "" {
		chromeCaps.Path = l.chromeBinary
	}
	caps.AddChrome(chromeCaps)

	wd, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", l.port))
	if err != nil {
		if strings.Contains(err.Error(), "cannot find Chrome binary") {
			return nil, fmt.Errorf("failed to create webdriver: Chrome browser not found. Please install Google Chrome or set HARNESS_CHROME_BINARY_PATH. Error: %w", err)
		}
		return nil, fmt.Errorf("failed to create webdriver: %w", err)
	}

	if err := wd.SetPageLoadTimeout(l.opts.navigationTimeout()); err != nil {
		l.logger.Warnf("Failed to set page load timeout: %v", err)
	}

	return &seleniumSession{wd: wd}, nil
}

// Close - stops the ChromeDriver service
func (l *seleniumLauncher) Close() error {
	if l.service == nil {
		return nil
	}
	err := l.service.Stop()
	l.service = nil
	if err != nil {
		return fmt.Errorf("failed to stop chromedriver: %w", err)
	}
	return nil
}

type seleniumSession struct {
	wd selenium.WebDriver
}

// find - resolves the first element matching the locator
func (s *seleniumSession) find(ctx context.Context, action string, loc entities.Locator) (selenium.WebElement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	by, value, err := seleniumQuery(loc)
	if err != nil {
		return nil, err
	}

	elements, err := s.wd.FindElements(by, value)
	if err != nil {
		if strings.Contains(err.Error(), "no such element") {
			return nil, entities.NewElementNotFound(action, loc)
		}
		return nil, fmt.Errorf("%s %s: %w", action, loc, err)
	}
	if len(elements) == 0 {
		return nil, entities.NewElementNotFound(action, loc)
	}
	return elements[0], nil
}

// seleniumQuery - maps a locator onto a WebDriver lookup strategy
func seleniumQuery(loc entities.Locator) (string, string, error) {
	switch loc.Strategy {
	case entities.ByID:
		return selenium.ByID, loc.Pattern, nil
	case entities.ByCSS:
		return selenium.ByCSSSelector, loc.Pattern, nil
	default:
		xpath, err := toXPath(loc)
		if err != nil {
			return "", "", err
		}
		return selenium.ByXPATH, xpath, nil
	}
}

// Navigate - navigates browser to specified URL
func (s *seleniumSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.wd.Get(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// CurrentURL - returns the browser location
func (s *seleniumSession) CurrentURL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.wd.CurrentURL()
}

// Inspect - reports attachment and visibility of the first match
func (s *seleniumSession) Inspect(ctx context.Context, loc entities.Locator) (entities.ElementState, error) {
	element, err := s.find(ctx, "inspect", loc)
	if err != nil {
		if isNotFound(err) {
			return entities.ElementState{}, nil
		}
		return entities.ElementState{}, err
	}
	visible, err := element.IsDisplayed()
	if err != nil {
		// the element went stale between lookup and check
		if strings.Contains(err.Error(), "stale element") {
			return entities.ElementState{}, nil
		}
		return entities.ElementState{}, fmt.Errorf("inspect %s: %w", loc, err)
	}
	return entities.ElementState{Attached: true, Visible: visible}, nil
}

// Fill - replaces the value of an input field
func (s *seleniumSession) Fill(ctx context.Context, loc entities.Locator, text string) error {
	element, err := s.find(ctx, "fill", loc)
	if err != nil {
		return err
	}
	if err := element.Clear(); err != nil {
		return fmt.Errorf("fill %s: %w", loc, err)
	}
	if text == "" {
		return nil
	}
	if err := element.SendKeys(text); err != nil {
		return fmt.Errorf("fill %s: %w", loc, err)
	}
	return nil
}

// Clear - empties an input field
func (s *seleniumSession) Clear(ctx context.Context, loc entities.Locator) error {
	element, err := s.find(ctx, "clear", loc)
	if err != nil {
		return err
	}
	if err := element.Clear(); err != nil {
		return fmt.Errorf("clear %s: %w", loc, err)
	}
	return nil
}

// Click - clicks on the first match
func (s *seleniumSession) Click(ctx context.Context, loc entities.Locator) error {
	element, err := s.find(ctx, "click", loc)
	if err != nil {
		return err
	}
	if err := element.Click(); err != nil {
		return fmt.Errorf("click %s: %w", loc, err)
	}
	return nil
}

// TextContent - returns the raw text content, hidden text included
func (s *seleniumSession) TextContent(ctx context.Context, loc entities.Locator) (string, bool, error) {
	element, err := s.find(ctx, "read text", loc)
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	result, err := s.wd.ExecuteScript(textContentArgScript, []interface{}{element})
	if err != nil {
		return "", false, fmt.Errorf("read text %s: %w", loc, err)
	}
	text, _ := result.(string)
	return text, true, nil
}

// InputValue - returns the current value of an input field
func (s *seleniumSession) InputValue(ctx context.Context, loc entities.Locator) (string, error) {
	element, err := s.find(ctx, "read value", loc)
	if err != nil {
		return "", err
	}
	result, err := s.wd.ExecuteScript(`return arguments[0].value;`, []interface{}{element})
	if err != nil {
		return "", fmt.Errorf("read value %s: %w", loc, err)
	}
	value, _ := result.(string)
	return value, nil
}

// ValidationMessage - returns the browser's constraint validation message
func (s *seleniumSession) ValidationMessage(ctx context.Context, loc entities.Locator) (string, error) {
	element, err := s.find(ctx, "read validation message", loc)
	if err != nil {
		return "", err
	}
	result, err := s.wd.ExecuteScript(validationMessageArgScript, []interface{}{element})
	if err != nil {
		return "", fmt.Errorf("read validation message %s: %w", loc, err)
	}
	message, _ := result.(string)
	return message, nil
}

// Attribute - returns an attribute value, ok is false when the attribute is absent
func (s *seleniumSession) Attribute(ctx context.Context, loc entities.Locator, name string) (string, bool, error) {
	element, err := s.find(ctx, "read attribute", loc)
	if err != nil {
		return "", false, err
	}
	result, err := s.wd.ExecuteScript(attributeArgScript, []interface{}{element, name})
	if err != nil {
		return "", false, fmt.Errorf("read attribute %s of %s: %w", name, loc, err)
	}
	if result == nil {
		return "", false, nil
	}
	value, _ := result.(string)
	return value, true, nil
}

// Screenshot - captures the viewport as PNG
func (s *seleniumSession) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.wd.Screenshot()
}

// Close - quits the WebDriver session
func (s *seleniumSession) Close() error {
	if s.wd == nil {
		return nil
	}
	err := s.wd.Quit()
	s.wd = nil
	if err != nil {
		return fmt.Errorf("failed to quit webdriver: %w", err)
	}
	return nil
}

var (
	_ interfaces.Launcher = (*seleniumLauncher)(nil)
	_ interfaces.Browser  = (*seleniumSession)(nil)
)
