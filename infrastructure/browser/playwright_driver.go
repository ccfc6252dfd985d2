package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"auth_harness/domain/entities"
	"auth_harness/domain/interfaces"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// playwrightLauncher owns one playwright browser; each session is a fresh BrowserContext
type playwrightLauncher struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
	logger  *logrus.Entry
}

// NewPlaywrightLauncher - starts playwright and launches the configured browser
func NewPlaywrightLauncher(opts Options) (interfaces.Launcher, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	var browserType playwright.BrowserType
	switch strings.ToLower(opts.Browser) {
	case "", "chromium", "chrome":
		browserType = pw.Chromium
	case "firefox":
		browserType = pw.Firefox
	case "webkit":
		browserType = pw.WebKit
	default:
		_ = pw.Stop()
		return nil, fmt.Errorf("unsupported playwright browser %q", opts.Browser)
	}

	launchOptions := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.SlowMo > 0 {
		launchOptions.SlowMo = playwright.Float(millis(opts.SlowMo))
	}
	if browserType == pw.Chromium {
		launchOptions.Args = chromeArgs
		if opts.ChromeBinaryPath != "" {
			launchOptions.ExecutablePath = playwright.String(opts.ChromeBinaryPath)
		}
	}

	browser, err := browserType.Launch(launchOptions)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	logger := opts.logger().WithField("driver", "playwright")
	logger.Infof("Launched %s (headless=%t)", browserType.Name(), opts.Headless)

	return &playwrightLauncher{pw: pw, browser: browser, opts: opts, logger: logger}, nil
}

// Name - returns the driver name
func (l *playwrightLauncher) Name() string {
	return "playwright"
}

// NewSession - opens a new browser context with its own cookies and storage
func (l *playwrightLauncher) NewSession(ctx context.Context) (interfaces.Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bctx, err := l.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  1280,
			Height: 720,
		},
		JavaScriptEnabled: playwright.Bool(true),
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	s := &playwrightSession{context: bctx, opts: l.opts}
	s.adopt(page)
	bctx.OnPage(s.adopt)

	return s, nil
}

// Close - closes the browser and stops the playwright driver
func (l *playwrightLauncher) Close() error {
	var closeErr error
	if l.browser != nil {
		if err := l.browser.Close(); err != nil && !isClosedError(err) {
			closeErr = multierr.Append(closeErr, fmt.Errorf("failed to close browser: %w", err))
		}
		l.browser = nil
	}
	if l.pw != nil {
		if err := l.pw.Stop(); err != nil {
			closeErr = multierr.Append(closeErr, fmt.Errorf("failed to stop playwright: %w", err))
		}
		l.pw = nil
	}
	return closeErr
}

type playwrightSession struct {
	context playwright.BrowserContext
	page    playwright.Page
	opts    Options
	mu      sync.Mutex
}

// adopt makes page the session's current page. Popups go through here too.
func (s *playwrightSession) adopt(page playwright.Page) {
	page.SetDefaultTimeout(millis(s.opts.actionTimeout()))
	page.SetDefaultNavigationTimeout(millis(s.opts.navigationTimeout()))
	// native alerts would block every later call
	page.OnDialog(func(dialog playwright.Dialog) {
		_ = dialog.Accept()
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = page
}

func (s *playwrightSession) currentPage() playwright.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// resolve - builds a locator for the first match, failing when nothing matches
func (s *playwrightSession) resolve(ctx context.Context, action string, loc entities.Locator) (playwright.Locator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	selector, err := playwrightSelector(loc)
	if err != nil {
		return nil, err
	}
	locator := s.currentPage().Locator(selector)
	count, err := locator.Count()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", action, loc, err)
	}
	if count == 0 {
		return nil, entities.NewElementNotFound(action, loc)
	}
	return locator.First(), nil
}

// Navigate - navigates to the specified URL
func (s *playwrightSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.currentPage().Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(millis(s.opts.navigationTimeout())),
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// CurrentURL - returns the page URL
func (s *playwrightSession) CurrentURL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.currentPage().URL(), nil
}

// Inspect - reports attachment and visibility of the first match
func (s *playwrightSession) Inspect(ctx context.Context, loc entities.Locator) (entities.ElementState, error) {
	locator, err := s.resolve(ctx, "inspect", loc)
	if err != nil {
		if isNotFound(err) {
			return entities.ElementState{}, nil
		}
		return entities.ElementState{}, err
	}
	visible, err := locator.IsVisible()
	if err != nil {
		return entities.ElementState{}, fmt.Errorf("inspect %s: %w", loc, err)
	}
	return entities.ElementState{Attached: true, Visible: visible}, nil
}

// Fill - replaces the value of an input field
func (s *playwrightSession) Fill(ctx context.Context, loc entities.Locator, text string) error {
	locator, err := s.resolve(ctx, "fill", loc)
	if err != nil {
		return err
	}
	if err := locator.Fill(text, playwright.LocatorFillOptions{
		Timeout: playwright.Float(millis(s.opts.actionTimeout())),
	}); err != nil {
		return fmt.Errorf("fill %s: %w", loc, err)
	}
	return nil
}

// Clear - empties an input field
func (s *playwrightSession) Clear(ctx context.Context, loc entities.Locator) error {
	locator, err := s.resolve(ctx, "clear", loc)
	if err != nil {
		return err
	}
	if err := locator.Clear(playwright.LocatorClearOptions{
		Timeout: playwright.Float(millis(s.opts.actionTimeout())),
	}); err != nil {
		return fmt.Errorf("clear %s: %w", loc, err)
	}
	return nil
}

// Click - clicks on the first match
func (s *playwrightSession) Click(ctx context.Context, loc entities.Locator) error {
	locator, err := s.resolve(ctx, "click", loc)
	if err != nil {
		return err
	}
	if err := locator.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(millis(s.opts.actionTimeout())),
	}); err != nil {
		return fmt.Errorf("click %s: %w", loc, err)
	}
	return nil
}

// TextContent - returns the text of the first match
func (s *playwrightSession) TextContent(ctx context.Context, loc entities.Locator) (string, bool, error) {
	locator, err := s.resolve(ctx, "read text", loc)
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	text, err := locator.TextContent()
	if err != nil {
		return "", false, fmt.Errorf("read text %s: %w", loc, err)
	}
	return text, true, nil
}

// InputValue - returns the current value of an input field
func (s *playwrightSession) InputValue(ctx context.Context, loc entities.Locator) (string, error) {
	locator, err := s.resolve(ctx, "read value", loc)
	if err != nil {
		return "", err
	}
	value, err := locator.InputValue()
	if err != nil {
		return "", fmt.Errorf("read value %s: %w", loc, err)
	}
	return value, nil
}

// ValidationMessage - returns the browser's constraint validation message
func (s *playwrightSession) ValidationMessage(ctx context.Context, loc entities.Locator) (string, error) {
	locator, err := s.resolve(ctx, "read validation message", loc)
	if err != nil {
		return "", err
	}
	result, err := locator.Evaluate(validationMessageScript, nil)
	if err != nil {
		return "", fmt.Errorf("read validation message %s: %w", loc, err)
	}
	message, _ := result.(string)
	return message, nil
}

// Attribute - returns an attribute value, ok is false when the attribute is absent
func (s *playwrightSession) Attribute(ctx context.Context, loc entities.Locator, name string) (string, bool, error) {
	locator, err := s.resolve(ctx, "read attribute", loc)
	if err != nil {
		return "", false, err
	}
	result, err := locator.Evaluate(attributeScript, name)
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
func (s *playwrightSession) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.currentPage().Screenshot(playwright.PageScreenshotOptions{
		Type: playwright.ScreenshotTypePng,
	})
}

// Close - closes the browser context
func (s *playwrightSession) Close() error {
	if s.context == nil {
		return nil
	}
	err := s.context.Close()
	s.context = nil
	if err != nil && !isClosedError(err) {
		return fmt.Errorf("failed to close context: %w", err)
	}
	return nil
}

func isClosedError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "closed") || strings.Contains(errStr, "target closed")
}

var (
	_ interfaces.Launcher = (*playwrightLauncher)(nil)
	_ interfaces.Browser  = (*playwrightSession)(nil)
)
