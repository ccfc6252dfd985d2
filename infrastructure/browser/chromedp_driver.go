package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"auth_harness/domain/entities"
	"auth_harness/domain/interfaces"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

// chromedpRun is swapped in tests that have no chrome binary
var chromedpRun = chromedp.Run

// chromedpLauncher holds the exec allocator; every session gets its own chrome process
type chromedpLauncher struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	opts        Options
	logger      *logrus.Entry
}

// NewChromedpLauncher - prepares a chrome allocator over the DevTools protocol
func NewChromedpLauncher(opts Options) (interfaces.Launcher, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", opts.Headless),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.NoSandbox,
		chromedp.WindowSize(1280, 720),
	)
	if binary := findChromeBinary(opts.ChromeBinaryPath); binary != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(binary))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	logger := opts.logger().WithField("driver", "chromedp")
	logger.Infof("Prepared chrome allocator (headless=%t)", opts.Headless)

	return &chromedpLauncher{allocCtx: allocCtx, cancelAlloc: cancel, opts: opts, logger: logger}, nil
}

// Name - returns the driver name
func (l *chromedpLauncher) Name() string {
	return "chromedp"
}

// NewSession - starts a new chrome instance with a clean profile
func (l *chromedpLauncher) NewSession(ctx context.Context) (interfaces.Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browserCtx, cancelBrowser := chromedp.NewContext(l.allocCtx, chromedp.WithLogf(l.logger.Debugf))
	cancel := sync.OnceFunc(cancelBrowser)
	s := &chromedpSession{ctx: browserCtx, cancel: cancel, opts: l.opts}

	// The first Run allocates chrome under the context it is given, so it
	// must get the session context itself and never a per-call deadline.
	stop := context.AfterFunc(ctx, cancel)
	err := chromedpRun(browserCtx, network.ClearBrowserCookies())
	if !stop() {
		cancel()
		return nil, ctx.Err()
	}
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}
	return s, nil
}

// Close - releases the allocator
func (l *chromedpLauncher) Close() error {
	if l.cancelAlloc != nil {
		l.cancelAlloc()
		l.cancelAlloc = nil
	}
	return nil
}

type chromedpSession struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   Options
	once   sync.Once
}

// run - executes actions on the session's tab, bounded by the caller's context and a timeout
func (s *chromedpSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedpRun(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// elementProbe is what probeScript reports about a resolved element
type elementProbe struct {
	Found      bool    `json:"found"`
	Visible    bool    `json:"visible"`
	Text       string  `json:"text"`
	Value      string  `json:"value"`
	Validation string  `json:"validation"`
	Attribute  *string `json:"attribute"`
}

// probeScript builds an expression that resolves loc and reports on the first match
func probeScript(loc entities.Locator, attribute string) (string, error) {
	resolver, err := jsResolver(loc)
	if err != nil {
		return "", err
	}
	attr, err := json.Marshal(attribute)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`(function() {
	var el = %s;
	if (!el) { return {found: false}; }
	var style = window.getComputedStyle(el);
	var rect = el.getBoundingClientRect();
	var visible = style.visibility !== "hidden" && style.display !== "none" && rect.width > 0 && rect.height > 0;
	var name = %s;
	return {
		found: true,
		visible: visible,
		text: el.textContent || "",
		value: el.value === undefined ? "" : String(el.value),
		validation: el.validationMessage || "",
		attribute: name ? el.getAttribute(name) : null
	};
})()`, resolver, attr), nil
}

// jsResolver returns a JS expression that evaluates to the first match or null
func jsResolver(loc entities.Locator) (string, error) {
	if loc.Strategy == entities.ByCSS {
		sel, err := json.Marshal(loc.Pattern)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("document.querySelector(%s)", sel), nil
	}
	xpath, err := toXPath(loc)
	if err != nil {
		return "", err
	}
	expr, err := json.Marshal(xpath)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue", expr), nil
}

// chromedpQuery - maps a locator onto a chromedp selector and query option
func chromedpQuery(loc entities.Locator) (string, chromedp.QueryOption, error) {
	if loc.Strategy == entities.ByCSS {
		return loc.Pattern, chromedp.ByQuery, nil
	}
	xpath, err := toXPath(loc)
	if err != nil {
		return "", nil, err
	}
	return xpath, chromedp.BySearch, nil
}

func (s *chromedpSession) probe(ctx context.Context, loc entities.Locator, attribute string) (elementProbe, error) {
	script, err := probeScript(loc, attribute)
	if err != nil {
		return elementProbe{}, err
	}
	var result elementProbe
	if err := s.run(ctx, s.opts.actionTimeout(), chromedp.Evaluate(script, &result)); err != nil {
		return elementProbe{}, fmt.Errorf("inspect %s: %w", loc, err)
	}
	return result, nil
}

// act - runs an action against loc once it is known to exist
func (s *chromedpSession) act(ctx context.Context, action string, loc entities.Locator, build func(sel string, by chromedp.QueryOption) []chromedp.Action) error {
	p, err := s.probe(ctx, loc, "")
	if err != nil {
		return err
	}
	if !p.Found {
		return entities.NewElementNotFound(action, loc)
	}
	sel, by, err := chromedpQuery(loc)
	if err != nil {
		return err
	}
	if err := s.run(ctx, s.opts.actionTimeout(), build(sel, by)...); err != nil {
		return fmt.Errorf("%s %s: %w", action, loc, err)
	}
	return nil
}

// Navigate - navigates to the specified URL
func (s *chromedpSession) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, s.opts.navigationTimeout(), chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// CurrentURL - returns the tab location
func (s *chromedpSession) CurrentURL(ctx context.Context) (string, error) {
	var location string
	if err := s.run(ctx, s.opts.actionTimeout(), chromedp.Location(&location)); err != nil {
		return "", err
	}
	return location, nil
}

// Inspect - reports attachment and visibility of the first match
func (s *chromedpSession) Inspect(ctx context.Context, loc entities.Locator) (entities.ElementState, error) {
	p, err := s.probe(ctx, loc, "")
	if err != nil {
		return entities.ElementState{}, err
	}
	return entities.ElementState{Attached: p.Found, Visible: p.Found && p.Visible}, nil
}

// Fill - replaces the value of an input field
func (s *chromedpSession) Fill(ctx context.Context, loc entities.Locator, text string) error {
	return s.act(ctx, "fill", loc, func(sel string, by chromedp.QueryOption) []chromedp.Action {
		actions := []chromedp.Action{chromedp.Clear(sel, by)}
		if text != "" {
			actions = append(actions, chromedp.SendKeys(sel, text, by))
		}
		return actions
	})
}

// Clear - empties an input field
func (s *chromedpSession) Clear(ctx context.Context, loc entities.Locator) error {
	return s.act(ctx, "clear", loc, func(sel string, by chromedp.QueryOption) []chromedp.Action {
		return []chromedp.Action{chromedp.Clear(sel, by)}
	})
}

// Click - clicks on the first match
func (s *chromedpSession) Click(ctx context.Context, loc entities.Locator) error {
	return s.act(ctx, "click", loc, func(sel string, by chromedp.QueryOption) []chromedp.Action {
		return []chromedp.Action{chromedp.Click(sel, by)}
	})
}

// TextContent - returns the text of the first match
func (s *chromedpSession) TextContent(ctx context.Context, loc entities.Locator) (string, bool, error) {
	p, err := s.probe(ctx, loc, "")
	if err != nil {
		return "", false, err
	}
	return p.Text, p.Found, nil
}

// InputValue - returns the current value of an input field
func (s *chromedpSession) InputValue(ctx context.Context, loc entities.Locator) (string, error) {
	p, err := s.probe(ctx, loc, "")
	if err != nil {
		return "", err
	}
	if !p.Found {
		return "", entities.NewElementNotFound("read value", loc)
	}
	return p.Value, nil
}

// ValidationMessage - returns the browser's constraint validation message
func (s *chromedpSession) ValidationMessage(ctx context.Context, loc entities.Locator) (string, error) {
	p, err := s.probe(ctx, loc, "")
	if err != nil {
		return "", err
	}
	if !p.Found {
		return "", entities.NewElementNotFound("read validation message", loc)
	}
	return p.Validation, nil
}

// Attribute - returns an attribute value, ok is false when the attribute is absent
func (s *chromedpSession) Attribute(ctx context.Context, loc entities.Locator, name string) (string, bool, error) {
	if name == "" {
		return "", false, errors.New("attribute name is empty")
	}
	p, err := s.probe(ctx, loc, name)
	if err != nil {
		return "", false, err
	}
	if !p.Found {
		return "", false, entities.NewElementNotFound("read attribute", loc)
	}
	if p.Attribute == nil {
		return "", false, nil
	}
	return *p.Attribute, true, nil
}

// Screenshot - captures the viewport as PNG
func (s *chromedpSession) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, s.opts.actionTimeout(), chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Close - shuts the chrome instance down
func (s *chromedpSession) Close() error {
	var err error
	s.once.Do(func() {
		err = chromedp.Cancel(s.ctx)
		s.cancel()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close chrome: %w", err)
	}
	return nil
}

var (
	_ interfaces.Launcher = (*chromedpLauncher)(nil)
	_ interfaces.Browser  = (*chromedpSession)(nil)
)
