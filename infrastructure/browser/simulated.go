package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"auth_harness/domain/entities"
	"auth_harness/domain/interfaces"
)

// Messages rendered by the simulated application
const (
	SimulatedLoginErrorText   = "The email and password combination you entered is incorrect. Please try again."
	SimulatedConfirmationText = "If an account exists for this email, a password reset link has been sent."
	SimulatedEmailRequired    = "Email is required"
	SimulatedPasswordRequired = "Password is required"
	valueMissingMessage       = "Please fill out this field."
)

// SimulatedApp models the target login application in memory.
// Elements are addressed by their registry name, so overrides that only
// change strategy or pattern keep working.
type SimulatedApp struct {
	BaseURL            string
	LoginPath          string
	ForgotPasswordPath string
	DashboardPath      string

	// Accounts maps email to password for logins that succeed
	Accounts map[string]string

	// ErrorDelay is how long the error modal takes to render after a rejected login
	ErrorDelay time.Duration
	// ConfirmationDelay is how long the reset confirmation takes to render
	ConfirmationDelay time.Duration
	// RedirectDelay is how long a successful login takes to land on the dashboard
	RedirectDelay time.Duration

	Now func() time.Time
}

// DefaultSimulatedApp returns an application rooted at baseURL with realistic latencies
func DefaultSimulatedApp(baseURL string) SimulatedApp {
	return SimulatedApp{
		BaseURL:            strings.TrimRight(baseURL, "/"),
		LoginPath:          "/",
		ForgotPasswordPath: "/login/forget",
		DashboardPath:      "/user/dashboard",
		Accounts:           map[string]string{},
		ErrorDelay:         400 * time.Millisecond,
		ConfirmationDelay:  300 * time.Millisecond,
		RedirectDelay:      200 * time.Millisecond,
	}
}

func (a SimulatedApp) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a SimulatedApp) pageFor(rawURL string) (simulatedPage, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return pageBlank, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	base := a.basePath()
	if u.Path != base && !strings.HasPrefix(u.Path, base+"/") {
		return pageBlank, nil
	}
	path := normalizePath(strings.TrimPrefix(u.Path, base))
	switch {
	case path == normalizePath(a.LoginPath):
		return pageLogin, nil
	case path == normalizePath(a.ForgotPasswordPath):
		return pageForgot, nil
	case path == normalizePath(a.DashboardPath):
		return pageDashboard, nil
	default:
		return pageBlank, nil
	}
}

// basePath is the path prefix BaseURL mounts the application under
func (a SimulatedApp) basePath() string {
	u, err := url.Parse(a.BaseURL)
	if err != nil {
		return ""
	}
	return strings.TrimRight(u.Path, "/")
}

func (a SimulatedApp) urlFor(path string) string {
	return strings.TrimRight(a.BaseURL, "/") + normalizePath(path)
}

func normalizePath(p string) string {
	if p == "" || p[0] != '/' {
		return "/" + p
	}
	return p
}

type simulatedPage int

const (
	pageBlank simulatedPage = iota
	pageLogin
	pageForgot
	pageDashboard
)

// simulatedLauncher hands out independent in-memory sessions
type simulatedLauncher struct {
	app SimulatedApp
}

// NewSimulatedLauncher - creates a launcher over the in-memory application
func NewSimulatedLauncher(app SimulatedApp) interfaces.Launcher {
	return &simulatedLauncher{app: app}
}

// Name - returns the driver name
func (l *simulatedLauncher) Name() string {
	return "simulated"
}

// NewSession - opens a blank session
func (l *simulatedLauncher) NewSession(ctx context.Context) (interfaces.Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &SimulatedBrowser{app: l.app, location: "about:blank"}, nil
}

// Close - nothing to release
func (l *simulatedLauncher) Close() error {
	return nil
}

type simulatedField struct {
	id        string
	inputType string
	value     string
	touched   bool
}

// SimulatedBrowser is one session against a SimulatedApp
type SimulatedBrowser struct {
	app SimulatedApp
	mu  sync.Mutex

	location string
	page     simulatedPage
	closed   bool

	fields map[string]*simulatedField
	// attempted is set once the login form was submitted with failing constraints
	attempted      bool
	modalAt        time.Time
	confirmationAt time.Time
	redirectAt     time.Time

	actions int
}

// NewSimulatedBrowser - opens a standalone session, mainly for tests
func NewSimulatedBrowser(app SimulatedApp) *SimulatedBrowser {
	return &SimulatedBrowser{app: app, location: "about:blank"}
}

// Actions returns how many state-changing calls the session has served
func (b *SimulatedBrowser) Actions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.actions
}

func (b *SimulatedBrowser) load(page simulatedPage, location string) {
	b.page = page
	b.location = location
	b.attempted = false
	b.modalAt = time.Time{}
	b.confirmationAt = time.Time{}
	b.redirectAt = time.Time{}

	switch page {
	case pageLogin:
		b.fields = map[string]*simulatedField{
			entities.ElementEmailInput:    {id: "email", inputType: "email"},
			entities.ElementPasswordInput: {id: "txtPassword", inputType: "password"},
		}
	case pageForgot:
		b.fields = map[string]*simulatedField{
			entities.ElementForgotEmailInput: {id: "forgetEmail", inputType: "email"},
		}
	default:
		b.fields = map[string]*simulatedField{}
	}
}

// settle applies pending navigations whose time has come
func (b *SimulatedBrowser) settle() {
	if !b.redirectAt.IsZero() && !b.app.now().Before(b.redirectAt) {
		b.load(pageDashboard, b.app.urlFor(b.app.DashboardPath))
	}
}

func (b *SimulatedBrowser) begin(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.closed {
		return fmt.Errorf("session closed")
	}
	b.settle()
	return nil
}

// present reports which named elements the current page renders
func (b *SimulatedBrowser) present(name string) bool {
	now := b.app.now()
	switch b.page {
	case pageLogin:
		switch name {
		case entities.ElementEmailInput, entities.ElementPasswordInput, entities.ElementLoginSubmit,
			entities.ElementEmailRequired, entities.ElementPasswordRequired,
			entities.ElementForgotPasswordLink, entities.ElementCountryCodeSelector:
			return true
		case entities.ElementErrorModal:
			return !b.modalAt.IsZero() && !now.Before(b.modalAt)
		}
	case pageForgot:
		switch name {
		case entities.ElementForgotEmailInput, entities.ElementForgotSubmit:
			return true
		case entities.ElementForgotConfirmation:
			return !b.confirmationAt.IsZero() && !now.Before(b.confirmationAt)
		}
	}
	return false
}

func (b *SimulatedBrowser) indicatorShown(field string) bool {
	f, ok := b.fields[field]
	if !ok || f.value != "" {
		return false
	}
	return f.touched || b.attempted
}

func (b *SimulatedBrowser) text(name string) string {
	switch name {
	case entities.ElementErrorModal:
		return SimulatedLoginErrorText
	case entities.ElementForgotConfirmation:
		return SimulatedConfirmationText
	case entities.ElementLoginSubmit:
		return "Login"
	case entities.ElementForgotSubmit:
		return "Send reset link"
	case entities.ElementForgotPasswordLink:
		return "Forgot password?"
	case entities.ElementEmailRequired:
		if b.indicatorShown(entities.ElementEmailInput) {
			return SimulatedEmailRequired
		}
	case entities.ElementPasswordRequired:
		if b.indicatorShown(entities.ElementPasswordInput) {
			return SimulatedPasswordRequired
		}
	}
	return ""
}

func (b *SimulatedBrowser) visible(name string) bool {
	switch name {
	case entities.ElementEmailRequired:
		return b.indicatorShown(entities.ElementEmailInput)
	case entities.ElementPasswordRequired:
		return b.indicatorShown(entities.ElementPasswordInput)
	default:
		return true
	}
}

func (b *SimulatedBrowser) field(action string, loc entities.Locator) (*simulatedField, error) {
	if !b.present(loc.Name) {
		return nil, entities.NewElementNotFound(action, loc)
	}
	f, ok := b.fields[loc.Name]
	if !ok {
		return nil, fmt.Errorf("%s %s: element is not a form control", action, loc)
	}
	return f, nil
}

// Navigate - loads the page behind url
func (b *SimulatedBrowser) Navigate(ctx context.Context, rawURL string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin(ctx); err != nil {
		return err
	}
	page, err := b.app.pageFor(rawURL)
	if err != nil {
		return err
	}
	b.actions++
	b.load(page, rawURL)
	return nil
}

// CurrentURL - returns the session location
func (b *SimulatedBrowser) CurrentURL(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin(ctx); err != nil {
		return "", err
	}
	return b.location, nil
}

// Inspect - reports attachment and visibility
func (b *SimulatedBrowser) Inspect(ctx context.Context, loc entities.Locator) (entities.ElementState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin(ctx); err != nil {
		return entities.ElementState{}, err
	}
	if !b.present(loc.Name) {
		return entities.ElementState{}, nil
	}
	return entities.ElementState{Attached: true, Visible: b.visible(loc.Name)}, nil
}

// Fill - sets the value of a form control
func (b *SimulatedBrowser) Fill(ctx context.Context, loc entities.Locator, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin(ctx); err != nil {
		return err
	}
	f, err := b.field("fill", loc)
	if err != nil {
		return err
	}
	b.actions++
	f.value = text
	f.touched = true
	return nil
}

// Clear - empties a form control
func (b *SimulatedBrowser) Clear(ctx context.Context, loc entities.Locator) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin(ctx); err != nil {
		return err
	}
	f, err := b.field("clear", loc)
	if err != nil {
		return err
	}
	b.actions++
	f.value = ""
	f.touched = true
	return nil
}

// Click - activates links and submit buttons
func (b *SimulatedBrowser) Click(ctx context.Context, loc entities.Locator) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin(ctx); err != nil {
		return err
	}
	if !b.present(loc.Name) {
		return entities.NewElementNotFound("click", loc)
	}
	b.actions++

	now := b.app.now()
	switch loc.Name {
	case entities.ElementForgotPasswordLink:
		b.load(pageForgot, b.app.urlFor(b.app.ForgotPasswordPath))
	case entities.ElementLoginSubmit:
		if !b.formValid() {
			b.attempted = true
			return nil
		}
		email := b.fields[entities.ElementEmailInput].value
		password := b.fields[entities.ElementPasswordInput].value
		if want, ok := b.app.Accounts[email]; ok && want == password {
			b.redirectAt = now.Add(b.app.RedirectDelay)
			b.settle()
			return nil
		}
		b.modalAt = now.Add(b.app.ErrorDelay)
	case entities.ElementForgotSubmit:
		if !b.formValid() {
			return nil
		}
		b.confirmationAt = now.Add(b.app.ConfirmationDelay)
	}
	return nil
}

func (b *SimulatedBrowser) formValid() bool {
	for _, f := range b.fields {
		if validationMessage(f) != "" {
			return false
		}
	}
	return true
}

// TextContent - returns element text
func (b *SimulatedBrowser) TextContent(ctx context.Context, loc entities.Locator) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin(ctx); err != nil {
		return "", false, err
	}
	if !b.present(loc.Name) {
		return "", false, nil
	}
	return b.text(loc.Name), true, nil
}

// InputValue - returns the value of a form control
func (b *SimulatedBrowser) InputValue(ctx context.Context, loc entities.Locator) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin(ctx); err != nil {
		return "", err
	}
	f, err := b.field("read value", loc)
	if err != nil {
		return "", err
	}
	return f.value, nil
}

// ValidationMessage - returns the message chrome would show for the control
func (b *SimulatedBrowser) ValidationMessage(ctx context.Context, loc entities.Locator) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin(ctx); err != nil {
		return "", err
	}
	if !b.present(loc.Name) {
		return "", entities.NewElementNotFound("read validation message", loc)
	}
	f, ok := b.fields[loc.Name]
	if !ok {
		return "", nil
	}
	return validationMessage(f), nil
}

// Attribute - returns attributes of form controls
func (b *SimulatedBrowser) Attribute(ctx context.Context, loc entities.Locator, name string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin(ctx); err != nil {
		return "", false, err
	}
	if !b.present(loc.Name) {
		return "", false, entities.NewElementNotFound("read attribute", loc)
	}
	if loc.Name == entities.ElementForgotConfirmation && name == "role" {
		return "alert", true, nil
	}
	f, ok := b.fields[loc.Name]
	if !ok {
		return "", false, nil
	}
	switch name {
	case "required":
		return "", true, nil
	case "type":
		return f.inputType, true, nil
	case "id", "name":
		return f.id, true, nil
	}
	return "", false, nil
}

// Screenshot - the simulated app has nothing to capture
func (b *SimulatedBrowser) Screenshot(ctx context.Context) ([]byte, error) {
	return nil, ctx.Err()
}

// Close - ends the session
func (b *SimulatedBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func validationMessage(f *simulatedField) string {
	if f.value == "" {
		return valueMissingMessage
	}
	if f.inputType == "email" {
		return emailValidationMessage(f.value)
	}
	return ""
}

const emailLocalSymbols = ".!#$%&'*+/=?^_`{|}~-"

// emailValidationMessage mirrors chrome's typeMismatch messages for type=email
func emailValidationMessage(value string) string {
	at := strings.Index(value, "@")
	if at < 0 {
		return fmt.Sprintf("Please include an '@' in the email address. '%s' is missing an '@'.", value)
	}
	local, domain := value[:at], value[at+1:]
	if local == "" {
		return fmt.Sprintf("Please enter a part followed by '@'. '%s' is incomplete.", value)
	}
	if domain == "" {
		return fmt.Sprintf("Please enter a part following '@'. '%s' is incomplete.", value)
	}
	for _, r := range local {
		if !isASCIIAlnum(r) && !strings.ContainsRune(emailLocalSymbols, r) {
			return fmt.Sprintf("A part followed by '@' should not contain the symbol '%c'.", r)
		}
	}
	for _, r := range domain {
		if !isASCIIAlnum(r) && r != '-' && r != '.' {
			return fmt.Sprintf("A part following '@' should not contain the symbol '%c'.", r)
		}
	}
	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") || strings.Contains(domain, "..") {
		return fmt.Sprintf("'.' is used at a wrong position in '%s'.", domain)
	}
	return ""
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

var (
	_ interfaces.Launcher = (*simulatedLauncher)(nil)
	_ interfaces.Browser  = (*SimulatedBrowser)(nil)
)
