package interfaces

import (
	"auth_harness/domain/entities"
	"context"
)

// Browser is one isolated browser session (own cookies, storage and DOM).
// Every call re-resolves its locator; implementations keep no element handles.
type Browser interface {
	// Navigate loads a URL and returns once the document is parsed
	Navigate(ctx context.Context, url string) error

	// CurrentURL returns the browser location
	CurrentURL(ctx context.Context) (string, error)

	// Inspect resolves the locator and reports whether it is attached and visible.
	// A locator that matches nothing is not an error here.
	Inspect(ctx context.Context, loc entities.Locator) (entities.ElementState, error)

	// Fill replaces the content of a form control
	Fill(ctx context.Context, loc entities.Locator, text string) error

	// Clear empties a form control
	Clear(ctx context.Context, loc entities.Locator) error

	// Click dispatches a click without waiting for its effects
	Click(ctx context.Context, loc entities.Locator) error

	// TextContent returns the element text; ok is false when nothing matches
	TextContent(ctx context.Context, loc entities.Locator) (text string, ok bool, err error)

	// InputValue returns the current value of a form control
	InputValue(ctx context.Context, loc entities.Locator) (string, error)

	// ValidationMessage returns the native constraint-validation message
	ValidationMessage(ctx context.Context, loc entities.Locator) (string, error)

	// Attribute returns an attribute value; ok is false when it is absent
	Attribute(ctx context.Context, loc entities.Locator, name string) (value string, ok bool, err error)

	// Screenshot captures the current viewport as PNG
	Screenshot(ctx context.Context) ([]byte, error)

	// Close releases the session
	Close() error
}

// Launcher owns a browser process and hands out isolated sessions
type Launcher interface {
	// Name identifies the driver in reports
	Name() string

	// NewSession opens a fresh, isolated browser context
	NewSession(ctx context.Context) (Browser, error)

	// Close shuts the browser process down
	Close() error
}
