package entities

import (
	"fmt"
	"strings"
)

// Strategy represents how a locator pattern is matched against the DOM
type Strategy string

const (
	ByID        Strategy = "id"
	ByXPath     Strategy = "xpath"
	ByCSS       Strategy = "css"
	ByTextMatch Strategy = "text"
	ByRole      Strategy = "role"
)

// Strategies lists every supported strategy
var Strategies = []Strategy{ByID, ByXPath, ByCSS, ByTextMatch, ByRole}

// ParseStrategy converts a string into a known Strategy
func ParseStrategy(s string) (Strategy, error) {
	for _, st := range Strategies {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown locator strategy %q", s)
}

// Locator identifies one UI element by a semantic name and a query strategy.
// Locators are values: they are never mutated after construction and are
// resolved against the live DOM again on every use.
type Locator struct {
	Name     string   `json:"name" yaml:"name"`
	Strategy Strategy `json:"strategy" yaml:"strategy"`
	Pattern  string   `json:"pattern" yaml:"pattern"`
}

// NewLocator builds a validated locator
func NewLocator(name string, strategy Strategy, pattern string) (Locator, error) {
	loc := Locator{Name: name, Strategy: strategy, Pattern: pattern}
	if err := loc.Validate(); err != nil {
		return Locator{}, err
	}
	return loc, nil
}

// Validate checks that the locator can be resolved by a browser adapter
func (l Locator) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("locator name is empty")
	}
	if strings.TrimSpace(l.Pattern) == "" {
		return fmt.Errorf("locator %q has an empty pattern", l.Name)
	}
	switch l.Strategy {
	case ByID, ByXPath, ByCSS, ByTextMatch:
		return nil
	case ByRole:
		if role, _ := l.Role(); role == "" {
			return fmt.Errorf("locator %q has no role", l.Name)
		}
		return nil
	default:
		return fmt.Errorf("locator %q: unknown strategy %q", l.Name, l.Strategy)
	}
}

// Role splits a ByRole pattern of the form `button "Login"` into the aria
// role and the optional accessible name.
func (l Locator) Role() (role, accessibleName string) {
	pattern := strings.TrimSpace(l.Pattern)
	role, rest, found := strings.Cut(pattern, " ")
	if !found {
		return role, ""
	}
	rest = strings.TrimSpace(rest)
	if len(rest) >= 2 && rest[0] == '"' && rest[len(rest)-1] == '"' {
		rest = rest[1 : len(rest)-1]
	}
	return role, rest
}

func (l Locator) String() string {
	return fmt.Sprintf("%s(%s=%s)", l.Name, l.Strategy, l.Pattern)
}
