package assert

import (
	"fmt"
	"regexp"
	"strings"
)

// Actual is a value read from the page. Present is false when nothing could
// be read at all, which is different from reading an empty string.
type Actual struct {
	Value   string
	Present bool
}

// Text wraps a value that was read successfully
func Text(s string) Actual {
	return Actual{Value: s, Present: true}
}

// Missing is the actual for an element that was never resolved
func Missing() Actual {
	return Actual{}
}

// Maybe adapts the (value, ok) pairs returned by read primitives
func Maybe(s string, ok bool) Actual {
	if !ok {
		return Missing()
	}
	return Text(s)
}

// Rendered converts a visibility snapshot into an actual: a visible element
// is present, anything else is missing.
func Rendered(visible bool) Actual {
	if visible {
		return Text("visible")
	}
	return Missing()
}

// Matcher compares an actual against an expectation
type Matcher interface {
	Match(a Actual) bool
	Describe() string
}

type equals string

// Equals matches the exact string
func Equals(want string) Matcher { return equals(want) }

func (m equals) Match(a Actual) bool { return a.Present && a.Value == string(m) }
func (m equals) Describe() string    { return fmt.Sprintf("equal to %q", string(m)) }

type contains string

// Contains matches when want is a substring of the actual
func Contains(want string) Matcher { return contains(want) }

func (m contains) Match(a Actual) bool { return a.Present && strings.Contains(a.Value, string(m)) }
func (m contains) Describe() string    { return fmt.Sprintf("containing %q", string(m)) }

type matches struct{ re *regexp.Regexp }

// Matches compiles pattern and matches actuals against it. It panics on an
// invalid pattern, the same way regexp.MustCompile does.
func Matches(pattern string) Matcher { return matches{re: regexp.MustCompile(pattern)} }

// MatchesRegexp matches actuals against an already compiled expression
func MatchesRegexp(re *regexp.Regexp) Matcher { return matches{re: re} }

func (m matches) Match(a Actual) bool { return a.Present && m.re.MatchString(a.Value) }
func (m matches) Describe() string    { return fmt.Sprintf("matching /%s/", m.re.String()) }

type present struct{}

// Present matches any actual that could be read
func Present() Matcher { return present{} }

func (present) Match(a Actual) bool { return a.Present }
func (present) Describe() string    { return "present" }

type absent struct{}

// Absent matches only a missing actual
func Absent() Matcher { return absent{} }

func (absent) Match(a Actual) bool { return !a.Present }
func (absent) Describe() string    { return "absent" }

type not struct{ m Matcher }

// Not inverts a matcher. A missing actual never satisfies Not, so
// Not(Contains("x")) still requires something to have been read.
func Not(m Matcher) Matcher { return not{m: m} }

func (n not) Match(a Actual) bool { return a.Present && !n.m.Match(a) }
func (n not) Describe() string    { return "not " + n.m.Describe() }
