package entities

import "fmt"

const redacted = "[REDACTED]"

// Credential is an email/password pair passed through to the target
// application untouched. The harness never validates it.
type Credential struct {
	Email    string `json:"email"`
	Password string `json:"-"`
}

// IsZero reports whether neither part is set
func (c Credential) IsZero() bool {
	return c.Email == "" && c.Password == ""
}

// String never prints the password
func (c Credential) String() string {
	pw := ""
	if c.Password != "" {
		pw = redacted
	}
	return fmt.Sprintf("Credential{Email: %q, Password: %q}", c.Email, pw)
}

// GoString keeps %#v from leaking the password
func (c Credential) GoString() string {
	return c.String()
}
