package interfaces

import "auth_harness/domain/entities"

// Redactor decides how values typed into the target are shown in logs
type Redactor interface {
	// IsSensitive reports whether values for this locator must not be logged
	IsSensitive(loc entities.Locator) bool

	// Redact returns a loggable form of a value typed into loc
	Redact(loc entities.Locator, value string) string
}
