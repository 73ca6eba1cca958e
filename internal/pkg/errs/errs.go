/*
Package errs provides the typed error model used throughout the synchronizer.

This file defines the CustomError struct, which implements the standard Go
error interface and carries a machine-readable error key, a user-facing
message, a severity tag for the rendering layer, and an HTTP status code for
the local API.
*/
package errs

import (
	"fmt"
	"net/http"
	"strings"

	"lobbysync/internal/pkg/logx"
)

// Severity classifies how the rendering layer should present an error.
type Severity string

const (
	// SeverityError marks failures that block the attempted action.
	SeverityError Severity = "error"

	// SeverityWarning marks recoverable conditions the user should see
	// but that do not block further interaction.
	SeverityWarning Severity = "warning"
)

// CustomError is the typed error structure used throughout the application.
// The Key is stable and machine-readable (e.g. "lobby.full"); the Message is
// the localizable user-facing description.
type CustomError struct {
	// Key is the machine-readable error identifier (see key constants).
	Key string

	// Message is the user-friendly error description.
	Message string

	// Severity tells the rendering layer how to present the error.
	Severity Severity

	// Status is the HTTP status code the local API responds with.
	Status int
}

// Error implements the standard Go error interface.
func (e CustomError) Error() string {
	return fmt.Sprintf("%s (HTTP %d): %s", e.Key, e.Status, e.Message)
}

// NewError constructs a new *CustomError from a predefined error key.
// Optional details are applied printf-style to message templates that carry
// formatting placeholders. Unknown keys fall back to KeyUnknown.
func NewError(key string, details ...any) *CustomError {
	templateErr, ok := errorMap[key]

	if !ok {
		logx.Warn("Unknown error key requested", "requested_key", key)

		unknownErr := errorMap[KeyUnknown]
		return &CustomError{
			Key:      unknownErr.Key,
			Message:  unknownErr.Message,
			Severity: unknownErr.Severity,
			Status:   unknownErr.Status,
		}
	}

	customErr := templateErr

	if customErr.Status == 0 {
		customErr.Status = http.StatusBadRequest
	}
	if customErr.Severity == "" {
		customErr.Severity = SeverityError
	}

	if key == KeyUnknown && len(details) > 0 {
		if originalErr, ok := details[0].(error); ok {
			logx.Error(originalErr, "Wrapping underlying error as KeyUnknown")
		}
	} else if len(details) > 0 {
		if strings.Contains(customErr.Message, "%") {
			customErr.Message = fmt.Sprintf(customErr.Message, details...)
		} else {
			logx.Warn("Details provided for error, but message template has no placeholders. Details ignored.",
				"key", key)
		}
	}

	return &customErr
}

// IsKey reports whether err is a *CustomError carrying the given key.
func IsKey(err error, key string) bool {
	customErr, ok := err.(*CustomError)
	return ok && customErr.Key == key
}
