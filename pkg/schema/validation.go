package schema

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidationError represents input rejected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// IsBlank reports whether s is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidateMessage validates chat input.
func ValidateMessage(text string) error {
	if IsBlank(text) {
		return &ValidationError{Field: "message", Message: "must not be empty"}
	}
	return nil
}

// ValidateProjectName validates a project name.
func ValidateProjectName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < ProjectNameMin || n > ProjectNameMax {
		return &ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("must be %d-%d characters", ProjectNameMin, ProjectNameMax),
		}
	}
	return nil
}

// ValidatePromptContent validates system prompt content.
func ValidatePromptContent(content string) error {
	if IsBlank(content) {
		return &ValidationError{Field: "content", Message: "must not be empty"}
	}
	return nil
}

// ValidateLogin validates login credentials.
func ValidateLogin(email, password string) error {
	if IsBlank(email) {
		return &ValidationError{Field: "email", Message: "must not be empty"}
	}
	if password == "" {
		return &ValidationError{Field: "password", Message: "must not be empty"}
	}
	return nil
}

// ValidateRegistration validates a new account.
func ValidateRegistration(email, password string) error {
	if IsBlank(email) || !strings.Contains(email, "@") {
		return &ValidationError{Field: "email", Message: "must be a valid address"}
	}
	n := utf8.RuneCountInString(password)
	if n < PasswordMin || n > PasswordMax {
		return &ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("must be %d-%d characters", PasswordMin, PasswordMax),
		}
	}
	return nil
}
