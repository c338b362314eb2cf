package auth

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError reports a bad login form field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidateLogin checks the login form and returns the trimmed email.
func ValidateLogin(email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return "", &ValidationError{Field: "email", Message: "Please enter a valid email address"}
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "", &ValidationError{Field: "password", Message: "Password must be at least 6 characters"}
	}
	return email, nil
}
