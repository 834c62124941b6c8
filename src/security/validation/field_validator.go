// backend/src/security/validation/field_validator.go
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var ErrValidationFailed = fmt.Errorf("validation failed")

const (
	MaxUsernameLength = 30
	MaxEmailLength    = 254
	MaxNotesLength    = 500
	MaxReasonLength   = 1024
	MinPasswordLength = 8
)

var (
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
)

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidateEmail checks basic email shape and length.
func ValidateEmail(s string) error {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, "email"); err != nil {
		return err
	}
	if err := ValidateStringMaxLength(trimmed, MaxEmailLength, "email"); err != nil {
		return err
	}
	if !emailRegex.MatchString(trimmed) {
		return fmt.Errorf("%w: email ('%s') is not in a valid format", ErrValidationFailed, s)
	}
	return nil
}

// ValidateUsername allows 3-30 alphanumeric characters and underscores.
func ValidateUsername(s string) error {
	trimmed := strings.TrimSpace(s)
	if !usernameRegex.MatchString(trimmed) {
		return fmt.Errorf("%w: username must be 3-30 characters of letters, numbers and underscores", ErrValidationFailed)
	}
	return nil
}

// ValidatePassword enforces the minimum length only; complexity rules are a
// product decision left to the frontend.
func ValidatePassword(s string) error {
	if utf8.RuneCountInString(s) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidationFailed, MinPasswordLength)
	}
	return nil
}
