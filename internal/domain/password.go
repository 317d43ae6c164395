package domain

import (
	"fmt"
	"unicode"
)

const minPasswordLength = 8

// ValidatePassword enforces the password policy applied at signup and reset:
// at least 8 characters with one uppercase letter, one digit, and one symbol.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, minPasswordLength)
	}

	var hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}

	if !hasUpper || !hasDigit || !hasSymbol {
		return fmt.Errorf("%w: must include an uppercase letter, a digit, and a symbol", ErrWeakPassword)
	}
	return nil
}
