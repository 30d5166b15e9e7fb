package validation

import (
	"errors"
	"fmt"
)

// ValidatePassword enforces the configured minimum length and the
// bcrypt input ceiling.
func ValidatePassword(password string, minLength int) error {
	if minLength <= 0 {
		minLength = 8
	}
	if len(password) < minLength {
		return fmt.Errorf("password must be at least %d characters", minLength)
	}

	// bcrypt silently truncates inputs longer than 72 bytes
	if len(password) > 72 {
		return errors.New("password must not exceed 72 characters")
	}

	return nil
}
