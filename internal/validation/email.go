package validation

import (
	"errors"
	"net/mail"
	"strings"
)

// ValidateEmail validates email format and length
// Uses Go's built-in net/mail parser which follows RFC 5322
func ValidateEmail(email string) error {
	// RFC 5321: local part max 64, domain max 255, total max 254 with @
	if len(email) > 254 {
		return errors.New("email address is too long (max 254 characters)")
	}

	if email == "" {
		return errors.New("email address is required")
	}

	_, err := mail.ParseAddress(email)
	if err != nil {
		return errors.New("invalid email address format")
	}

	return nil
}

// ValidateGmail additionally requires a gmail.com address; the admin
// account policy only accepts Gmail identities.
func ValidateGmail(email string) error {
	err := ValidateEmail(email)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(strings.ToLower(email), "@gmail.com") {
		return errors.New("a valid gmail.com address is required")
	}
	return nil
}
