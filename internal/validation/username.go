package validation

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	usernameStrip   = regexp.MustCompile(`[^a-z0-9._-]`)
)

// ValidateUsername restricts usernames to letters, digits, dots,
// underscores and hyphens.
func ValidateUsername(username string) error {
	if username == "" {
		return errors.New("username is required")
	}
	if len(username) < 3 {
		return errors.New("username must be at least 3 characters")
	}
	if len(username) > 150 {
		return errors.New("username is too long (max 150 characters)")
	}
	if !usernamePattern.MatchString(username) {
		return errors.New("username may only contain letters, numbers, dots, underscores or hyphens")
	}
	return nil
}

// SanitizeUsername lowercases source and strips everything outside
// [a-z0-9._-]. When nothing survives, fallback is used as-is.
func SanitizeUsername(source, fallback string) string {
	base := usernameStrip.ReplaceAllString(strings.ToLower(source), "")
	if base == "" {
		return fallback
	}
	return base
}

// NextFreeUsername returns base if unused, otherwise base1, base2, ...
// and records the chosen name in taken.
func NextFreeUsername(base string, taken map[string]bool) string {
	candidate := base
	for suffix := 1; taken[candidate]; suffix++ {
		candidate = base + strconv.Itoa(suffix)
	}
	taken[candidate] = true
	return candidate
}
