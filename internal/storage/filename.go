package storage

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SanitizeFilename reduces an uploaded filename to a safe basename:
// directory components are dropped, diacritics are stripped, and
// anything outside [A-Za-z0-9_.-] collapses to an underscore. Returns
// "" when nothing usable remains.
func SanitizeFilename(name string) string {
	// Strip any path the client sent along
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	// Decompose and drop combining marks: "fachada-jardín.jpg" becomes
	// "fachada-jardin.jpg"
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(t, name)
	if err == nil {
		name = ascii
	}

	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" || name == "." || name == ".." {
		return ""
	}
	return name
}
