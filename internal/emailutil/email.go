package emailutil

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/cases"
)

// Separator splits the local part from the domain part
const Separator = "@"

// Fold returns the full Unicode case folding of s.
// Strings that differ only in case fold to the same value ("STRASSE" and "straße").
func Fold(s string) string {
	// cases.Caser is stateful, so each call gets its own.
	return cases.Fold().String(s)
}

// IsValid reports whether s contains the separator
func IsValid(s string) bool {
	return strings.Contains(s, Separator)
}

// ExtractDomain returns everything after the last separator.
// The boolean is false when s has no separator at all.
func ExtractDomain(s string) (string, bool) {
	i := strings.LastIndex(s, Separator)
	if i < 0 {
		return "", false
	}
	return s[i+len(Separator):], true
}

// Normalize folds an email address or domain for consistent comparison
// after trimming whitespace
func Normalize(s string) string {
	return Fold(strings.TrimSpace(s))
}

// Fingerprint returns a short, stable identifier for an address that is safe to log.
// Addresses that fold equal share a fingerprint.
func Fingerprint(s string) string {
	sum := blake2b.Sum256([]byte(Fold(s)))
	return hex.EncodeToString(sum[:6])
}
