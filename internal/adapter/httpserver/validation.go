package httpserver

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var userIDPattern = regexp.MustCompile(`[^a-zA-Z0-9@._-]`)

// SanitizeUserID strips characters outside the accepted identifier set
// and bounds length. The header is an opaque identity, not a credential.
func SanitizeUserID(id string) string {
	id = userIDPattern.ReplaceAllString(id, "")
	if len(id) > 100 {
		id = id[:100]
	}
	if id == "" {
		return "anonymous"
	}
	return id
}

// SanitizeString trims, strips null bytes, bounds length and forces
// valid UTF-8 on free-form string input.
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.TrimSpace(input)
	if len(input) > 1000 {
		input = input[:1000]
	}
	if !utf8.ValidString(input) {
		input = strings.ToValidUTF8(input, "")
	}
	return input
}
