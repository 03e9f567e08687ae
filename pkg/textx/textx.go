// Package textx provides small text utilities used across the project.
package textx

import (
	"strings"
)

// SanitizeText removes control characters except tab/newline/CR and trims spaces.
func SanitizeText(s string) string {
	// strip control chars outside tab/newline/carriage return
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// CleanDisplayText prepares recovered model text for display: control
// characters are dropped, residual two-character escape sequences are
// resolved, whitespace is collapsed and sentence spacing normalized.
func CleanDisplayText(s string) string {
	// Resolve escape sequences the model may have emitted as literal
	// backslash pairs inside its JSON string values.
	r := strings.NewReplacer(
		`\n`, " ",
		`\r`, "",
		`\t`, " ",
		`\\`, `\`,
		`\"`, `"`,
	)
	s = r.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, c := range s {
		switch {
		case c == ' ' || c == '\n' || c == '\r' || c == '\t':
			space = true
		case c < 32 || c == 127:
			// drop remaining control characters
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(c)
		}
	}
	return b.String()
}
