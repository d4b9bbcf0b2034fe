package storyhash

import (
	"regexp"
	"strings"
)

var (
	// unsafeIDChars are replaced by '-' when deriving ids. Letters, digits
	// and any other symbol (emoji included) are kept as-is.
	unsafeIDChars = regexp.MustCompile("[\\s’–—―′¿'`~!@#$%^&*()_|+\\-=?;:\",.<>{}\\[\\]\\\\/]")
	dashRuns      = regexp.MustCompile(`-+`)
)

// Sanitize converts arbitrary segment text into an id fragment. It is pure:
// the same input always yields the same output.
//
//	Sanitize("Button Group")  // "button-group"
//	Sanitize("  --UI/Kit-- ") // "ui-kit"
func Sanitize(s string) string {
	s = strings.ToLower(s)
	s = unsafeIDChars.ReplaceAllString(s, "-")
	s = dashRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// segmentID derives the id of a hierarchy segment from its parent's id.
func segmentID(parent, name string) string {
	if parent == "" {
		return Sanitize(name)
	}
	return Sanitize(parent + "-" + name)
}
