package adapter

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// TabWidth is the number of spaces a tab expands to
const TabWidth = 4

// TextSanitizer strips terminal escape sequences and control characters from
// loaded text so the paginator only ever measures printable cells
type TextSanitizer struct{}

// Sanitize implements domain.Sanitizer
func (TextSanitizer) Sanitize(raw string) string {
	s := strings.TrimPrefix(raw, "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\t", strings.Repeat(" ", TabWidth))
	s = ansi.Strip(s)

	return strings.Map(func(r rune) rune {
		if r == '\n' || !unicode.IsControl(r) {
			return r
		}
		return -1
	}, s)
}
