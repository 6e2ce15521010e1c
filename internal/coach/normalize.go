package coach

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	whitespaceRe      = regexp.MustCompile(`\s+`)
	spaceBeforePunctRe = regexp.MustCompile(`\s+([.,!?;:])`)
	punctNoSpaceRe    = regexp.MustCompile(`([.,!?;:])([A-Za-z])`)
)

// normalize runs the text-level cleanup pass, once, after all rule
// substitutions: collapse whitespace runs, trim, drop whitespace before
// punctuation, ensure a single space after punctuation followed by a letter,
// then uppercase the first rune. Case of every other rune is preserved.
func normalize(text string) string {
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	text = spaceBeforePunctRe.ReplaceAllString(text, "$1")
	text = punctNoSpaceRe.ReplaceAllString(text, "$1 $2")

	if text == "" {
		return text
	}
	r := []rune(text)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
