package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// QueryString turns a show fragment recovered from a filename into the key
// used for catalog searches and caching: NFC normalized, lower-cased,
// separators turned into spaces, other punctuation dropped (apostrophes
// vanish so "Grey's" and "Greys" agree), whitespace collapsed.
func QueryString(fragment string) string {
	fragment = norm.NFC.String(fragment)
	var b strings.Builder
	b.Grow(len(fragment))
	for _, r := range fragment {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == '&':
			b.WriteString(" and ")
		case unicode.IsSpace(r) || r == '.' || r == '_' || r == '-' || r == ':' || r == ',' || r == '/':
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// DisplayName title-cases a query string for user-facing placeholders such as
// "Lost (not found)".
func DisplayName(fragment string) string {
	query := QueryString(fragment)
	if query == "" {
		return ""
	}
	return cases.Title(language.Und).String(query)
}
