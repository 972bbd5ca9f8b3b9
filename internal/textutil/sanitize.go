package textutil

import (
	"strings"
	"unicode"
)

// fileNameReplacer maps characters that are forbidden on common filesystems
// to safe stand-ins. Colons keep a readable separator ("Title: Part" becomes
// "Title - Part").
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", " -",
	"|", "-",
	"*", "-",
	"?", "",
	"<", "",
	">", "",
	"\"", "'",
	"`", "'",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename,
// drops control characters, collapses runs of whitespace and trims trailing
// dots and spaces (rejected by Windows shares).
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = fileNameReplacer.Replace(name)
	name = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.Join(strings.Fields(name), " ")
	return strings.TrimRight(name, " .")
}
