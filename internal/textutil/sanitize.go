package textutil

import (
	"strings"

	"golang.org/x/text/cases"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

var folder = cases.Fold()

// SanitizeFileName replaces filesystem-unsafe characters in a spectrum name.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. Leading dots are stripped so a name never produces a
// hidden file. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = strings.TrimSpace(fileNameReplacer.Replace(name))
	return strings.TrimSpace(strings.TrimLeft(name, "."))
}

// FoldHeader lower-cases and trims a column header for keyword matching.
// Unicode case folding is used so headers such as "WAVENUMBER (CM⁻¹)" or
// "Émissivité" compare the same way regardless of source casing.
func FoldHeader(header string) string {
	return strings.TrimSpace(folder.String(header))
}

// SplitExtension returns the file stem and the lower-cased extension (with
// the leading dot) of base.
func SplitExtension(base string) (string, string) {
	idx := strings.LastIndex(base, ".")
	if idx <= 0 {
		return base, ""
	}
	return base[:idx], strings.ToLower(base[idx:])
}
