package textutil

import "strings"

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

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// TrimQuotedEdges removes double quotes from the first and last three
// characters of s; strings of six characters or fewer have quotes removed
// throughout. Caption generators like to wrap their output in quotes, and
// downstream formatting depends on this exact heuristic, so it is kept
// as-is rather than generalized.
func TrimQuotedEdges(s string) string {
	if s == "" {
		return s
	}
	if len(s) <= 6 {
		return strings.ReplaceAll(s, `"`, "")
	}
	head := strings.ReplaceAll(s[:3], `"`, "")
	tail := strings.ReplaceAll(s[len(s)-3:], `"`, "")
	return head + s[3:len(s)-3] + tail
}
