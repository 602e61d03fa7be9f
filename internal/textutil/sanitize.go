package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
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

// MaxFileNameBytes caps generated names below the 255-byte filesystem limit,
// leaving room for a -N collision suffix, a timestamp prefix and an extension.
const MaxFileNameBytes = 200

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters and control runes are removed. The result is trimmed and capped
// at MaxFileNameBytes without splitting a multi-byte character.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = strings.Join(strings.Fields(fileNameReplacer.Replace(name)), " ")
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = TruncateBytes(name, MaxFileNameBytes)
	return strings.Trim(strings.TrimSpace(name), ".")
}

// Slug converts a title to a lowercase, hyphen-separated token. Letters and
// digits from any script are kept; every other run becomes a single hyphen.
// Returns "article" for input without letters or digits.
func Slug(value string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.TrimSpace(value) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingHyphen = true
	}
	out := strings.TrimRight(TruncateBytes(b.String(), MaxFileNameBytes), "-")
	if out == "" {
		return "article"
	}
	return out
}

// TruncateBytes shortens s to at most limit bytes, backing up to the start of
// a rune so the result stays valid UTF-8.
func TruncateBytes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
