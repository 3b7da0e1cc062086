package bands

import (
	"strings"
	"unicode"
)

// Slugify lowers the name and collapses every non-alphanumeric run into a
// single hyphen ("Night Owls, Vol. 2" -> "night-owls-vol-2").
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
