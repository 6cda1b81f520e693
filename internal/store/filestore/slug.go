package filestore

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const maxSlugLength = 50

// slugify keeps ASCII letters and digits of title, folding accents away
// and joining runs of anything else into a single hyphen.
func slugify(title string) string {
	var b strings.Builder
	gap := false
	for _, r := range norm.NFKD.String(strings.ToLower(title)) {
		switch {
		case unicode.Is(unicode.Mn, r):
		case r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if gap && b.Len() > 0 {
				b.WriteByte('-')
			}
			gap = false
			b.WriteRune(r)
		default:
			gap = true
		}
	}
	return cutSlug(b.String(), maxSlugLength)
}

// cutSlug shortens slug to n bytes, preferring to end on a word.
func cutSlug(slug string, n int) string {
	if len(slug) <= n {
		return slug
	}
	if i := strings.LastIndexByte(slug[:n+1], '-'); i > 0 {
		return slug[:i]
	}
	return slug[:n]
}

// filename is "<id>-<slug>.md" with the id padded to three digits.
func filename(id int, title string) string {
	slug := slugify(title)
	if slug == "" {
		slug = "task"
	}
	return fmt.Sprintf("%03d-%s.md", id, slug)
}
