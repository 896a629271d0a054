// Package titles normalizes media titles for comparison and builds the URL
// slugs used when guessing catalog page addresses.
package titles

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
)

// Normalize lowercases a title, transliterates it to ASCII, strips
// punctuation, and collapses whitespace. Two titles that normalize to the
// same string are treated as the same title.
func Normalize(title string) string {
	decoded := unidecode.Unidecode(title)

	var b strings.Builder
	b.Grow(len(decoded))
	for _, r := range decoded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Slugify converts a title to the lowercase hyphenated form used in catalog
// page URLs. Runs of non-alphanumeric characters become single hyphens, so
// "TRON: Ares" becomes "tron-ares" and "Movie's Name" becomes "movie-s-name".
func Slugify(title string) string {
	decoded := unidecode.Unidecode(title)

	var b strings.Builder
	b.Grow(len(decoded))
	pendingHyphen := false
	for _, r := range decoded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteRune('-')
			}
			pendingHyphen = false
			b.WriteRune(unicode.ToLower(r))
		} else {
			pendingHyphen = true
		}
	}
	return b.String()
}

// SlugInPath reports whether slug appears as a complete segment of the URL
// path. A partial match inside a longer segment does not count: "man" is not
// in "/us/movie/superman/umc.123", but "superman" is.
func SlugInPath(slug, urlPath string) bool {
	if slug == "" {
		return false
	}
	for _, segment := range strings.Split(urlPath, "/") {
		if segment == slug {
			return true
		}
	}
	return false
}

// Words splits a normalized title into its component words.
func Words(title string) []string {
	return strings.Fields(Normalize(title))
}
