package shared

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var leadingArticles = map[string]struct{}{
	"le": {}, "la": {}, "l": {}, "de": {}, "du": {}, "des": {},
	"the": {}, "a": {}, "an": {},
}

// FoldCase lower-cases s and removes diacritics. Punctuation and spacing are
// kept, so two inputs fold together only when an accent- and case-insensitive
// collation would also compare them equal.
func FoldCase(s string) string {
	// transform.Chain keeps state, so it is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return folded
}

// FoldName lower-cases s, removes diacritics and replaces every run of
// characters outside [a-z0-9] with a single space.
func FoldName(s string) string {
	folded := FoldCase(s)

	var b strings.Builder
	b.Grow(len(folded))
	space := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space && b.Len() > 0 {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// NormalizeName is FoldName plus removal of one leading article token.
// A name made only of an article is kept as is.
func NormalizeName(s string) string {
	folded := FoldName(s)
	head, rest, ok := strings.Cut(folded, " ")
	if !ok {
		return folded
	}
	if _, article := leadingArticles[head]; article {
		return rest
	}
	return folded
}
