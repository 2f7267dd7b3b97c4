package evaluation

import (
	"strings"
	"unicode"
)

// Normalize lowercases s, drops every character outside [a-z0-9] and
// whitespace, and collapses whitespace runs to a single space.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Matches reports whether needle appears in haystack after normalization,
// either as a substring or token by token: every needle token must have a
// haystack token that contains it or is contained in it.
//
// The token rule is deliberately loose. Short tokens match generously, so
// "id" is satisfied by "idle" and a haystack token "a" satisfies any needle
// token containing an a. An empty needle never matches.
func Matches(haystack, needle string) bool {
	n := Normalize(needle)
	if n == "" {
		return false
	}
	h := Normalize(haystack)
	if strings.Contains(h, n) {
		return true
	}

	hayTokens := strings.Fields(h)
	for _, nt := range strings.Fields(n) {
		if !anyTokenOverlaps(hayTokens, nt) {
			return false
		}
	}
	return true
}

func anyTokenOverlaps(tokens []string, needle string) bool {
	for _, t := range tokens {
		if strings.Contains(t, needle) || strings.Contains(needle, t) {
			return true
		}
	}
	return false
}
