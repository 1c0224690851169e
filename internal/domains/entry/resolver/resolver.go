// Package resolver maps a loose user query to a stored title.
//
// A query matches a title when its characters appear in the title in order,
// gaps allowed ("Fnd" matches "Foundation"). Matching is case sensitive and
// works on runes.
package resolver

// IsSubsequence reports whether query is a subsequence of title.
// Each matched rune consumes one position of title; positions are never revisited.
func IsSubsequence(query, title string) bool {
	q := []rune(query)
	if len(q) == 0 {
		return true
	}

	i := 0
	for _, r := range title {
		if r == q[i] {
			i++
			if i == len(q) {
				return true
			}
		}
	}
	return false
}

// Resolve returns the last title, in iteration order, that contains query
// as a subsequence. ok is false when no title matches.
//
// Every candidate is scanned and a later match replaces an earlier one.
// This is not a ranking: with several matches, enumeration order decides.
func Resolve(query string, titles []string) (match string, ok bool) {
	for _, t := range titles {
		if IsSubsequence(query, t) {
			match, ok = t, true
		}
	}
	return match, ok
}
