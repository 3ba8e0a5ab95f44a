// Package relevance holds the pure parts of product search: query
// normalisation, candidate filtering, additive scoring and ranking.
package relevance

import (
	"strings"
	"unicode/utf8"
)

const MinQueryLen = 2

func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Searchable reports whether a normalised term is long enough to search.
func Searchable(term string) bool {
	return utf8.RuneCountInString(term) >= MinQueryLen
}
