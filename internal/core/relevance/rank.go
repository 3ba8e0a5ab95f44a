package relevance

import (
	"cmp"
	"slices"

	"github.com/niksmo/storefront/internal/core/domain"
)

// Sort orders results by descending score. Equal scores fall back to result
// type (product, brand, category) and then to ascending id, so identical
// inputs always rank identically.
func Sort(rs []domain.SearchResult) {
	slices.SortStableFunc(rs, func(a, b domain.SearchResult) int {
		if c := cmp.Compare(b.RelevanceScore, a.RelevanceScore); c != 0 {
			return c
		}
		if c := cmp.Compare(a.ResultType.Rank(), b.ResultType.Rank()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Paginate slices items by offset and limit and reports whether more items
// follow the page. Offset and limit must not be negative.
func Paginate[T any](items []T, offset, limit int) (page []T, hasMore bool) {
	total := len(items)
	if offset >= total {
		return []T{}, false
	}
	rest := total - offset
	return items[offset : offset+min(limit, rest)], rest > limit
}
