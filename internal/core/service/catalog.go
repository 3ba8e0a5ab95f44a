package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/relevance"
)

// Browse serves catalog pages. Category and brand constraints are matched
// against labels detected by the catalog rule tables, not database fields.
func (s Service) Browse(
	ctx context.Context, q domain.CatalogQuery,
) (domain.CatalogPage, error) {
	const op = "Service.Browse"

	if err := ctx.Err(); err != nil {
		return domain.CatalogPage{}, fmt.Errorf("%s: %w", op, err)
	}

	products, err := s.products.ListCatalog(ctx, s.cfg.CatalogFetchLimit)
	if err != nil {
		return domain.CatalogPage{}, fmt.Errorf("%s: %w", op, err)
	}

	limit, offset := s.pagination(q.Limit, q.Offset)
	items := s.detect(products)
	items = filterCatalog(items, q)
	sortCatalog(items, q.Sort)

	page := domain.CatalogPage{
		Total:  len(items),
		Limit:  limit,
		Offset: offset,
	}
	page.Items, page.HasMore = relevance.Paginate(items, offset, limit)
	return page, nil
}

func (s Service) detect(ps []domain.Product) []domain.CatalogItem {
	cl := s.cfg.CatalogClassifier
	items := make([]domain.CatalogItem, len(ps))
	for i, p := range ps {
		items[i].Product = p
		items[i].DetectedCategory, _ = cl.Categories.Detect(p.Name)
		items[i].DetectedBrand, _ = cl.Brands.Detect(p.Name)
	}
	return items
}

func filterCatalog(
	items []domain.CatalogItem, q domain.CatalogQuery,
) []domain.CatalogItem {
	out := make([]domain.CatalogItem, 0, len(items))
	for _, it := range items {
		if q.Category != "" && !strings.EqualFold(it.DetectedCategory, q.Category) {
			continue
		}
		if q.Brand != "" && !strings.EqualFold(it.DetectedBrand, q.Brand) {
			continue
		}
		if !relevance.InPriceRange(it.Price, q.PriceMin, q.PriceMax) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func sortCatalog(items []domain.CatalogItem, by domain.CatalogSort) {
	byName := func(a, b domain.CatalogItem) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}

	var less func(a, b domain.CatalogItem) int
	switch by {
	case domain.SortNameAsc:
		less = byName
	case domain.SortNameDesc:
		less = func(a, b domain.CatalogItem) int { return byName(b, a) }
	case domain.SortPriceAsc:
		less = func(a, b domain.CatalogItem) int { return a.Price.Cmp(b.Price) }
	case domain.SortPriceDesc:
		less = func(a, b domain.CatalogItem) int { return b.Price.Cmp(a.Price) }
	default:
		less = func(a, b domain.CatalogItem) int {
			if a.Featured != b.Featured {
				if a.Featured {
					return -1
				}
				return 1
			}
			return byName(a, b)
		}
	}

	slices.SortStableFunc(items, func(a, b domain.CatalogItem) int {
		if c := less(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
