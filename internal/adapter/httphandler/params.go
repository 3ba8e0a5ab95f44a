package httphandler

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Malformed optional parameters are treated as absent.

func intParam(v url.Values, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v.Get(key)))
	if err != nil {
		return 0
	}
	return n
}

func flagParam(v url.Values, key string) bool {
	return v.Get(key) == "true"
}

func boolParam(v url.Values, key string) *bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v.Get(key)))
	if err != nil {
		return nil
	}
	return &b
}

func decimalParam(v url.Values, key string) *decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(v.Get(key)))
	if err != nil {
		return nil
	}
	return &d
}

func csvParam(v url.Values, key string) []string {
	raw := v.Get(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func searchFilters(v url.Values) domain.SearchFilters {
	stock, _ := domain.ParseStockStatus(v.Get("stockStatus"))
	return domain.SearchFilters{
		Category:    strings.TrimSpace(v.Get("category")),
		Brand:       strings.TrimSpace(v.Get("brand")),
		PriceMin:    decimalParam(v, "priceMin"),
		PriceMax:    decimalParam(v, "priceMax"),
		StockStatus: stock,
		Featured:    boolParam(v, "featured"),
		Materials:   csvParam(v, "materials"),
		Tags:        csvParam(v, "tags"),
	}
}

func searchQuery(v url.Values) domain.SearchQuery {
	return domain.SearchQuery{
		Term:              v.Get("q"),
		Limit:             intParam(v, "limit"),
		Offset:            intParam(v, "offset"),
		IncludeBrands:     flagParam(v, "includeBrands"),
		IncludeCategories: flagParam(v, "includeCategories"),
		Filters:           searchFilters(v),
	}
}

func catalogQuery(v url.Values) domain.CatalogQuery {
	return domain.CatalogQuery{
		Category: strings.TrimSpace(v.Get("category")),
		Brand:    strings.TrimSpace(v.Get("brand")),
		PriceMin: decimalParam(v, "priceMin"),
		PriceMax: decimalParam(v, "priceMax"),
		Sort:     domain.ParseCatalogSort(v.Get("sort")),
		Limit:    intParam(v, "limit"),
		Offset:   intParam(v, "offset"),
	}
}
