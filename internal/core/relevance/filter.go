package relevance

import (
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/shopspring/decimal"
)

// A Filter applies caller constraints to fetched candidates.
type Filter struct {
	filters    domain.SearchFilters
	classifier domain.Classifier
}

func NewFilter(f domain.SearchFilters, c domain.Classifier) Filter {
	return Filter{filters: f, classifier: c}
}

func (f Filter) Apply(ps []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(ps))
	for _, p := range ps {
		if f.Keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (f Filter) Keep(p domain.Product) bool {
	fs := f.filters

	if !InPriceRange(p.Price, fs.PriceMin, fs.PriceMax) {
		return false
	}
	if !fs.StockStatus.Contains(p.StockQuantity) {
		return false
	}
	if fs.Featured != nil && p.Featured != *fs.Featured {
		return false
	}
	if len(fs.Materials) != 0 && !AnyContains(p.Materials, fs.Materials) {
		return false
	}
	if len(fs.Tags) != 0 && !AnyContains(p.Tags, fs.Tags) {
		return false
	}
	if fs.Category != "" &&
		!matchLabel(p.CategoryName, p.Name, fs.Category, f.classifier.Categories) {
		return false
	}
	if fs.Brand != "" &&
		!matchLabel(p.BrandName, p.Name, fs.Brand, f.classifier.Brands) {
		return false
	}
	return true
}

// InPriceRange reports lo <= price <= hi; nil bounds are unconstrained.
func InPriceRange(price decimal.Decimal, lo, hi *decimal.Decimal) bool {
	if lo != nil && price.LessThan(*lo) {
		return false
	}
	if hi != nil && price.GreaterThan(*hi) {
		return false
	}
	return true
}

// AnyContains reports whether any of values case-insensitively contains any
// of wanted.
func AnyContains(values, wanted []string) bool {
	for _, v := range values {
		v = strings.ToLower(v)
		for _, w := range wanted {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" && strings.Contains(v, w) {
				return true
			}
		}
	}
	return false
}

func matchLabel(field, name, want string, rs domain.RuleSet) bool {
	if strings.Contains(strings.ToLower(field), strings.ToLower(want)) {
		return true
	}
	label, ok := rs.Detect(name)
	return ok && strings.EqualFold(label, want)
}
