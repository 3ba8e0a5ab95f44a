package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// A KeywordRule assigns Label to a product whose lower-cased name contains
// any of Keywords.
type KeywordRule struct {
	Label    string
	Keywords []string
}

// A RuleSet is an ordered, versioned keyword table. The first matching rule
// wins, so order is part of the contract.
type RuleSet struct {
	Version string
	Rules   []KeywordRule
}

// Detect returns the label of the first rule matching name.
func (rs RuleSet) Detect(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, r := range rs.Rules {
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && strings.Contains(name, kw) {
				return r.Label, true
			}
		}
	}
	return "", false
}

// Classifier pairs the category and brand tables used by one surface of the
// storefront.
type Classifier struct {
	Categories RuleSet
	Brands     RuleSet
}

type CatalogSort string

const (
	SortFeatured  CatalogSort = "featured"
	SortNameAsc   CatalogSort = "name-asc"
	SortNameDesc  CatalogSort = "name-desc"
	SortPriceAsc  CatalogSort = "price-asc"
	SortPriceDesc CatalogSort = "price-desc"
)

func ParseCatalogSort(s string) CatalogSort {
	switch v := CatalogSort(s); v {
	case SortNameAsc, SortNameDesc, SortPriceAsc, SortPriceDesc:
		return v
	}
	return SortFeatured
}

type CatalogQuery struct {
	Category string
	Brand    string
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
	Sort     CatalogSort
	Limit    int
	Offset   int
}

type CatalogItem struct {
	Product
	DetectedCategory string
	DetectedBrand    string
}

type CatalogPage struct {
	Items   []CatalogItem
	Total   int
	Limit   int
	Offset  int
	HasMore bool
}
