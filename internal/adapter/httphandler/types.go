package httphandler

import (
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Money is a decimal amount encoded as a JSON number.
type Money struct {
	decimal.Decimal
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func toMoney(d *decimal.Decimal) *Money {
	if d == nil {
		return nil
	}
	return &Money{*d}
}

type (
	Product struct {
		ID               string   `json:"id"`
		Name             string   `json:"name"`
		BrandName        string   `json:"brandName"`
		Price            Money    `json:"price"`
		ImageURL         string   `json:"imageUrl"`
		Description      string   `json:"description"`
		ShortDescription string   `json:"shortDescription"`
		SKU              string   `json:"sku"`
		Featured         bool     `json:"featured"`
		StockQuantity    int      `json:"stockQuantity"`
		Tags             []string `json:"tags"`
		Materials        []string `json:"materials"`
		CategoryName     string   `json:"categoryName"`
		Manufacturer     string   `json:"manufacturer"`
	}

	SearchResult struct {
		Product
		RelevanceScore int    `json:"relevanceScore"`
		ResultType     string `json:"resultType"`
	}

	Filters struct {
		Category    string   `json:"category,omitempty"`
		Brand       string   `json:"brand,omitempty"`
		PriceMin    *Money   `json:"priceMin,omitempty"`
		PriceMax    *Money   `json:"priceMax,omitempty"`
		StockStatus string   `json:"stockStatus,omitempty"`
		Featured    *bool    `json:"featured,omitempty"`
		Materials   []string `json:"materials,omitempty"`
		Tags        []string `json:"tags,omitempty"`
	}

	Pagination struct {
		Limit   int  `json:"limit"`
		Offset  int  `json:"offset"`
		HasMore bool `json:"hasMore"`
	}

	SearchResponse struct {
		Results    []SearchResult `json:"results"`
		Total      int            `json:"total"`
		Query      string         `json:"query"`
		Filters    Filters        `json:"filters"`
		Pagination Pagination     `json:"pagination"`
		Message    string         `json:"message,omitempty"`
	}

	SearchErrorResponse struct {
		Error   string         `json:"error"`
		Results []SearchResult `json:"results"`
		Total   int            `json:"total"`
	}

	Suggestion struct {
		Name           string `json:"name"`
		ResultType     string `json:"resultType"`
		RelevanceScore int    `json:"relevanceScore"`
	}

	SuggestionsResponse struct {
		Suggestions []Suggestion `json:"suggestions"`
		Query       string       `json:"query"`
	}

	SuggestionClick struct {
		Query          string `json:"query"`
		ResultCount    int    `json:"resultCount"`
		SelectedResult string `json:"selectedResult"`
	}

	PopularityResponse struct {
		Query    string `json:"query"`
		Searches int64  `json:"searches"`
	}

	CatalogProduct struct {
		Product
		DetectedCategory string `json:"detectedCategory"`
		DetectedBrand    string `json:"detectedBrand"`
	}

	CatalogResponse struct {
		Products   []CatalogProduct `json:"products"`
		Total      int              `json:"total"`
		Pagination Pagination       `json:"pagination"`
	}

	ErrorResponse struct {
		Error string `json:"error"`
	}
)

func toProduct(p domain.Product) Product {
	return Product{
		ID:               p.ID,
		Name:             p.Name,
		BrandName:        p.BrandName,
		Price:            Money{p.Price},
		ImageURL:         p.ImageURL,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		SKU:              p.SKU,
		Featured:         p.Featured,
		StockQuantity:    p.StockQuantity,
		Tags:             nonNil(p.Tags),
		Materials:        nonNil(p.Materials),
		CategoryName:     p.CategoryName,
		Manufacturer:     p.Manufacturer,
	}
}

func toSearchResponse(page domain.SearchPage) SearchResponse {
	results := make([]SearchResult, len(page.Results))
	for i, r := range page.Results {
		results[i] = SearchResult{
			Product:        toProduct(r.Product),
			RelevanceScore: r.RelevanceScore,
			ResultType:     string(r.ResultType),
		}
	}
	return SearchResponse{
		Results: results,
		Total:   page.Total,
		Query:   page.Query,
		Filters: toFilters(page.Filters),
		Pagination: Pagination{
			Limit:   page.Limit,
			Offset:  page.Offset,
			HasMore: page.HasMore,
		},
		Message: page.Message,
	}
}

func toFilters(f domain.SearchFilters) Filters {
	return Filters{
		Category:    f.Category,
		Brand:       f.Brand,
		PriceMin:    toMoney(f.PriceMin),
		PriceMax:    toMoney(f.PriceMax),
		StockStatus: string(f.StockStatus),
		Featured:    f.Featured,
		Materials:   f.Materials,
		Tags:        f.Tags,
	}
}

func toSuggestions(page domain.SearchPage) SuggestionsResponse {
	ss := make([]Suggestion, len(page.Results))
	for i, r := range page.Results {
		ss[i] = Suggestion{
			Name:           r.Name,
			ResultType:     string(r.ResultType),
			RelevanceScore: r.RelevanceScore,
		}
	}
	return SuggestionsResponse{Suggestions: ss, Query: page.Query}
}

func toCatalogResponse(page domain.CatalogPage) CatalogResponse {
	ps := make([]CatalogProduct, len(page.Items))
	for i, it := range page.Items {
		ps[i] = CatalogProduct{
			Product:          toProduct(it.Product),
			DetectedCategory: it.DetectedCategory,
			DetectedBrand:    it.DetectedBrand,
		}
	}
	return CatalogResponse{
		Products: ps,
		Total:    page.Total,
		Pagination: Pagination{
			Limit:   page.Limit,
			Offset:  page.Offset,
			HasMore: page.HasMore,
		},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
