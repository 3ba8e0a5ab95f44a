package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalidStockStatus = errors.New("invalid stock status")

type ResultType string

const (
	ResultProduct  ResultType = "product"
	ResultBrand    ResultType = "brand"
	ResultCategory ResultType = "category"
)

// Rank orders result types when relevance scores are equal.
func (t ResultType) Rank() int {
	switch t {
	case ResultProduct:
		return 0
	case ResultBrand:
		return 1
	default:
		return 2
	}
}

type StockStatus string

const (
	StockAll        StockStatus = "all"
	StockIn         StockStatus = "in-stock"
	StockOut        StockStatus = "out-of-stock"
	StockLow        StockStatus = "low-stock"
	StockHigh       StockStatus = "high-stock"
	stockStatusNone StockStatus = ""
)

const (
	lowStockMax  = 5
	highStockMin = 20
)

func ParseStockStatus(s string) (StockStatus, error) {
	switch v := StockStatus(s); v {
	case stockStatusNone, StockAll, StockIn, StockOut, StockLow, StockHigh:
		return v, nil
	}
	return stockStatusNone, ErrInvalidStockStatus
}

// Range returns the inclusive stock quantity bounds of the bucket.
// A nil bound is unconstrained; ok is false for "no constraint".
func (s StockStatus) Range() (lo, hi *int, ok bool) {
	ptr := func(v int) *int { return &v }
	switch s {
	case StockIn:
		return ptr(1), nil, true
	case StockOut:
		return nil, ptr(0), true
	case StockLow:
		return ptr(1), ptr(lowStockMax), true
	case StockHigh:
		return ptr(highStockMin), nil, true
	}
	return nil, nil, false
}

// Contains reports whether quantity q falls into the bucket.
func (s StockStatus) Contains(q int) bool {
	lo, hi, ok := s.Range()
	if !ok {
		return true
	}
	if lo != nil && q < *lo {
		return false
	}
	if hi != nil && q > *hi {
		return false
	}
	return true
}

// SearchFilters holds optional caller constraints. Zero values mean
// "no constraint".
type SearchFilters struct {
	Category    string
	Brand       string
	PriceMin    *decimal.Decimal
	PriceMax    *decimal.Decimal
	StockStatus StockStatus
	Featured    *bool
	Materials   []string
	Tags        []string
}

type SearchQuery struct {
	Term              string
	Limit             int
	Offset            int
	IncludeBrands     bool
	IncludeCategories bool
	Filters           SearchFilters
}

// CandidateQuery is the part of a search pushed down to the product store.
type CandidateQuery struct {
	Term        string
	Limit       int
	StockStatus StockStatus
	Featured    *bool
}

type SearchResult struct {
	Product
	RelevanceScore int
	ResultType     ResultType
}

type SearchPage struct {
	Results []SearchResult
	Total   int
	Query   string
	Filters SearchFilters
	Limit   int
	Offset  int
	HasMore bool
	Message string
}

type SearchEventKind string

const (
	EventSearch          SearchEventKind = "search"
	EventSuggestionClick SearchEventKind = "suggestion_click"
)

type SearchEvent struct {
	ID             uuid.UUID
	Kind           SearchEventKind
	Query          string
	ResultCount    int
	Filters        SearchFilters
	SelectedResult string
	UserAgent      string
	Timestamp      time.Time
}

func NewSearchEvent(kind SearchEventKind, query string, count int) SearchEvent {
	return SearchEvent{
		ID:          uuid.New(),
		Kind:        kind,
		Query:       query,
		ResultCount: count,
		Timestamp:   time.Now().UTC(),
	}
}

var ErrPopularityUnavailable = errors.New("query popularity is unavailable")
