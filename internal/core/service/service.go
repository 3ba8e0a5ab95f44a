package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/internal/core/relevance"
)

var (
	_ port.ProductSearcher        = (*Service)(nil)
	_ port.CatalogBrowser         = (*Service)(nil)
	_ port.SuggestionClickTracker = (*Service)(nil)
	_ port.SearchEventsSaver      = (*Service)(nil)
	_ port.QueryPopularity        = (*Service)(nil)
)

const shortQueryMessage = "Search query must be at least 2 characters long"

const (
	defaultLimit             = 20
	defaultMaxLimit          = 100
	defaultCandidateFactor   = 3
	defaultRelatedLimit      = 10
	defaultCatalogFetchLimit = 500
)

type Config struct {
	DefaultLimit      int
	MaxLimit          int
	CandidateFactor   int
	RelatedLimit      int
	CatalogFetchLimit int
	SearchClassifier  domain.Classifier
	CatalogClassifier domain.Classifier
}

func (c *Config) normalize() {
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = defaultLimit
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = defaultMaxLimit
	}
	c.DefaultLimit = min(c.DefaultLimit, c.MaxLimit)
	if c.CandidateFactor <= 0 {
		c.CandidateFactor = defaultCandidateFactor
	}
	if c.RelatedLimit <= 0 {
		c.RelatedLimit = defaultRelatedLimit
	}
	if c.CatalogFetchLimit <= 0 {
		c.CatalogFetchLimit = defaultCatalogFetchLimit
	}
}

type Service struct {
	cfg          Config
	products     port.ProductsStorage
	searchEvents port.SearchEventsStorage
	sink         port.SearchEventsSink
	stats        port.QueryStatsReader
}

// New returns the core service. stats may be nil when query popularity is
// not tracked.
func New(
	cfg Config,
	products port.ProductsStorage,
	searchEvents port.SearchEventsStorage,
	sink port.SearchEventsSink,
	stats port.QueryStatsReader,
) Service {
	cfg.normalize()
	return Service{
		cfg:          cfg,
		products:     products,
		searchEvents: searchEvents,
		sink:         sink,
		stats:        stats,
	}
}

// Search runs the ranking pipeline: candidate fetch, post filters, scoring,
// merge with brand and category matches, sort and pagination.
//
// Upstream read failures shrink the result set instead of failing the call.
// An error is returned only when ctx is done.
func (s Service) Search(
	ctx context.Context, q domain.SearchQuery,
) (domain.SearchPage, error) {
	const op = "Service.Search"

	term := relevance.Normalize(q.Term)
	limit, offset := s.pagination(q.Limit, q.Offset)

	page := domain.SearchPage{
		Results: []domain.SearchResult{},
		Query:   term,
		Filters: q.Filters,
		Limit:   limit,
		Offset:  offset,
	}

	if !relevance.Searchable(term) {
		page.Message = shortQueryMessage
		return page, nil
	}

	if err := ctx.Err(); err != nil {
		return domain.SearchPage{}, fmt.Errorf("%s: %w", op, err)
	}

	scorer := relevance.NewScorer(term)

	results := s.productResults(ctx, term, limit, q.Filters, scorer)
	if q.IncludeBrands {
		results = append(results, s.brandResults(ctx, term, scorer)...)
	}
	if q.IncludeCategories {
		results = append(results, s.categoryResults(ctx, term, scorer)...)
	}

	if err := ctx.Err(); err != nil {
		return domain.SearchPage{}, fmt.Errorf("%s: %w", op, err)
	}

	relevance.Sort(results)
	page.Total = len(results)
	page.Results, page.HasMore = relevance.Paginate(results, offset, limit)

	evt := domain.NewSearchEvent(domain.EventSearch, term, page.Total)
	evt.Filters = q.Filters
	s.sink.Submit(evt)

	return page, nil
}

func (s Service) productResults(
	ctx context.Context,
	term string,
	limit int,
	filters domain.SearchFilters,
	scorer relevance.Scorer,
) []domain.SearchResult {
	const op = "Service.productResults"
	log := slog.With("op", op)

	candidates, err := s.products.FindCandidates(ctx, domain.CandidateQuery{
		Term:        term,
		Limit:       limit * s.cfg.CandidateFactor,
		StockStatus: filters.StockStatus,
		Featured:    filters.Featured,
	})
	if err != nil {
		log.Error("failed to fetch candidates", "err", err)
		return nil
	}

	candidates = relevance.NewFilter(filters, s.cfg.SearchClassifier).Apply(candidates)

	results := make([]domain.SearchResult, 0, len(candidates))
	for _, p := range candidates {
		score := scorer.Score(p, domain.ResultProduct)
		if score == 0 {
			continue
		}
		results = append(results, domain.SearchResult{
			Product:        p,
			RelevanceScore: score,
			ResultType:     domain.ResultProduct,
		})
	}
	return results
}

func (s Service) brandResults(
	ctx context.Context, term string, scorer relevance.Scorer,
) []domain.SearchResult {
	const op = "Service.brandResults"
	log := slog.With("op", op)

	brands, err := s.products.FindBrands(ctx, term, s.cfg.RelatedLimit)
	if err != nil {
		log.Error("failed to fetch brands", "err", err)
		return nil
	}

	results := make([]domain.SearchResult, 0, len(brands))
	for _, b := range brands {
		p := domain.ProductFromBrand(b)
		results = append(results, domain.SearchResult{
			Product:        p,
			RelevanceScore: scorer.Score(p, domain.ResultBrand),
			ResultType:     domain.ResultBrand,
		})
	}
	return results
}

func (s Service) categoryResults(
	ctx context.Context, term string, scorer relevance.Scorer,
) []domain.SearchResult {
	const op = "Service.categoryResults"
	log := slog.With("op", op)

	categories, err := s.products.FindCategories(ctx, term, s.cfg.RelatedLimit)
	if err != nil {
		log.Error("failed to fetch categories", "err", err)
		return nil
	}

	results := make([]domain.SearchResult, 0, len(categories))
	for _, c := range categories {
		p := domain.ProductFromCategory(c)
		results = append(results, domain.SearchResult{
			Product:        p,
			RelevanceScore: scorer.Score(p, domain.ResultCategory),
			ResultType:     domain.ResultCategory,
		})
	}
	return results
}

func (s Service) pagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	limit = min(limit, s.cfg.MaxLimit)
	return limit, max(offset, 0)
}

func (s Service) TrackSuggestionClick(
	ctx context.Context, evt domain.SearchEvent,
) {
	const op = "Service.TrackSuggestionClick"

	if err := ctx.Err(); err != nil {
		slog.Debug("drop suggestion click", "op", op, "err", err)
		return
	}

	evt.Kind = domain.EventSuggestionClick
	evt.Query = relevance.Normalize(evt.Query)
	s.sink.Submit(evt)
}

func (s Service) SaveSearchEvents(
	ctx context.Context, evts []domain.SearchEvent,
) error {
	const op = "Service.SaveSearchEvents"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err := s.searchEvents.StoreSearchEvents(ctx, evts)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s Service) QuerySearches(
	ctx context.Context, query string,
) (int64, error) {
	const op = "Service.QuerySearches"

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if s.stats == nil {
		return 0, fmt.Errorf("%s: %w", op, domain.ErrPopularityUnavailable)
	}

	n, err := s.stats.Searches(relevance.Normalize(query))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
