package port

import (
	"context"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
)

type (
	runnerContextWg interface {
		Run(context.Context, context.CancelFunc, *sync.WaitGroup)
	}

	closer interface {
		Close()
	}
)

// Inbound ports.

type ProductSearcher interface {
	Search(context.Context, domain.SearchQuery) (domain.SearchPage, error)
}

type CatalogBrowser interface {
	Browse(context.Context, domain.CatalogQuery) (domain.CatalogPage, error)
}

type SuggestionClickTracker interface {
	TrackSuggestionClick(context.Context, domain.SearchEvent)
}

type SearchEventsSaver interface {
	SaveSearchEvents(context.Context, []domain.SearchEvent) error
}

type QueryPopularity interface {
	QuerySearches(ctx context.Context, query string) (int64, error)
}

// Outbound ports.

type ProductsStorage interface {
	FindCandidates(context.Context, domain.CandidateQuery) ([]domain.Product, error)
	FindBrands(ctx context.Context, term string, limit int) ([]domain.Brand, error)
	FindCategories(ctx context.Context, term string, limit int) ([]domain.Category, error)
	ListCatalog(ctx context.Context, limit int) ([]domain.Product, error)
}

type SearchEventsStorage interface {
	StoreSearchEvents(context.Context, []domain.SearchEvent) error
}

// A SearchEventsSink accepts analytics events without blocking the caller.
// Delivery is at most once; failures are never reported back.
type SearchEventsSink interface {
	Submit(domain.SearchEvent)
}

// A SearchEventsRecorder writes one event to the analytics store.
type SearchEventsRecorder interface {
	RecordSearchEvent(context.Context, domain.SearchEvent) error
}

type QueryStatsReader interface {
	Searches(query string) (int64, error)
}

type SearchEventsConsumer interface {
	Run(context.Context)
	closer
}

type QueryStatsProcessor interface {
	runnerContextWg
	closer
}
