package httphandler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/niksmo/storefront/internal/adapter/httphandler"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSearchService struct {
	mock.Mock
}

func (s *MockSearchService) Search(
	ctx context.Context, q domain.SearchQuery,
) (domain.SearchPage, error) {
	args := s.Called(ctx, q)
	return args.Get(0).(domain.SearchPage), args.Error(1)
}

func (s *MockSearchService) TrackSuggestionClick(
	ctx context.Context, evt domain.SearchEvent,
) {
	s.Called(ctx, evt)
}

func (s *MockSearchService) QuerySearches(
	ctx context.Context, query string,
) (int64, error) {
	args := s.Called(ctx, query)
	return args.Get(0).(int64), args.Error(1)
}

func newMux(s *MockSearchService) http.Handler {
	mux := http.NewServeMux()
	httphandler.RegisterSearch(mux, s)
	return httphandler.Logging(mux)
}

func TestGetSearch(t *testing.T) {
	t.Run("ParsesParams", func(t *testing.T) {
		priceMin := decimal.NewFromInt(10)
		s := new(MockSearchService)
		s.On("Search", mock.Anything, mock.MatchedBy(
			func(q domain.SearchQuery) bool {
				f := q.Filters
				return q.Term == "Roor" &&
					q.Limit == 5 &&
					q.Offset == 10 &&
					q.IncludeBrands &&
					!q.IncludeCategories &&
					f.Brand == "roor" &&
					f.PriceMin != nil && f.PriceMin.Equal(decimal.NewFromInt(10)) &&
					f.PriceMax == nil &&
					f.StockStatus == domain.StockIn &&
					f.Featured != nil && *f.Featured &&
					assert.ObjectsAreEqual([]string{"glass", "silicone"}, f.Materials) &&
					f.Tags == nil
			},
		)).Return(domain.SearchPage{
			Results: []domain.SearchResult{{
				Product: domain.Product{
					ID:    "p1",
					Name:  "RooR Classic",
					Price: decimal.RequireFromString("199.99"),
				},
				RelevanceScore: 2000,
				ResultType:     domain.ResultProduct,
			}},
			Total:   1,
			Query:   "roor",
			Filters: domain.SearchFilters{PriceMin: &priceMin},
			Limit:   5,
			Offset:  10,
			HasMore: false,
		}, nil)

		target := "/api/search?q=Roor&limit=5&offset=10&includeBrands=true" +
			"&includeCategories=yes&brand=roor&priceMin=10&priceMax=abc" +
			"&stockStatus=in-stock&featured=true&materials=glass,%20silicone,"
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		newMux(s).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

		var raw struct {
			Results []struct {
				Price json.RawMessage `json:"price"`
			} `json:"results"`
			Filters struct {
				PriceMin json.RawMessage `json:"priceMin"`
			} `json:"filters"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
		require.Len(t, raw.Results, 1)
		assert.Equal(t, "199.99", string(raw.Results[0].Price))
		assert.Equal(t, "10", string(raw.Filters.PriceMin))

		var body httphandler.SearchResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.True(t, body.Results[0].Price.Equal(decimal.RequireFromString("199.99")))
		require.Len(t, body.Results, 1)
		assert.Equal(t, "p1", body.Results[0].ID)
		assert.Equal(t, "product", body.Results[0].ResultType)
		assert.Equal(t, 2000, body.Results[0].RelevanceScore)
		assert.Equal(t, []string{}, body.Results[0].Tags)
		assert.Equal(t, 1, body.Total)
		assert.Equal(t, "roor", body.Query)
		assert.Equal(t, httphandler.Pagination{Limit: 5, Offset: 10}, body.Pagination)
		s.AssertExpectations(t)
	})

	t.Run("ShortQuery", func(t *testing.T) {
		s := new(MockSearchService)
		s.On("Search", mock.Anything, mock.Anything).Return(domain.SearchPage{
			Results: []domain.SearchResult{},
			Query:   "a",
			Limit:   20,
			Message: "Search query must be at least 2 characters long",
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/search?q=a", nil)
		rec := httptest.NewRecorder()
		newMux(s).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{
			"results": [],
			"total": 0,
			"query": "a",
			"filters": {},
			"pagination": {"limit": 20, "offset": 0, "hasMore": false},
			"message": "Search query must be at least 2 characters long"
		}`, rec.Body.String())
	})

	t.Run("ServiceError", func(t *testing.T) {
		s := new(MockSearchService)
		s.On("Search", mock.Anything, mock.Anything).Return(
			domain.SearchPage{}, context.DeadlineExceeded,
		)

		req := httptest.NewRequest(http.MethodGet, "/api/search?q=roor", nil)
		rec := httptest.NewRecorder()
		newMux(s).ServeHTTP(rec, req)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t,
			`{"error": "search failed", "results": [], "total": 0}`,
			rec.Body.String(),
		)
	})
}

func TestGetSuggestions(t *testing.T) {
	s := new(MockSearchService)
	s.On("Search", mock.Anything, domain.SearchQuery{
		Term:              "roo",
		Limit:             8,
		IncludeBrands:     true,
		IncludeCategories: true,
	}).Return(domain.SearchPage{
		Results: []domain.SearchResult{
			{
				Product:        domain.Product{ID: "b1", Name: "RooR"},
				RelevanceScore: 1200,
				ResultType:     domain.ResultBrand,
			},
		},
		Total: 1,
		Query: "roo",
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/search/suggestions?q=roo", nil)
	rec := httptest.NewRecorder()
	newMux(s).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"suggestions": [{"name": "RooR", "resultType": "brand", "relevanceScore": 1200}],
		"query": "roo"
	}`, rec.Body.String())
}

func TestPostSuggestionClick(t *testing.T) {
	t.Run("Accepted", func(t *testing.T) {
		s := new(MockSearchService)
		s.On("TrackSuggestionClick", mock.Anything, mock.MatchedBy(
			func(evt domain.SearchEvent) bool {
				return evt.Kind == domain.EventSuggestionClick &&
					evt.Query == "roor" &&
					evt.ResultCount == 3 &&
					evt.SelectedResult == "RooR Classic" &&
					evt.UserAgent == "test-agent"
			},
		)).Return()

		body := `{"query":"roor","resultCount":3,"selectedResult":"RooR Classic"}`
		req := httptest.NewRequest(
			http.MethodPost, "/api/search/analytics", strings.NewReader(body),
		)
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		req.Header.Set("User-Agent", "test-agent")
		rec := httptest.NewRecorder()
		newMux(s).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		s.AssertExpectations(t)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		s := new(MockSearchService)

		req := httptest.NewRequest(
			http.MethodPost, "/api/search/analytics", strings.NewReader("{"),
		)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		newMux(s).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		s.AssertNotCalled(t, "TrackSuggestionClick", mock.Anything, mock.Anything)
	})

	t.Run("WrongMediaType", func(t *testing.T) {
		req := httptest.NewRequest(
			http.MethodPost, "/api/search/analytics", strings.NewReader("{}"),
		)
		req.Header.Set("Content-Type", "text/plain")
		rec := httptest.NewRecorder()
		newMux(new(MockSearchService)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})
}

func TestGetPopularity(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		searches int64
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "Tracked",
			target:   "/api/search/popularity?q=RooR",
			searches: 12,
			wantCode: http.StatusOK,
			wantBody: `{"query": "roor", "searches": 12}`,
		},
		{
			name:     "Untracked",
			target:   "/api/search/popularity?q=roor",
			err:      fmt.Errorf("op: %w", domain.ErrPopularityUnavailable),
			wantCode: http.StatusNotFound,
			wantBody: `{"error": "query popularity is not tracked"}`,
		},
		{
			name:     "MissingQuery",
			target:   "/api/search/popularity",
			wantCode: http.StatusBadRequest,
			wantBody: `{"error": "query is required"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := new(MockSearchService)
			s.On("QuerySearches", mock.Anything, mock.Anything).Return(
				tt.searches, tt.err,
			)

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()
			newMux(s).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestLoggingKeepsValidRequestID(t *testing.T) {
	const id = "0b6f0f3e-6c1e-4a57-9d59-2f3f5f1f8a10"

	var seen string
	h := httphandler.Logging(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			seen = httphandler.RequestID(r.Context())
			w.WriteHeader(http.StatusTeapot)
		},
	))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", id)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, id, seen)
	assert.Equal(t, id, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
