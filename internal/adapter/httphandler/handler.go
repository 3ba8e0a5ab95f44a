package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/internal/core/relevance"
)

// GET /api/search (200 OK, 500 Internal server error)
// GET /api/search/suggestions?q= (200 OK, 500 Internal server error)
// POST /api/search/analytics JSON {query, resultCount, selectedResult} (202 Accepted, 400 Bad request)
// GET /api/search/popularity?q= (200 OK, 400 Bad request, 404 Not found)

const suggestionsLimit = 8

type SearchHandler struct {
	searcher   port.ProductSearcher
	tracker    port.SuggestionClickTracker
	popularity port.QueryPopularity
}

type SearchService interface {
	port.ProductSearcher
	port.SuggestionClickTracker
	port.QueryPopularity
}

func RegisterSearch(mux *http.ServeMux, s SearchService) {
	h := SearchHandler{searcher: s, tracker: s, popularity: s}
	mux.HandleFunc("GET /api/search", h.GetSearch)
	mux.HandleFunc("GET /api/search/suggestions", h.GetSuggestions)
	mux.Handle("POST /api/search/analytics", AllowJSON(
		http.HandlerFunc(h.PostSuggestionClick),
	))
	mux.HandleFunc("GET /api/search/popularity", h.GetPopularity)
}

func (h SearchHandler) GetSearch(w http.ResponseWriter, r *http.Request) {
	const op = "SearchHandler.GetSearch"
	log := slog.With("op", op, "requestID", RequestID(r.Context()))

	page, err := h.searcher.Search(r.Context(), searchQuery(r.URL.Query()))
	if err != nil {
		log.Error("failed to search", "err", err)
		writeJSON(w, http.StatusInternalServerError, SearchErrorResponse{
			Error:   "search failed",
			Results: []SearchResult{},
		})
		return
	}

	writeJSON(w, http.StatusOK, toSearchResponse(page))
	log.Debug("served", "query", page.Query, "total", page.Total)
}

func (h SearchHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	const op = "SearchHandler.GetSuggestions"
	log := slog.With("op", op, "requestID", RequestID(r.Context()))

	page, err := h.searcher.Search(r.Context(), domain.SearchQuery{
		Term:              r.URL.Query().Get("q"),
		Limit:             suggestionsLimit,
		IncludeBrands:     true,
		IncludeCategories: true,
	})
	if err != nil {
		log.Error("failed to search suggestions", "err", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "suggestions failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, toSuggestions(page))
}

func (h SearchHandler) PostSuggestionClick(
	w http.ResponseWriter, r *http.Request,
) {
	const op = "SearchHandler.PostSuggestionClick"
	log := slog.With("op", op, "requestID", RequestID(r.Context()))

	var click SuggestionClick
	if err := json.NewDecoder(r.Body).Decode(&click); err != nil {
		log.Warn("failed to parse JSON", "err", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "invalid JSON data",
		})
		return
	}

	evt := domain.NewSearchEvent(
		domain.EventSuggestionClick, click.Query, click.ResultCount,
	)
	evt.SelectedResult = click.SelectedResult
	evt.UserAgent = r.UserAgent()
	h.tracker.TrackSuggestionClick(r.Context(), evt)

	w.WriteHeader(http.StatusAccepted)
}

func (h SearchHandler) GetPopularity(w http.ResponseWriter, r *http.Request) {
	const op = "SearchHandler.GetPopularity"
	log := slog.With("op", op, "requestID", RequestID(r.Context()))

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "query is required",
		})
		return
	}

	n, err := h.popularity.QuerySearches(r.Context(), q)
	if err != nil {
		if errors.Is(err, domain.ErrPopularityUnavailable) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{
				Error: "query popularity is not tracked",
			})
			return
		}
		log.Error("failed to read query popularity", "err", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "popularity failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, PopularityResponse{
		Query:    relevance.Normalize(q),
		Searches: n,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	const op = "writeJSON"

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response body", "op", op, "err", err)
	}
}
