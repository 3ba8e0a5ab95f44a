package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/storefront/internal/core/port"
)

// GET /api/catalog?category=&brand=&sort=&priceMin=&priceMax=&limit=&offset= (200 OK, 500 Internal server error)

type CatalogHandler struct {
	browser port.CatalogBrowser
}

func RegisterCatalog(mux *http.ServeMux, browser port.CatalogBrowser) {
	h := CatalogHandler{browser}
	mux.HandleFunc("GET /api/catalog", h.GetCatalog)
}

func (h CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetCatalog"
	log := slog.With("op", op, "requestID", RequestID(r.Context()))

	page, err := h.browser.Browse(r.Context(), catalogQuery(r.URL.Query()))
	if err != nil {
		log.Error("failed to browse catalog", "err", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "catalog is unavailable",
		})
		return
	}

	writeJSON(w, http.StatusOK, toCatalogResponse(page))
}
