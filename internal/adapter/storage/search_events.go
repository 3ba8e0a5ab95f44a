package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var (
	_ port.SearchEventsStorage  = (*SearchEventsRepository)(nil)
	_ port.SearchEventsRecorder = (*SearchEventsRepository)(nil)
)

type filtersDocument struct {
	Category    string   `json:"category,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	PriceMin    *string  `json:"priceMin,omitempty"`
	PriceMax    *string  `json:"priceMax,omitempty"`
	StockStatus string   `json:"stockStatus,omitempty"`
	Featured    *bool    `json:"featured,omitempty"`
	Materials   []string `json:"materials,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type SearchEventsRepository struct {
	sqldb sqldb
}

func NewSearchEventsRepository(sqldb sqldb) SearchEventsRepository {
	return SearchEventsRepository{sqldb}
}

func (r SearchEventsRepository) RecordSearchEvent(
	ctx context.Context, evt domain.SearchEvent,
) error {
	const op = "SearchEventsRepository.RecordSearchEvent"

	if err := r.StoreSearchEvents(ctx, []domain.SearchEvent{evt}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// StoreSearchEvents inserts events in one transaction. Already stored event
// ids are skipped, so redelivered batches are harmless.
func (r SearchEventsRepository) StoreSearchEvents(
	ctx context.Context, evts []domain.SearchEvent,
) (storeErr error) {
	const op = "SearchEventsRepository.StoreSearchEvents"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if len(evts) == 0 {
		return nil
	}

	tx, err := r.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}

	defer func() {
		if storeErr == nil {
			if err := tx.Commit(); err != nil {
				storeErr = fmt.Errorf("%s: failed to commit %w", op, err)
			}
			return
		}

		err := tx.Rollback()
		if err != nil {
			log.Error("failed to rollback tx", "err", err)
		}
	}()

	query := `
		INSERT INTO search_analytics (
			id, kind, query, result_count, filters,
			selected_result, user_agent, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING;
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("%s: failed to prepare stmt: %w", op, err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Error("failed to close prepared stmt", "err", err)
		}
	}()

	for _, evt := range evts {
		filtersB, err := json.Marshal(toFiltersDocument(evt.Filters))
		if err != nil {
			return fmt.Errorf("%s: failed to encode filters: %w", op, err)
		}

		createdAt := evt.Timestamp
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}

		_, err = stmt.ExecContext(ctx,
			evt.ID.String(), string(evt.Kind), evt.Query, evt.ResultCount,
			string(filtersB), evt.SelectedResult, evt.UserAgent, createdAt,
		)
		if err != nil {
			return fmt.Errorf("%s: failed to exec: %w", op, err)
		}
	}

	return nil
}

func toFiltersDocument(f domain.SearchFilters) (d filtersDocument) {
	d.Category = f.Category
	d.Brand = f.Brand
	if f.PriceMin != nil {
		v := f.PriceMin.String()
		d.PriceMin = &v
	}
	if f.PriceMax != nil {
		v := f.PriceMax.String()
		d.PriceMax = &v
	}
	d.StockStatus = string(f.StockStatus)
	d.Featured = f.Featured
	d.Materials = f.Materials
	d.Tags = f.Tags
	return
}
