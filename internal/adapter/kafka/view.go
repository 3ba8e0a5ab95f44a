package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lovoo/goka"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.QueryStatsReader = (*QueryStatsView)(nil)

// A QueryStatsView serves the group table of [QueryStatsProcessor].
type QueryStatsView struct {
	gv *goka.View
}

func NewQueryStatsView(
	seedBrokers []string, group string,
) (*QueryStatsView, error) {
	const op = "NewQueryStatsView"

	gv, err := goka.NewView(
		seedBrokers,
		goka.GroupTable(goka.Group(group)),
		searchCountCodec{},
	)
	if err != nil {
		return nil, opErr(err, op)
	}

	return &QueryStatsView{gv}, nil
}

// Run blocks until ctx is done or the view fails.
func (v *QueryStatsView) Run(ctx context.Context) {
	const op = "QueryStatsView.Run"
	log := slog.With("op", op)

	log.Info("running")
	err := v.gv.Run(ctx)
	if err != nil {
		log.Error("unexpected fail on run", "err", err)
		return
	}
	log.Info("stopped")
}

// Searches returns 0 for a query never searched.
func (v *QueryStatsView) Searches(query string) (int64, error) {
	const op = "QueryStatsView.Searches"

	val, err := v.gv.Get(query)
	if err != nil {
		return 0, opErr(err, op)
	}
	return countValue(val)
}

func countValue(val any) (int64, error) {
	const op = "countValue"

	if val == nil {
		return 0, nil
	}
	n, ok := val.(searchCount)
	if !ok {
		return 0, opErr(
			fmt.Errorf("%w: %T", ErrInvalidValueType, val), op,
		)
	}
	return int64(n), nil
}
