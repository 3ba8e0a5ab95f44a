package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/panjf2000/ants/v2"
)

var _ port.SearchEventsSink = (*Dispatcher)(nil)

var (
	ErrSinkClosed     = errors.New("analytics sink is closed")
	ErrSinkOverloaded = errors.New("analytics sink is overloaded")
)

const (
	defaultWorkers      = 4
	defaultWriteTimeout = 2 * time.Second
)

type Config struct {
	Workers      int
	WriteTimeout time.Duration
}

// A Dispatcher hands search events to a bounded worker pool.
// Events that find no idle worker are dropped.
type Dispatcher struct {
	pool         *ants.Pool
	recorder     port.SearchEventsRecorder
	writeTimeout time.Duration
}

func NewDispatcher(
	cfg Config, recorder port.SearchEventsRecorder,
) (*Dispatcher, error) {
	const op = "NewDispatcher"

	if recorder == nil {
		panic(fmt.Errorf("%s: recorder is nil", op)) // develop mistake
	}

	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}

	pool, err := ants.NewPool(cfg.Workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Dispatcher{
		pool:         pool,
		recorder:     recorder,
		writeTimeout: cfg.WriteTimeout,
	}, nil
}

// Submit never blocks. A rejected event is logged and discarded.
func (d *Dispatcher) Submit(evt domain.SearchEvent) {
	const op = "Dispatcher.Submit"

	if err := d.TrySubmit(evt); err != nil {
		slog.Warn(
			"search event dropped",
			"op", op, "eventID", evt.ID, "err", err,
		)
	}
}

func (d *Dispatcher) TrySubmit(evt domain.SearchEvent) error {
	const op = "Dispatcher.TrySubmit"

	err := d.pool.Submit(func() { d.record(evt) })
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ants.ErrPoolClosed):
		return fmt.Errorf("%s: %w", op, ErrSinkClosed)
	case errors.Is(err, ants.ErrPoolOverload):
		return fmt.Errorf("%s: %w", op, ErrSinkOverloaded)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (d *Dispatcher) record(evt domain.SearchEvent) {
	const op = "Dispatcher.record"
	log := slog.With("op", op, "eventID", evt.ID)

	ctx, cancel := context.WithTimeout(context.Background(), d.writeTimeout)
	defer cancel()

	if err := d.recorder.RecordSearchEvent(ctx, evt); err != nil {
		log.Error("failed to record search event", "err", err)
		return
	}
	log.Debug("search event recorded")
}

// Close stops accepting events and waits up to timeout
// for in-flight writes.
func (d *Dispatcher) Close(timeout time.Duration) error {
	const op = "Dispatcher.Close"
	log := slog.With("op", op)

	log.Info("closing analytics sink...")
	if err := d.pool.ReleaseTimeout(timeout); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("analytics sink is closed")
	return nil
}
