package analytics_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/niksmo/storefront/internal/adapter/analytics"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorderFunc func(context.Context, domain.SearchEvent) error

func (f recorderFunc) RecordSearchEvent(
	ctx context.Context, evt domain.SearchEvent,
) error {
	return f(ctx, evt)
}

func TestDispatcherRecords(t *testing.T) {
	var (
		mu  sync.Mutex
		got []string
		wg  sync.WaitGroup
	)
	wg.Add(2)

	rec := recorderFunc(func(ctx context.Context, evt domain.SearchEvent) error {
		defer wg.Done()
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		mu.Lock()
		got = append(got, evt.Query)
		mu.Unlock()
		return nil
	})

	d, err := analytics.NewDispatcher(analytics.Config{Workers: 2}, rec)
	require.NoError(t, err)

	d.Submit(domain.NewSearchEvent(domain.EventSearch, "roor", 3))
	d.Submit(domain.NewSearchEvent(domain.EventSearch, "glass", 1))
	wg.Wait()

	require.NoError(t, d.Close(time.Second))
	assert.ElementsMatch(t, []string{"roor", "glass"}, got)
}

func TestDispatcherDropsWhenBusy(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	rec := recorderFunc(func(context.Context, domain.SearchEvent) error {
		close(started)
		<-release
		return nil
	})

	d, err := analytics.NewDispatcher(analytics.Config{Workers: 1}, rec)
	require.NoError(t, err)

	require.NoError(t, d.TrySubmit(domain.NewSearchEvent(domain.EventSearch, "a", 0)))
	<-started

	err = d.TrySubmit(domain.NewSearchEvent(domain.EventSearch, "b", 0))
	assert.ErrorIs(t, err, analytics.ErrSinkOverloaded)

	assert.NotPanics(t, func() {
		d.Submit(domain.NewSearchEvent(domain.EventSearch, "c", 0))
	})

	close(release)
	require.NoError(t, d.Close(time.Second))
}

func TestDispatcherSwallowsRecorderErrors(t *testing.T) {
	done := make(chan struct{})
	rec := recorderFunc(func(context.Context, domain.SearchEvent) error {
		defer close(done)
		return errors.New("connection refused")
	})

	d, err := analytics.NewDispatcher(analytics.Config{}, rec)
	require.NoError(t, err)

	d.Submit(domain.NewSearchEvent(domain.EventSearch, "roor", 0))
	<-done
	require.NoError(t, d.Close(time.Second))
}

func TestDispatcherClosed(t *testing.T) {
	rec := recorderFunc(func(context.Context, domain.SearchEvent) error {
		return nil
	})

	d, err := analytics.NewDispatcher(analytics.Config{}, rec)
	require.NoError(t, err)
	require.NoError(t, d.Close(time.Second))

	err = d.TrySubmit(domain.NewSearchEvent(domain.EventSearch, "roor", 0))
	assert.ErrorIs(t, err, analytics.ErrSinkClosed)
}
