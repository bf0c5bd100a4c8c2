package source

import (
	"context"
	"errors"
	"fmt"

	"outagemonitor/internal/config"
	"outagemonitor/internal/storage"
	"outagemonitor/internal/telemetry"
)

// ErrFetch wraps every failure to obtain the raw page: network errors,
// timeouts, bad upstream status and a missing cached snapshot.
var ErrFetch = errors.New("fetch outage page")

// Source provides the current raw markup of the outage page.
type Source interface {
	Page(ctx context.Context) (string, error)
}

// Func adapts a plain function to Source.
type Func func(ctx context.Context) (string, error)

// Page calls f.
func (f Func) Page(ctx context.Context) (string, error) { return f(ctx) }

// StoreSource serves the last snapshot kept in a PageStore.
type StoreSource struct {
	store storage.PageStore
}

// NewStoreSource reads pages from store.
func NewStoreSource(store storage.PageStore) *StoreSource {
	return &StoreSource{store: store}
}

// Page returns the cached markup.
func (s *StoreSource) Page(ctx context.Context) (string, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return snap.Body, nil
}

// New selects what requests read according to cfg.Source.Serve.
func New(cfg config.Config, store storage.PageStore, metrics *telemetry.Metrics) Source {
	if cfg.Source.Serve == config.ServeLive {
		return NewHTTPFetcher(cfg.Source, metrics)
	}
	return NewStoreSource(store)
}
