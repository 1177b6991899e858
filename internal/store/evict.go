package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mindstash/mindstash/internal/model"
)

// WithEviction wraps a Store so that item writes rejected for lack of
// space evict the oldest half of archived items and retry once. Capture
// must never fail with data loss just because the disk filled up with
// superseded records.
func WithEviction(inner Store, log zerolog.Logger) Store {
	return &evictingStore{inner: inner, log: log}
}

type evictingStore struct {
	inner Store
	log   zerolog.Logger
}

func (s *evictingStore) Items() Items                            { return &evictingItems{inner: s.inner, log: s.log} }
func (s *evictingStore) Projects() Projects                      { return s.inner.Projects() }
func (s *evictingStore) HealthPing(ctx context.Context) error    { return s.inner.HealthPing(ctx) }
func (s *evictingStore) Close() error                            { return s.inner.Close() }

type evictingItems struct {
	inner Store
	log   zerolog.Logger
}

// IsQuotaErr reports whether err looks like a full-storage write failure.
// Covers the sentinel plus the error strings of the sqlite and postgres
// drivers.
func IsQuotaErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, model.ErrQuotaExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database or disk is full") ||
		strings.Contains(msg, "disk full") ||
		strings.Contains(msg, "no space left on device")
}

func (e *evictingItems) Create(ctx context.Context, it *model.Item) (*model.Item, error) {
	out, err := e.inner.Items().Create(ctx, it)
	if !IsQuotaErr(err) {
		return out, err
	}
	if evictErr := e.evictArchived(ctx); evictErr != nil {
		return nil, err
	}
	return e.inner.Items().Create(ctx, it)
}

func (e *evictingItems) Update(ctx context.Context, id string, upd model.ItemUpdate) (*model.Item, error) {
	out, err := e.inner.Items().Update(ctx, id, upd)
	if !IsQuotaErr(err) {
		return out, err
	}
	if evictErr := e.evictArchived(ctx); evictErr != nil {
		return nil, err
	}
	return e.inner.Items().Update(ctx, id, upd)
}

// evictArchived deletes the oldest ceil(n/2) archived items by UpdatedAt.
// Returns an error when there is nothing to evict, so the caller can
// surface the original write failure instead.
func (e *evictingItems) evictArchived(ctx context.Context) error {
	archived, err := e.inner.Items().ListByStatus(ctx, model.StatusArchived)
	if err != nil {
		return err
	}
	if len(archived) == 0 {
		return model.ErrQuotaExceeded
	}
	sort.Slice(archived, func(i, j int) bool {
		return archived[i].UpdatedAt.Before(archived[j].UpdatedAt)
	})
	n := (len(archived) + 1) / 2
	for _, it := range archived[:n] {
		if err := e.inner.Items().Delete(ctx, it.ID); err != nil {
			e.log.Error().Err(err).Str("item_id", it.ID).Msg("evict delete failed")
		}
	}
	e.log.Warn().Int("evicted", n).Msg("storage quota pressure: archived items evicted")
	return nil
}

func (e *evictingItems) Get(ctx context.Context, id string) (*model.Item, error) {
	return e.inner.Items().Get(ctx, id)
}

func (e *evictingItems) List(ctx context.Context) ([]*model.Item, error) {
	return e.inner.Items().List(ctx)
}

func (e *evictingItems) ListByStatus(ctx context.Context, status model.Status) ([]*model.Item, error) {
	return e.inner.Items().ListByStatus(ctx, status)
}

func (e *evictingItems) ListPending(ctx context.Context) ([]*model.Item, error) {
	return e.inner.Items().ListPending(ctx)
}

func (e *evictingItems) Delete(ctx context.Context, id string) error {
	return e.inner.Items().Delete(ctx, id)
}
