// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package browser lists and manages historical evaluation records. The
// remote result store is the sole source of truth: every fetch replaces the
// local snapshot wholesale, and a delete re-fetches the list instead of
// splicing the record out locally.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/pdiddy/evalsheet/internal/result"
	"github.com/pdiddy/evalsheet/pkg/types"
)

// ErrDeleteDeclined is returned when the confirmer rejects a delete. No
// remote call has been issued.
var ErrDeleteDeclined = errors.New("delete not confirmed")

// ErrNotInSnapshot is returned by Detail for a record id that is not part
// of the last fetched snapshot.
var ErrNotInSnapshot = errors.New("record not in the current snapshot")

// Store is the remote result store as the browser sees it.
type Store interface {
	// ListResults fetches all historical records in raw form.
	ListResults(ctx context.Context) ([]json.RawMessage, error)

	// DeleteResult removes one record.
	DeleteResult(ctx context.Context, id int) error
}

// Confirmer approves a destructive operation before the remote call is
// issued. Interactive callers prompt the user; tests script the answer.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(prompt string) bool

// Confirm calls f.
func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// Browser holds the last fetched snapshot of historical records. It is
// safe for concurrent use.
type Browser struct {
	store   Store
	confirm Confirmer

	mu       sync.Mutex
	snapshot []types.HistoricalRecord
}

// New returns a Browser with an empty snapshot.
func New(store Store, confirm Confirmer) *Browser {
	return &Browser{store: store, confirm: confirm}
}

// List fetches all historical records, normalizes each row, and replaces
// the snapshot. Rows the server returns in a legacy or malformed shape
// still produce usable records; only transport failures are errors.
func (b *Browser) List(ctx context.Context) ([]types.HistoricalRecord, error) {
	rows, err := b.store.ListResults(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching results: %w", err)
	}

	records := make([]types.HistoricalRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, result.NormalizeRecord(row))
	}

	b.mu.Lock()
	b.snapshot = records
	b.mu.Unlock()
	return records, nil
}

// Refresh re-fetches the list. It is List under a name that matches the
// user action; idempotent and safe to call repeatedly.
func (b *Browser) Refresh(ctx context.Context) ([]types.HistoricalRecord, error) {
	return b.List(ctx)
}

// Snapshot returns the last fetched records without a network call.
func (b *Browser) Snapshot() []types.HistoricalRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot
}

// Delete removes one record after explicit confirmation and re-fetches the
// list so the snapshot reflects the store's truth. A declined confirmation
// returns ErrDeleteDeclined before any remote call.
func (b *Browser) Delete(ctx context.Context, id int) ([]types.HistoricalRecord, error) {
	if !b.confirm.Confirm(fmt.Sprintf("Delete result %d?", id)) {
		return nil, ErrDeleteDeclined
	}
	if err := b.store.DeleteResult(ctx, id); err != nil {
		return nil, fmt.Errorf("deleting result %d: %w", id, err)
	}
	return b.List(ctx)
}

// Detail returns the identified record from the current snapshot, already
// normalized for rendering. The caller closes the detail view explicitly;
// the browser imposes no time limit.
func (b *Browser) Detail(id int) (types.HistoricalRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, rec := range b.snapshot {
		if rec.ID == id {
			return rec, nil
		}
	}
	return types.HistoricalRecord{}, fmt.Errorf("result %d: %w", id, ErrNotInSnapshot)
}
