package core

// confirm.go implements the two step delete: a request creates a pending
// confirmation identified by a token, and only confirming that token calls
// the caller's delete handler. Each token can be used once.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrConfirmationNotFound = errors.New("delete confirmation not found")
	ErrNothingToDelete      = errors.New("no rows to delete")
)

// ConfirmationTTL is how long a pending delete stays valid.
const ConfirmationTTL = 5 * time.Minute

// PendingDelete is a delete awaiting confirmation.
type PendingDelete struct {
	Token       string
	RowCount    int
	Multiple    bool
	Title       string
	Description string
}

type pendingDelete struct {
	rowIDs  []string
	expires time.Time
}

// RequestDelete creates a confirmation for the given rows. With no ids the
// current selection is used.
func (t *Table[T]) RequestDelete(rowIDs ...string) (PendingDelete, error) {
	cfg := t.store.ContextMenu()
	if cfg == nil || cfg.OnDelete == nil {
		return PendingDelete{}, fmt.Errorf("delete: %w", ErrNoHandler)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	multiple := len(rowIDs) == 0
	if multiple {
		rowIDs = t.selectedIDsLocked()
	}
	for _, id := range rowIDs {
		if _, ok := t.rowIndex[id]; !ok {
			return PendingDelete{}, fmt.Errorf("%w: %s", ErrUnknownRow, id)
		}
	}
	if len(rowIDs) == 0 {
		return PendingDelete{}, ErrNothingToDelete
	}

	now := time.Now()
	for token, p := range t.pending {
		if now.After(p.expires) {
			delete(t.pending, token)
		}
	}
	token := uuid.NewString()
	t.pending[token] = pendingDelete{rowIDs: rowIDs, expires: now.Add(ConfirmationTTL)}

	subject := "the selected row"
	if multiple {
		subject = "all selected rows"
	}
	return PendingDelete{
		Token:       token,
		RowCount:    len(rowIDs),
		Multiple:    multiple,
		Title:       fmt.Sprintf("This will permanently delete %s. Are you sure you want to proceed?", subject),
		Description: fmt.Sprintf("Are you sure you want to delete %s? You won't be able to undo this action.", subject),
	}, nil
}

// ConfirmDelete consumes the token and calls the delete handler once with
// the rows that still exist. Deleted rows are removed from the selection.
func (t *Table[T]) ConfirmDelete(ctx context.Context, token string) (int, error) {
	cfg := t.store.ContextMenu()

	t.mu.Lock()
	p, ok := t.pending[token]
	delete(t.pending, token)
	if !ok || time.Now().After(p.expires) {
		t.mu.Unlock()
		return 0, ErrConfirmationNotFound
	}
	rows := t.rowsByIDLocked(p.rowIDs)
	t.mu.Unlock()

	if cfg == nil || cfg.OnDelete == nil {
		return 0, fmt.Errorf("delete: %w", ErrNoHandler)
	}
	if len(rows) == 0 {
		return 0, ErrNothingToDelete
	}
	if err := cfg.OnDelete(ctx, rows); err != nil {
		return 0, fmt.Errorf("delete %d rows: %w", len(rows), err)
	}

	t.mu.Lock()
	for _, id := range p.rowIDs {
		delete(t.state.RowSelection, id)
	}
	t.mu.Unlock()
	return len(rows), nil
}

// CancelDelete drops a pending confirmation without deleting anything.
func (t *Table[T]) CancelDelete(token string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.pending[token]
	delete(t.pending, token)
	return ok
}
