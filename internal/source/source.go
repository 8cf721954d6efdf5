// Package source provides row loaders for tables that page their data.
//
// Slice serves rows held in memory. Paged wraps a FetchFunc, caching every
// fetched page so revisiting it never fetches again, and collapsing
// concurrent requests for one page into a single fetch. Postgres builds a
// FetchFunc over a database table.
package source

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/JonMunkholm/datagrid/internal/core"
)

// FetchFunc loads one page of rows and the total row count.
type FetchFunc[T any] func(ctx context.Context, pageIndex, pageSize int) (core.Page[T], error)

// ErrInvalidPage is returned for a negative page index or a non-positive size.
var ErrInvalidPage = errors.New("invalid page request")

func checkPage(pageIndex, pageSize int) error {
	if pageIndex < 0 || pageSize <= 0 {
		return ErrInvalidPage
	}
	return nil
}

var (
	_ core.Loader[int] = (*Slice[int])(nil)
	_ core.Loader[int] = (*Paged[int])(nil)
)

// Slice is an in-memory row set that can be edited and served page by page.
type Slice[T any] struct {
	mu   sync.RWMutex
	rows []T
}

// NewSlice creates a Slice holding a copy of rows.
func NewSlice[T any](rows []T) *Slice[T] {
	return &Slice[T]{rows: slices.Clone(rows)}
}

// Load returns one page of rows.
func (s *Slice[T]) Load(ctx context.Context, pageIndex, pageSize int) (core.Page[T], error) {
	if err := checkPage(pageIndex, pageSize); err != nil {
		return core.Page[T]{}, err
	}
	if err := ctx.Err(); err != nil {
		return core.Page[T]{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := min(pageIndex*pageSize, len(s.rows))
	end := min(start+pageSize, len(s.rows))
	return core.Page[T]{Rows: slices.Clone(s.rows[start:end]), RowCount: len(s.rows)}, nil
}

// Fetch adapts Load to a FetchFunc.
func (s *Slice[T]) Fetch(ctx context.Context, pageIndex, pageSize int) (core.Page[T], error) {
	return s.Load(ctx, pageIndex, pageSize)
}

// Rows returns a copy of every row.
func (s *Slice[T]) Rows() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.rows)
}

// Len returns the number of rows.
func (s *Slice[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Append adds rows at the end.
func (s *Slice[T]) Append(rows ...T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
}

// Replace swaps the first row matching match for row. It reports whether a
// row matched.
func (s *Slice[T]) Replace(match func(T) bool, row T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.rows, match)
	if i < 0 {
		return false
	}
	s.rows[i] = row
	return true
}

// Delete removes every row matching match and returns how many were removed.
func (s *Slice[T]) Delete(match func(T) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.rows)
	s.rows = slices.DeleteFunc(s.rows, match)
	return before - len(s.rows)
}
