package core

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// SetGlobalFilter sets the fuzzy search text applied across all columns.
func (t *Table[T]) SetGlobalFilter(query string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.GlobalFilter == query {
		return
	}
	t.state.GlobalFilter = query
	t.filtersChangedLocked()
}

// SetGlobalFilterDebounced applies query after delay. A newer call within
// the delay replaces the pending one.
func (t *Table[T]) SetGlobalFilterDebounced(query string, delay time.Duration) {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	t.mu.Lock()
	if t.debounce == nil || t.debounce.Delay() != delay {
		if t.debounce != nil {
			t.debounce.Stop()
		}
		t.debounce = NewDebouncer(delay)
	}
	d := t.debounce
	t.mu.Unlock()
	d.Do(func() { t.SetGlobalFilter(query) })
}

// ResetGlobalFilter clears the search text.
func (t *Table[T]) ResetGlobalFilter() { t.SetGlobalFilter("") }

// GlobalFilter returns the search text.
func (t *Table[T]) GlobalFilter() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.GlobalFilter
}

// SetColumnFilter sets the filter value for one column. An empty value
// ("", "*", or a range without bounds) removes the filter.
func (t *Table[T]) SetColumnFilter(id string, value any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, err := t.column(id)
	if err != nil {
		return err
	}
	if c.DisableFilter {
		return fmt.Errorf("%w: %s is not filterable", ErrNotAllowed, id)
	}
	if isEmptyFilter(value) {
		t.removeFilterLocked(id)
		return nil
	}
	if err := c.checkFilterValue(value); err != nil {
		return err
	}
	if i := t.filterIndexLocked(id); i >= 0 {
		t.state.ColumnFilters[i].Value = value
	} else {
		t.state.ColumnFilters = append(t.state.ColumnFilters, ColumnFilter{ID: id, Value: value})
	}
	t.filtersChangedLocked()
	return nil
}

// RemoveColumnFilter drops the filter for one column.
func (t *Table[T]) RemoveColumnFilter(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.column(id); err != nil {
		return err
	}
	t.removeFilterLocked(id)
	return nil
}

// ResetColumnFilters drops every column filter.
func (t *Table[T]) ResetColumnFilters() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.state.ColumnFilters) == 0 {
		return
	}
	t.state.ColumnFilters = nil
	t.filtersChangedLocked()
}

// ColumnFilter returns the filter value for a column.
func (t *Table[T]) ColumnFilter(id string) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i := t.filterIndexLocked(id); i >= 0 {
		return t.state.ColumnFilters[i].Value, true
	}
	return nil, false
}

// IsFiltered reports whether any column filter or the global filter is set.
func (t *Table[T]) IsFiltered() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isFilteredLocked()
}

func (t *Table[T]) isFilteredLocked() bool {
	return len(t.state.ColumnFilters) > 0 || strings.TrimSpace(t.state.GlobalFilter) != ""
}

// FilterChips describes every active column filter, in the order set.
func (t *Table[T]) FilterChips() []FilterChip {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filterChipsLocked()
}

func (t *Table[T]) filterChipsLocked() []FilterChip {
	chips := make([]FilterChip, 0, len(t.state.ColumnFilters))
	for _, f := range t.state.ColumnFilters {
		c := &t.columns[t.byID[f.ID]]
		label := c.Header
		if label == "" {
			label = c.ID
		}
		chips = append(chips, FilterChip{ColumnID: f.ID, Text: describeFilter(label, f.Value)})
	}
	return chips
}

func (t *Table[T]) filterIndexLocked(id string) int {
	return slices.IndexFunc(t.state.ColumnFilters, func(f ColumnFilter) bool { return f.ID == id })
}

func (t *Table[T]) removeFilterLocked(id string) {
	i := t.filterIndexLocked(id)
	if i < 0 {
		return
	}
	t.state.ColumnFilters = slices.Delete(t.state.ColumnFilters, i, i+1)
	t.filtersChangedLocked()
}

// filtersChangedLocked invalidates the row cache and returns to the first
// page. Loader backed tables keep their page since it was fetched remotely.
func (t *Table[T]) filtersChangedLocked() {
	t.dirty = true
	if t.loader == nil {
		t.state.Pagination.PageIndex = 0
	}
}

// ToggleSorting cycles a column through ascending, descending and unsorted.
// Without multi, the column becomes the only sort rule.
func (t *Table[T]) ToggleSorting(id string, multi bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, err := t.column(id)
	if err != nil {
		return err
	}
	if c.DisableSorting {
		return fmt.Errorf("%w: %s is not sortable", ErrNotAllowed, id)
	}

	i := slices.IndexFunc(t.state.Sorting, func(r SortingRule) bool { return r.ID == id })
	var next *SortingRule
	switch {
	case i < 0:
		next = &SortingRule{ID: id}
	case !t.state.Sorting[i].Desc:
		next = &SortingRule{ID: id, Desc: true}
	}

	if !multi {
		t.state.Sorting = nil
		if next != nil {
			t.state.Sorting = []SortingRule{*next}
		}
	} else {
		switch {
		case i < 0:
			t.state.Sorting = append(t.state.Sorting, *next)
		case next == nil:
			t.state.Sorting = slices.Delete(t.state.Sorting, i, i+1)
		default:
			t.state.Sorting[i] = *next
		}
	}
	t.dirty = true
	return nil
}

// SetSorting replaces the sort rules.
func (t *Table[T]) SetSorting(rules []SortingRule) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.setSortingLocked(rules)
}

func (t *Table[T]) setSortingLocked(rules []SortingRule) error {
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		c, err := t.column(r.ID)
		if err != nil {
			return err
		}
		if c.DisableSorting {
			return fmt.Errorf("%w: %s is not sortable", ErrNotAllowed, r.ID)
		}
		if seen[r.ID] {
			return fmt.Errorf("%w: %s sorted twice", ErrDuplicateColumn, r.ID)
		}
		seen[r.ID] = true
	}
	t.state.Sorting = slices.Clone(rules)
	t.dirty = true
	return nil
}

// SortDirection returns "asc", "desc" or "" for a column.
func (t *Table[T]) SortDirection(id string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sortDirectionLocked(id)
}

func (t *Table[T]) sortDirectionLocked(id string) string {
	for _, r := range t.state.Sorting {
		if r.ID == id {
			if r.Desc {
				return "desc"
			}
			return "asc"
		}
	}
	return ""
}

// SetPageIndex moves to a page, clamped to the valid range.
func (t *Table[T]) SetPageIndex(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Pagination.PageIndex = index
	t.clampPageLocked()
}

// SetPageSize changes the page size, keeping the first visible row on screen.
func (t *Table[T]) SetPageSize(size int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if size <= 0 {
		size = DefaultPageSize
	}
	first := t.state.Pagination.PageIndex * t.state.Pagination.PageSize
	t.state.Pagination.PageSize = size
	t.state.Pagination.PageIndex = first / size
	t.clampPageLocked()
}

// Pagination returns the page index and size.
func (t *Table[T]) Pagination() PaginationState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Pagination
}

// SetColumnVisibility shows or hides a column.
func (t *Table[T]) SetColumnVisibility(id string, visible bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, err := t.column(id)
	if err != nil {
		return err
	}
	if c.DisableHiding {
		return fmt.Errorf("%w: %s cannot be hidden", ErrNotAllowed, id)
	}
	if visible {
		delete(t.state.ColumnVisibility, id)
	} else {
		t.state.ColumnVisibility[id] = false
	}
	return nil
}

// ToggleColumnVisibility flips one column's visibility.
func (t *Table[T]) ToggleColumnVisibility(id string) error {
	return t.SetColumnVisibility(id, !t.IsColumnVisible(id))
}

// IsColumnVisible reports whether the user has left the column visible.
// The selection column is visible only in selection mode.
func (t *Table[T]) IsColumnVisible(id string) bool {
	if id == SelectColumnID {
		return t.store.IsSelecting()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.state.ColumnVisibility[id]
	return !ok || v
}

// PinColumn pins a column to the left or right edge, or unpins it.
func (t *Table[T]) PinColumn(id string, side PinSide) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, err := t.column(id)
	if err != nil {
		return err
	}
	if c.DisablePinning && side != PinNone {
		return fmt.Errorf("%w: %s cannot be pinned", ErrNotAllowed, id)
	}
	p := t.state.ColumnPinning.without(id)
	switch side {
	case PinLeft:
		p.Left = append(p.Left, id)
	case PinRight:
		p.Right = append([]string{id}, p.Right...)
	}
	t.state.ColumnPinning = p
	return nil
}

// MoveColumn moves activeID to the position of overID, shifting the columns
// in between. Only the order changes.
func (t *Table[T]) MoveColumn(activeID, overID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.column(activeID); err != nil {
		return err
	}
	if _, err := t.column(overID); err != nil {
		return err
	}
	t.state.ColumnOrder = MoveID(t.state.ColumnOrder, activeID, overID)
	return nil
}

// SetColumnOrder replaces the column order. Columns left out keep their
// relative order after the listed ones.
func (t *Table[T]) SetColumnOrder(order []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	seen := make(map[string]bool, len(order))
	next := make([]string, 0, len(t.columns))
	for _, id := range order {
		if _, err := t.column(id); err != nil {
			return err
		}
		if seen[id] {
			return fmt.Errorf("%w: %s listed twice", ErrDuplicateColumn, id)
		}
		seen[id] = true
		next = append(next, id)
	}
	for _, id := range t.state.ColumnOrder {
		if !seen[id] {
			next = append(next, id)
		}
	}
	t.state.ColumnOrder = next
	return nil
}

// ColumnOrder returns the column ids in display order, ignoring pinning.
func (t *Table[T]) ColumnOrder() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.state.ColumnOrder)
}
