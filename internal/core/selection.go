package core

import (
	"fmt"
	"slices"
)

// ToggleRowSelected flips the selection of one row.
func (t *Table[T]) ToggleRowSelected(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rowIndex[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRow, id)
	}
	t.setSelectedLocked(id, !t.state.RowSelection[id])
	return nil
}

// SetRowSelected selects or deselects one row.
func (t *Table[T]) SetRowSelected(id string, selected bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rowIndex[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRow, id)
	}
	t.setSelectedLocked(id, selected)
	return nil
}

func (t *Table[T]) setSelectedLocked(id string, selected bool) {
	if selected {
		t.state.RowSelection[id] = true
	} else {
		delete(t.state.RowSelection, id)
	}
}

// ToggleAllPageRowsSelected selects or clears every row on the current page.
func (t *Table[T]) ToggleAllPageRowsSelected(selected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.pageRowsLocked() {
		t.setSelectedLocked(r.ID, selected)
	}
}

// ToggleAllRowsSelected selects or clears every row passing the filters.
func (t *Table[T]) ToggleAllRowsSelected(selected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !selected {
		clear(t.state.RowSelection)
		return
	}
	for _, r := range t.rowsLocked() {
		t.state.RowSelection[r.ID] = true
	}
}

// ResetRowSelection clears the selection.
func (t *Table[T]) ResetRowSelection() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.state.RowSelection)
}

// IsRowSelected reports whether a row is selected.
func (t *Table[T]) IsRowSelected(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.RowSelection[id]
}

// IsSomeRowsSelected reports whether at least one row is selected.
func (t *Table[T]) IsSomeRowsSelected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.state.RowSelection) > 0
}

// IsAllPageRowsSelected reports whether the page has rows and all of them
// are selected.
func (t *Table[T]) IsAllPageRowsSelected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.allSelectedLocked(t.pageRowsLocked())
}

func (t *Table[T]) allSelectedLocked(rows []Row[T]) bool {
	if len(rows) == 0 {
		return false
	}
	for _, r := range rows {
		if !t.state.RowSelection[r.ID] {
			return false
		}
	}
	return true
}

// SelectedRowIDs returns the selected ids in data order.
func (t *Table[T]) SelectedRowIDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selectedIDsLocked()
}

func (t *Table[T]) selectedIDsLocked() []string {
	ids := make([]string, 0, len(t.state.RowSelection))
	for id := range t.state.RowSelection {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		return compareOrdered(t.rowIndex[a], t.rowIndex[b])
	})
	return ids
}

// SelectedRows returns the selected rows in data order, regardless of the
// current filters.
func (t *Table[T]) SelectedRows() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rowsByIDLocked(t.selectedIDsLocked())
}

func (t *Table[T]) rowsByIDLocked(ids []string) []T {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if i, ok := t.rowIndex[id]; ok {
			out = append(out, t.data[i])
		}
	}
	return out
}
