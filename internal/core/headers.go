package core

// Header describes one visible column as rendered in the header row.
type Header struct {
	ID      string
	Label   string
	Size    int
	Variant FilterVariant

	Pin        PinSide
	Offset     int  // Distance from the pinned edge in pixels
	LastLeft   bool // Last column of the left pinned group
	FirstRight bool // First column of the right pinned group

	Sorted    string // "asc", "desc" or ""
	SortIndex int    // Position in multi-column sorting, -1 when unsorted
	Filter    any    // Active filter value, nil when unfiltered

	CanSort   bool
	CanHide   bool
	CanPin    bool
	CanFilter bool
}

// VisibleColumns returns the visible columns in display order: left pinned,
// then unpinned in column order, then right pinned.
func (t *Table[T]) VisibleColumns() []Column[T] {
	selecting := t.store.IsSelecting()
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := t.visibleIDsLocked(selecting)
	out := make([]Column[T], len(ids))
	for i, id := range ids {
		out[i] = t.columns[t.byID[id]]
	}
	return out
}

// Headers returns header info for the visible columns in display order.
func (t *Table[T]) Headers() []Header {
	selecting := t.store.IsSelecting()
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.headersLocked(selecting)
}

func (t *Table[T]) isVisibleLocked(id string, selecting bool) bool {
	if id == SelectColumnID {
		return selecting
	}
	v, ok := t.state.ColumnVisibility[id]
	return !ok || v
}

func (t *Table[T]) visibleIDsLocked(selecting bool) []string {
	pin := t.state.ColumnPinning
	ids := make([]string, 0, len(t.columns))
	for _, id := range pin.Left {
		if t.isVisibleLocked(id, selecting) {
			ids = append(ids, id)
		}
	}
	for _, id := range t.state.ColumnOrder {
		if pin.side(id) == PinNone && t.isVisibleLocked(id, selecting) {
			ids = append(ids, id)
		}
	}
	for _, id := range pin.Right {
		if t.isVisibleLocked(id, selecting) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (t *Table[T]) headersLocked(selecting bool) []Header {
	ids := t.visibleIDsLocked(selecting)
	headers := make([]Header, len(ids))
	for i, id := range ids {
		c := &t.columns[t.byID[id]]
		h := Header{
			ID:        id,
			Label:     c.Header,
			Size:      c.size(),
			Variant:   c.variant(),
			Pin:       t.state.ColumnPinning.side(id),
			Sorted:    t.sortDirectionLocked(id),
			SortIndex: -1,
			CanSort:   !c.DisableSorting && c.Accessor != nil,
			CanHide:   !c.DisableHiding,
			CanPin:    !c.DisablePinning,
			CanFilter: !c.DisableFilter && c.Accessor != nil,
		}
		for si, r := range t.state.Sorting {
			if r.ID == id {
				h.SortIndex = si
			}
		}
		if fi := t.filterIndexLocked(id); fi >= 0 {
			h.Filter = t.state.ColumnFilters[fi].Value
		}
		headers[i] = h
	}

	offset := 0
	lastLeft := -1
	for i := range headers {
		if headers[i].Pin != PinLeft {
			continue
		}
		headers[i].Offset = offset
		offset += headers[i].Size
		lastLeft = i
	}
	if lastLeft >= 0 {
		headers[lastLeft].LastLeft = true
	}

	offset = 0
	firstRight := -1
	for i := len(headers) - 1; i >= 0; i-- {
		if headers[i].Pin != PinRight {
			continue
		}
		headers[i].Offset = offset
		offset += headers[i].Size
		firstRight = i
	}
	if firstRight >= 0 {
		headers[firstRight].FirstRight = true
	}
	return headers
}
