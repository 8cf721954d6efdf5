package core

import (
	"slices"
)

// Snapshot is a render-ready copy of a table's state and current rows.
type Snapshot struct {
	TableID string
	Headers []Header
	Rows    []RowView
	Toggles []ColumnToggle
	Filters map[string]FilterOptions

	GlobalFilter string
	Chips        []FilterChip
	Filtered     bool

	Selecting       bool
	SelectedCount   int
	AllPageSelected bool

	PageIndex int
	PageSize  int
	PageCount int
	RowCount  int
	PageSizes []int
	RowOffset int // Index of the first row in Rows within the filtered rows

	Loading   bool
	LoadError string

	HasMenu   bool
	CanAdd    bool
	CanEdit   bool
	CanDelete bool
	CanExport bool
}

// RowView is one rendered row.
type RowView struct {
	ID       string
	Selected bool
	Rank     Rank
	Cells    []CellView
}

// CellView is one rendered cell, aligned with Snapshot.Headers.
type CellView struct {
	ColumnID string
	Text     string
}

// ColumnToggle is an entry of the column visibility menu.
type ColumnToggle struct {
	ID       string
	Label    string
	Visible  bool
	Exported bool // Included in exports; false when export is off
}

// FilterOptions holds the faceted choices shown by a header filter.
type FilterOptions struct {
	Values []FacetValue
	Min    *float64
	Max    *float64
}

// ViewOptions selects the rows included in a Snapshot.
type ViewOptions struct {
	// AllRows includes every filtered row instead of the current page, for
	// virtualized bodies.
	AllRows bool
	// RowStart and RowEnd bound the included rows (end exclusive). A zero
	// RowEnd means no upper bound.
	RowStart int
	RowEnd   int
	// Facets computes FilterOptions for visible filterable columns.
	Facets bool
}

// Snapshot captures the table for rendering.
func (t *Table[T]) Snapshot(opts ViewOptions) Snapshot {
	selecting := t.store.IsSelecting()
	menu := t.store.ContextMenu()
	exportCfg, canExport := t.store.ExportConfig()
	canAdd := t.store.AddRow() != nil && len(t.store.Schemas()) > 0
	canEdit := t.store.EditRow() != nil && len(t.store.Schemas()) > 0

	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{
		TableID:      t.id,
		Headers:      t.headersLocked(selecting),
		GlobalFilter: t.state.GlobalFilter,
		Chips:        t.filterChipsLocked(),
		Filtered:     t.isFilteredLocked(),
		Selecting:    selecting,
		PageIndex:    t.state.Pagination.PageIndex,
		PageSize:     t.state.Pagination.PageSize,
		PageCount:    t.pageCountLocked(),
		RowCount:     t.rowCountLocked(),
		PageSizes:    slices.Clone(PageSizeOptions),
		Loading:      t.inflight > 0,
		HasMenu:      menu.Enabled() && !selecting,
		CanAdd:       canAdd,
		CanEdit:      canEdit && menu != nil && menu.EnableEdit,
		CanDelete:    menu != nil && menu.EnableDelete && menu.OnDelete != nil,
		CanExport:    canExport,
	}
	if t.loadErr != nil {
		s.LoadError = t.loadErr.Error()
	}
	s.SelectedCount = len(t.state.RowSelection)

	var rows []Row[T]
	if opts.AllRows {
		rows = t.rowsLocked()
	} else {
		rows = t.pageRowsLocked()
		s.RowOffset = t.state.Pagination.PageIndex * t.state.Pagination.PageSize
		if t.loader != nil {
			s.RowOffset = 0
		}
	}
	s.AllPageSelected = t.allSelectedLocked(t.pageRowsLocked())

	start := max(opts.RowStart, 0)
	end := len(rows)
	if opts.RowEnd > 0 && opts.RowEnd < end {
		end = opts.RowEnd
	}
	if start > end {
		start = end
	}
	if opts.AllRows {
		s.RowOffset = start
	}
	rows = rows[start:end]

	s.Rows = make([]RowView, len(rows))
	for i, r := range rows {
		rv := RowView{
			ID:       r.ID,
			Selected: t.state.RowSelection[r.ID],
			Rank:     r.Rank.Rank,
			Cells:    make([]CellView, len(s.Headers)),
		}
		for j, h := range s.Headers {
			c := &t.columns[t.byID[h.ID]]
			cv := CellView{ColumnID: h.ID}
			if h.ID != SelectColumnID {
				cv.Text = c.render(r.Original)
			}
			rv.Cells[j] = cv
		}
		s.Rows[i] = rv
	}

	for ci := range t.columns[1:] {
		c := &t.columns[ci+1]
		if c.DisableHiding {
			continue
		}
		s.Toggles = append(s.Toggles, ColumnToggle{
			ID:       c.ID,
			Label:    c.Header,
			Visible:  t.isVisibleLocked(c.ID, selecting),
			Exported: canExport && !exportCfg.Excludes(c.ID),
		})
	}

	if opts.Facets {
		s.Filters = make(map[string]FilterOptions)
		for _, h := range s.Headers {
			if !h.CanFilter {
				continue
			}
			s.Filters[h.ID] = t.filterOptionsLocked(h.ID, h.Variant)
		}
	}
	return s
}

func (t *Table[T]) filterOptionsLocked(id string, variant FilterVariant) FilterOptions {
	var opts FilterOptions
	switch variant {
	case FilterSelect:
		opts.Values = t.facetsLocked(id)
	case FilterRange:
		if lo, hi, ok := t.minMaxLocked(id); ok {
			opts.Min, opts.Max = &lo, &hi
		}
	}
	return opts
}
