package core

// table.go holds the table state container and its row pipeline.
//
// Rows flow through four stages, recomputed lazily after any state change:
//
//	column filters + global fuzzy filter -> rank meta -> sort -> paginate
//
// The filtered and sorted rows are cached until a setter marks the table
// dirty. All state is guarded by one mutex; every getter returns copies.

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	ErrMissingTableID  = errors.New("table id is required")
	ErrDuplicateColumn = errors.New("duplicate column id")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrUnknownRow      = errors.New("row not found")
	ErrNotAllowed      = errors.New("operation not allowed for column")
)

// Page is one page of rows returned by a Loader.
type Page[T any] struct {
	Rows     []T `msgpack:"rows" json:"rows"`
	RowCount int `msgpack:"row_count" json:"row_count"` // Total rows across all pages
}

// Loader fetches rows one page at a time. Tables backed by a Loader paginate
// manually: filters and sorting apply to the loaded page only.
type Loader[T any] interface {
	Load(ctx context.Context, pageIndex, pageSize int) (Page[T], error)
}

// Definition configures a table.
type Definition[T any] struct {
	ID      string // Required, unique per page
	Columns []Column[T]

	// Data holds in-memory rows. Ignored when Loader is set.
	Data   []T
	Loader Loader[T]

	// RowID returns a stable id for a row. Defaults to the row's index.
	RowID func(index int, row T) string

	PageSize         int
	Sorting          []SortingRule
	ColumnVisibility map[string]bool
	ColumnPinning    PinningState

	Store StoreConfig[T]

	// OnCompute is called after the row pipeline runs.
	OnCompute func(d time.Duration, rows int)
}

// Row is one row of the computed row model.
type Row[T any] struct {
	ID       string
	Index    int // Position in the table's data
	Original T
	Rank     Ranking // Best global filter rank, zero when no global filter is set
}

// Table is the state container for one table instance.
type Table[T any] struct {
	mu sync.Mutex

	id      string
	columns []Column[T]
	byID    map[string]int
	rowID   func(index int, row T) string

	data     []T
	ids      []string
	rowIndex map[string]int

	loader   Loader[T]
	rowCount int
	inflight int
	loadErr  error

	state State
	store *Store[T]

	dirty    bool
	filtered []Row[T]

	pending   map[string]pendingDelete
	onCompute func(d time.Duration, rows int)
	debounce  *Debouncer
}

// New validates the definition and creates a table.
func New[T any](def Definition[T]) (*Table[T], error) {
	id := strings.TrimSpace(def.ID)
	if id == "" {
		return nil, ErrMissingTableID
	}

	cols := make([]Column[T], 0, len(def.Columns)+1)
	cols = append(cols, selectColumn[T]())
	byID := map[string]int{SelectColumnID: 0}
	for _, c := range def.Columns {
		if c.ID == "" {
			return nil, fmt.Errorf("%w: column with header %q has no id", ErrUnknownColumn, c.Header)
		}
		if _, exists := byID[c.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, c.ID)
		}
		byID[c.ID] = len(cols)
		cols = append(cols, c)
	}

	pageSize := def.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	t := &Table[T]{
		id:        id,
		columns:   cols,
		byID:      byID,
		rowID:     def.RowID,
		loader:    def.Loader,
		store:     NewStore(def.Store),
		pending:   make(map[string]pendingDelete),
		onCompute: def.OnCompute,
		state: State{
			Pagination:       PaginationState{PageIndex: 0, PageSize: pageSize},
			ColumnVisibility: make(map[string]bool),
			RowSelection:     make(map[string]bool),
		},
	}
	for _, c := range cols {
		t.state.ColumnOrder = append(t.state.ColumnOrder, c.ID)
	}
	if t.rowID == nil {
		t.rowID = func(index int, _ T) string { return strconv.Itoa(index) }
	}

	for colID, visible := range def.ColumnVisibility {
		if _, ok := byID[colID]; !ok {
			return nil, fmt.Errorf("%w: visibility for %q", ErrUnknownColumn, colID)
		}
		t.state.ColumnVisibility[colID] = visible
	}
	for _, colID := range slices.Concat(def.ColumnPinning.Left, def.ColumnPinning.Right) {
		if _, ok := byID[colID]; !ok {
			return nil, fmt.Errorf("%w: pinning for %q", ErrUnknownColumn, colID)
		}
	}
	t.state.ColumnPinning = PinningState{
		Left:  slices.Clone(def.ColumnPinning.Left),
		Right: slices.Clone(def.ColumnPinning.Right),
	}
	if err := t.setSortingLocked(def.Sorting); err != nil {
		return nil, err
	}

	if t.loader == nil {
		t.setDataLocked(def.Data, 0)
	} else {
		t.setDataLocked(nil, 0)
	}
	return t, nil
}

func selectColumn[T any]() Column[T] {
	return Column[T]{
		ID:                  SelectColumnID,
		Header:              "",
		Size:                40,
		DisableSorting:      true,
		DisableHiding:       true,
		DisablePinning:      true,
		DisableFilter:       true,
		DisableGlobalFilter: true,
	}
}

// ID returns the table id.
func (t *Table[T]) ID() string { return t.id }

// Store returns the table's shared settings store.
func (t *Table[T]) Store() *Store[T] { return t.store }

// Manual reports whether rows are loaded page by page from a Loader.
func (t *Table[T]) Manual() bool { return t.loader != nil }

// State returns a copy of the current state.
func (t *Table[T]) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.clone()
}

// Columns returns the column definitions, excluding the selection column.
func (t *Table[T]) Columns() []Column[T] {
	return slices.Clone(t.columns[1:])
}

// Column returns the definition for id.
func (t *Table[T]) Column(id string) (Column[T], bool) {
	i, ok := t.byID[id]
	if !ok {
		return Column[T]{}, false
	}
	return t.columns[i], true
}

func (t *Table[T]) column(id string) (*Column[T], error) {
	i, ok := t.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, id)
	}
	return &t.columns[i], nil
}

// SetData replaces the rows. Selected ids that no longer exist are dropped
// and the page index is clamped to the new page count.
func (t *Table[T]) SetData(data []T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setDataLocked(data, 0)
}

func (t *Table[T]) setDataLocked(data []T, offset int) {
	t.data = slices.Clone(data)
	t.ids = make([]string, len(t.data))
	t.rowIndex = make(map[string]int, len(t.data))
	for i, row := range t.data {
		id := t.rowID(offset+i, row)
		t.ids[i] = id
		t.rowIndex[id] = i
	}
	for id := range t.state.RowSelection {
		if _, ok := t.rowIndex[id]; !ok {
			delete(t.state.RowSelection, id)
		}
	}
	t.dirty = true
	if t.loader == nil {
		t.clampPageLocked()
	}
}

// Data returns a copy of the table's rows in their original order.
func (t *Table[T]) Data() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.data)
}

// Row returns the row with the given id.
func (t *Table[T]) Row(id string) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := t.rowIndex[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.data[i], true
}

// RowValues returns every column's raw value for a row, keyed by column id.
func (t *Table[T]) RowValues(id string) (map[string]any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := t.rowIndex[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRow, id)
	}
	out := make(map[string]any, len(t.columns))
	for ci := range t.columns[1:] {
		c := &t.columns[ci+1]
		out[c.ID] = c.value(t.data[i])
	}
	return out, nil
}

// FilteredRows returns every row passing the filters, in sorted order.
func (t *Table[T]) FilteredRows() []Row[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.rowsLocked())
}

// RowModel returns the rows of the current page.
func (t *Table[T]) RowModel() []Row[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.pageRowsLocked())
}

// RowCount returns the number of rows across all pages after filtering.
// For loader backed tables this is the total reported by the loader.
func (t *Table[T]) RowCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rowCountLocked()
}

// PageCount returns the number of pages, at least one.
func (t *Table[T]) PageCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pageCountLocked()
}

func (t *Table[T]) rowCountLocked() int {
	if t.loader != nil {
		return t.rowCount
	}
	return len(t.rowsLocked())
}

func (t *Table[T]) pageCountLocked() int {
	size := t.state.Pagination.PageSize
	n := t.rowCountLocked()
	if n == 0 || size <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

func (t *Table[T]) clampPageLocked() {
	if last := t.pageCountLocked() - 1; t.state.Pagination.PageIndex > last {
		t.state.Pagination.PageIndex = last
	}
	if t.state.Pagination.PageIndex < 0 {
		t.state.Pagination.PageIndex = 0
	}
}

func (t *Table[T]) pageRowsLocked() []Row[T] {
	rows := t.rowsLocked()
	if t.loader != nil {
		return rows
	}
	p := t.state.Pagination
	start := p.PageIndex * p.PageSize
	if start >= len(rows) {
		return nil
	}
	end := min(start+p.PageSize, len(rows))
	return rows[start:end]
}

// rowsLocked returns the filtered and sorted rows, recomputing when dirty.
func (t *Table[T]) rowsLocked() []Row[T] {
	if !t.dirty {
		return t.filtered
	}
	start := time.Now()
	rows := t.filterRowsLocked("")
	t.sortRowsLocked(rows)
	t.filtered = rows
	t.dirty = false
	if t.onCompute != nil {
		t.onCompute(time.Since(start), len(rows))
	}
	return rows
}

// filterRowsLocked applies the column filters (except skip) and the global
// filter, recording each row's best global rank.
func (t *Table[T]) filterRowsLocked(skip string) []Row[T] {
	query := strings.TrimSpace(t.state.GlobalFilter)
	out := make([]Row[T], 0, len(t.data))
	for i, item := range t.data {
		if !t.passesColumnFiltersLocked(item, skip) {
			continue
		}
		row := Row[T]{ID: t.ids[i], Index: i, Original: item}
		if query != "" {
			best, ok := t.globalRankLocked(item, query)
			if !ok {
				continue
			}
			row.Rank = best
		}
		out = append(out, row)
	}
	return out
}

func (t *Table[T]) passesColumnFiltersLocked(item T, skip string) bool {
	for _, f := range t.state.ColumnFilters {
		if f.ID == skip {
			continue
		}
		c := &t.columns[t.byID[f.ID]]
		if !c.filterFn()(c.value(item), f.Value) {
			return false
		}
	}
	return true
}

// globalRankLocked ranks every globally filterable cell; the row passes when
// any cell passes.
func (t *Table[T]) globalRankLocked(item T, query string) (Ranking, bool) {
	var best Ranking
	for ci := range t.columns {
		c := &t.columns[ci]
		if c.DisableGlobalFilter || c.Accessor == nil {
			continue
		}
		r := RankItem(c.value(item), query)
		if r.Passed && (!best.Passed || r.Rank > best.Rank) {
			best = r
		}
	}
	return best, best.Passed
}

func (t *Table[T]) sortRowsLocked(rows []Row[T]) {
	ranked := strings.TrimSpace(t.state.GlobalFilter) != ""
	if len(t.state.Sorting) == 0 && !ranked {
		return
	}
	slices.SortStableFunc(rows, func(a, b Row[T]) int {
		for _, rule := range t.state.Sorting {
			c := &t.columns[t.byID[rule.ID]]
			cmp := c.SortFn
			if cmp == nil {
				cmp = CompareValues
			}
			res := cmp(c.value(a.Original), c.value(b.Original))
			if rule.Desc {
				res = -res
			}
			if res != 0 {
				return res
			}
		}
		if ranked {
			if res := CompareRankings(a.Rank, b.Rank); res != 0 {
				return res
			}
		}
		return compareOrdered(a.Index, b.Index)
	})
}

// Refresh loads the current page from the table's Loader. Tables without a
// loader return immediately. A response for a page that is no longer
// current is discarded.
func (t *Table[T]) Refresh(ctx context.Context) error {
	if t.loader == nil {
		return nil
	}
	t.mu.Lock()
	p := t.state.Pagination
	t.inflight++
	t.mu.Unlock()

	page, err := t.loader.Load(ctx, p.PageIndex, p.PageSize)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.inflight--
	if err != nil {
		t.loadErr = err
		return fmt.Errorf("load page %d of table %s: %w", p.PageIndex, t.id, err)
	}
	if t.state.Pagination != p {
		return nil
	}
	t.loadErr = nil
	t.rowCount = page.RowCount
	t.setDataLocked(page.Rows, p.PageIndex*p.PageSize)
	return nil
}

// RefreshAsync starts Refresh in the background. The table keeps serving
// the previous rows, flagged as loading, until the page arrives.
func (t *Table[T]) RefreshAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	if t.loader == nil {
		done <- nil
		close(done)
		return done
	}
	t.mu.Lock()
	t.inflight++
	t.mu.Unlock()
	go func() {
		defer close(done)
		err := t.Refresh(ctx)
		t.mu.Lock()
		t.inflight--
		t.mu.Unlock()
		done <- err
	}()
	return done
}

// Loading reports whether a page load is in flight.
func (t *Table[T]) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inflight > 0
}

// LoadError returns the error of the last failed page load, if any.
func (t *Table[T]) LoadError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loadErr
}
