package core

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
	"time"
)

type person struct {
	ID      string
	First   string
	Last    string
	Age     int
	Status  string
	Updated time.Time
}

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func testPeople() []person {
	return []person{
		{ID: "p1", First: "Tanner", Last: "Linsley", Age: 33, Status: "single", Updated: day("2024-01-05")},
		{ID: "p2", First: "Kevin", Last: "Vandy", Age: 27, Status: "complicated", Updated: day("2024-02-10")},
		{ID: "p3", First: "Joe", Last: "Dirte", Age: 45, Status: "relationship", Updated: day("2024-03-15")},
		{ID: "p4", First: "Maria", Last: "Muñoz", Age: 19, Status: "single", Updated: day("2024-04-20")},
		{ID: "p5", First: "Anna", Last: "Karenina", Age: 60, Status: "relationship", Updated: day("2023-12-31")},
	}
}

func testColumns() []Column[person] {
	return []Column[person]{
		{ID: "first", Header: "First Name", Accessor: func(p person) any { return p.First }},
		{ID: "last", Header: "Last Name", Accessor: func(p person) any { return p.Last }},
		{ID: "age", Header: "Age", Filter: FilterRange, Accessor: func(p person) any { return p.Age }},
		{ID: "status", Header: "Status", Filter: FilterSelect, Accessor: func(p person) any { return p.Status }},
		{ID: "updated", Header: "Last Update", Filter: FilterDate, Accessor: func(p person) any { return p.Updated }},
	}
}

func newTestTable(t *testing.T, modify ...func(*Definition[person])) *Table[person] {
	t.Helper()
	def := Definition[person]{
		ID:      "people",
		Columns: testColumns(),
		Data:    testPeople(),
		RowID:   func(_ int, p person) string { return p.ID },
	}
	for _, m := range modify {
		m(&def)
	}
	tbl, err := New(def)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return tbl
}

func rowIDs(rows []Row[person]) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

func headerIDs(headers []Header) []string {
	ids := make([]string, len(headers))
	for i, h := range headers {
		ids[i] = h.ID
	}
	return ids
}

func float(f float64) *float64 { return &f }

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		def     Definition[person]
		wantErr error
	}{
		{
			name:    "empty id",
			def:     Definition[person]{Columns: testColumns()},
			wantErr: ErrMissingTableID,
		},
		{
			name:    "blank id",
			def:     Definition[person]{ID: "   ", Columns: testColumns()},
			wantErr: ErrMissingTableID,
		},
		{
			name: "duplicate column",
			def: Definition[person]{ID: "people", Columns: append(testColumns(),
				Column[person]{ID: "age", Header: "Age again"})},
			wantErr: ErrDuplicateColumn,
		},
		{
			name: "column named like the selection column",
			def: Definition[person]{ID: "people", Columns: []Column[person]{
				{ID: SelectColumnID, Header: "Select"}}},
			wantErr: ErrDuplicateColumn,
		},
		{
			name: "visibility for unknown column",
			def: Definition[person]{ID: "people", Columns: testColumns(),
				ColumnVisibility: map[string]bool{"nope": false}},
			wantErr: ErrUnknownColumn,
		},
		{
			name: "sorting on unknown column",
			def: Definition[person]{ID: "people", Columns: testColumns(),
				Sorting: []SortingRule{{ID: "nope"}}},
			wantErr: ErrUnknownColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.def)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	tbl := newTestTable(t)

	if got := tbl.Pagination(); got.PageSize != DefaultPageSize || got.PageIndex != 0 {
		t.Errorf("Pagination() = %+v, want page 0 of size %d", got, DefaultPageSize)
	}
	wantOrder := []string{SelectColumnID, "first", "last", "age", "status", "updated"}
	if got := tbl.ColumnOrder(); !slices.Equal(got, wantOrder) {
		t.Errorf("ColumnOrder() = %v, want %v", got, wantOrder)
	}
	if got := len(tbl.RowModel()); got != 5 {
		t.Errorf("len(RowModel()) = %d, want 5", got)
	}
}

func TestMoveColumn_MatchesSequenceOfMoves(t *testing.T) {
	tbl := newTestTable(t)
	want := tbl.ColumnOrder()

	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 50; i++ {
		active := want[rng.IntN(len(want))]
		over := want[rng.IntN(len(want))]

		if err := tbl.MoveColumn(active, over); err != nil {
			t.Fatalf("MoveColumn(%q, %q) error = %v", active, over, err)
		}
		want = MoveID(want, active, over)
	}

	if got := tbl.ColumnOrder(); !slices.Equal(got, want) {
		t.Errorf("ColumnOrder() = %v, want %v", got, want)
	}

	// Reordering never changes identity
	sorted := slices.Sorted(slices.Values(tbl.ColumnOrder()))
	wantSorted := []string{"age", "first", "last", SelectColumnID, "status", "updated"}
	if !slices.Equal(sorted, wantSorted) {
		t.Errorf("column ids after moves = %v, want %v", sorted, wantSorted)
	}
}

func TestMoveID(t *testing.T) {
	tests := []struct {
		name         string
		order        []string
		active, over string
		want         []string
	}{
		{"forward", []string{"a", "b", "c", "d"}, "a", "c", []string{"b", "c", "a", "d"}},
		{"backward", []string{"a", "b", "c", "d"}, "d", "b", []string{"a", "d", "b", "c"}},
		{"same", []string{"a", "b"}, "a", "a", []string{"a", "b"}},
		{"unknown", []string{"a", "b"}, "a", "z", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MoveID(tt.order, tt.active, tt.over); !slices.Equal(got, tt.want) {
				t.Errorf("MoveID() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMoveColumn_UnknownColumn(t *testing.T) {
	tbl := newTestTable(t)
	before := tbl.ColumnOrder()

	if err := tbl.MoveColumn("first", "nope"); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("MoveColumn() error = %v, want ErrUnknownColumn", err)
	}
	if got := tbl.ColumnOrder(); !slices.Equal(got, before) {
		t.Errorf("ColumnOrder() changed after failed move: %v", got)
	}
}

func TestSetColumnOrder(t *testing.T) {
	tbl := newTestTable(t)
	initial := tbl.ColumnOrder()

	if err := tbl.SetColumnOrder([]string{"status", "first"}); err != nil {
		t.Fatalf("SetColumnOrder() error = %v", err)
	}
	want := []string{"status", "first", SelectColumnID, "last", "age", "updated"}
	if got := tbl.ColumnOrder(); !slices.Equal(got, want) {
		t.Errorf("ColumnOrder() = %v, want %v", got, want)
	}

	if err := tbl.SetColumnOrder([]string{"age", "age"}); !errors.Is(err, ErrDuplicateColumn) {
		t.Errorf("SetColumnOrder(duplicate) error = %v, want ErrDuplicateColumn", err)
	}
	if err := tbl.SetColumnOrder([]string{"nope"}); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("SetColumnOrder(unknown) error = %v, want ErrUnknownColumn", err)
	}
	if got := tbl.ColumnOrder(); !slices.Equal(got, want) {
		t.Errorf("ColumnOrder() changed after rejected orders: %v", got)
	}

	if err := tbl.ResetColumnOrder(); err != nil {
		t.Fatalf("ResetColumnOrder() error = %v", err)
	}
	if got := tbl.ColumnOrder(); !slices.Equal(got, initial) {
		t.Errorf("ColumnOrder() after reset = %v, want %v", got, initial)
	}
}

func TestColumnVisibility_Isolated(t *testing.T) {
	tbl := newTestTable(t)

	if err := tbl.SetColumnFilter("status", "single"); err != nil {
		t.Fatalf("SetColumnFilter() error = %v", err)
	}
	if err := tbl.ToggleSorting("age", false); err != nil {
		t.Fatalf("ToggleSorting() error = %v", err)
	}
	before := tbl.State()

	if err := tbl.ToggleColumnVisibility("last"); err != nil {
		t.Fatalf("ToggleColumnVisibility() error = %v", err)
	}

	if slices.Contains(headerIDs(tbl.Headers()), "last") {
		t.Error("hidden column still in Headers()")
	}
	snap := tbl.Snapshot(ViewOptions{})
	for _, row := range snap.Rows {
		for _, cell := range row.Cells {
			if cell.ColumnID == "last" {
				t.Fatalf("hidden column rendered in row %s", row.ID)
			}
		}
	}

	after := tbl.State()
	if !slices.Equal(after.ColumnFilters, before.ColumnFilters) {
		t.Errorf("ColumnFilters = %v, want %v", after.ColumnFilters, before.ColumnFilters)
	}
	if !slices.Equal(after.Sorting, before.Sorting) {
		t.Errorf("Sorting = %v, want %v", after.Sorting, before.Sorting)
	}
	if got := rowIDs(tbl.RowModel()); !slices.Equal(got, []string{"p4", "p1"}) {
		t.Errorf("RowModel() = %v, want [p4 p1]", got)
	}

	if err := tbl.ToggleColumnVisibility("last"); err != nil {
		t.Fatalf("ToggleColumnVisibility() error = %v", err)
	}
	if !slices.Contains(headerIDs(tbl.Headers()), "last") {
		t.Error("column not restored after second toggle")
	}
}

func TestColumnVisibility_DisableHiding(t *testing.T) {
	tbl := newTestTable(t, func(d *Definition[person]) {
		d.Columns[0].DisableHiding = true
	})
	if err := tbl.SetColumnVisibility("first", false); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("SetColumnVisibility() error = %v, want ErrNotAllowed", err)
	}
}

func TestGlobalFilter_FuzzyMatchAndRestore(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "prefix", query: "tan", want: []string{"p1"}},
		{name: "diacritics folded", query: "munoz", want: []string{"p4"}},
		{name: "in order characters", query: "krnn", want: []string{"p5"}},
		{name: "number cell", query: "60", want: []string{"p5"}},
		{name: "no match", query: "zzzz", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := newTestTable(t)
			tbl.SetGlobalFilter(tt.query)

			rows := tbl.FilteredRows()
			if got := rowIDs(rows); !slices.Equal(got, tt.want) {
				t.Errorf("FilteredRows() = %v, want %v", got, tt.want)
			}
			for _, r := range rows {
				if !r.Rank.Passed {
					t.Errorf("row %s has rank %v which did not pass", r.ID, r.Rank)
				}
			}

			tbl.ResetGlobalFilter()
			if got := len(tbl.FilteredRows()); got != len(testPeople()) {
				t.Errorf("after reset len(FilteredRows()) = %d, want %d", got, len(testPeople()))
			}
		})
	}
}

func TestGlobalFilter_EveryRowHasMatchingCell(t *testing.T) {
	tbl := newTestTable(t)
	query := "in"
	tbl.SetGlobalFilter(query)

	cols := testColumns()
	for _, r := range tbl.FilteredRows() {
		matched := false
		for _, c := range cols {
			if RankItem(c.Accessor(r.Original), query).Passed {
				matched = true
			}
		}
		if !matched {
			t.Errorf("row %s has no cell matching %q", r.ID, query)
		}
	}
}

func TestGlobalFilter_RankOrdersRows(t *testing.T) {
	tbl := newTestTable(t, func(d *Definition[person]) {
		d.Data = []person{
			{ID: "a", First: "Xannax"},   // contains
			{ID: "b", First: "Anna"},     // equal
			{ID: "c", First: "Annabel"},  // starts with
			{ID: "d", First: "Mary Ann"}, // no match
		}
	})
	tbl.SetGlobalFilter("anna")

	if got := rowIDs(tbl.FilteredRows()); !slices.Equal(got, []string{"b", "c", "a"}) {
		t.Errorf("FilteredRows() = %v, want [b c a]", got)
	}
}

func TestRangeFilter_Inclusive(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		want []string
	}{
		{name: "both bounds inclusive", r: Range{Min: float(27), Max: float(45)}, want: []string{"p1", "p2", "p3"}},
		{name: "min only", r: Range{Min: float(45)}, want: []string{"p3", "p5"}},
		{name: "max only", r: Range{Max: float(27)}, want: []string{"p2", "p4"}},
		{name: "exact value", r: Range{Min: float(33), Max: float(33)}, want: []string{"p1"}},
		{name: "unbounded", r: Range{}, want: []string{"p1", "p2", "p3", "p4", "p5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := newTestTable(t)
			if err := tbl.SetColumnFilter("age", tt.r); err != nil {
				t.Fatalf("SetColumnFilter() error = %v", err)
			}
			if got := rowIDs(tbl.FilteredRows()); !slices.Equal(got, tt.want) {
				t.Errorf("FilteredRows() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestColumnFilters_Variants(t *testing.T) {
	tests := []struct {
		name   string
		column string
		value  any
		want   []string
	}{
		{name: "text contains ignoring case", column: "last", value: "AND", want: []string{"p2"}},
		{name: "select equals", column: "status", value: "relationship", want: []string{"p3", "p5"}},
		{name: "select all", column: "status", value: "*", want: []string{"p1", "p2", "p3", "p4", "p5"}},
		{name: "date range", column: "updated", value: DateRange{From: day("2024-01-01"), To: day("2024-03-15")}, want: []string{"p1", "p2", "p3"}},
		{name: "date from only", column: "updated", value: DateRange{From: day("2024-03-15")}, want: []string{"p3", "p4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := newTestTable(t)
			if err := tbl.SetColumnFilter(tt.column, tt.value); err != nil {
				t.Fatalf("SetColumnFilter() error = %v", err)
			}
			if got := rowIDs(tbl.FilteredRows()); !slices.Equal(got, tt.want) {
				t.Errorf("FilteredRows() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetColumnFilter_Errors(t *testing.T) {
	tbl := newTestTable(t)

	if err := tbl.SetColumnFilter("nope", "x"); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("unknown column error = %v, want ErrUnknownColumn", err)
	}
	if err := tbl.SetColumnFilter("age", "thirty"); !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("wrong shape error = %v, want ErrInvalidFilter", err)
	}
	if err := tbl.SetColumnFilter(SelectColumnID, "x"); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("select column error = %v, want ErrNotAllowed", err)
	}
	if got := tbl.State().ColumnFilters; len(got) != 0 {
		t.Errorf("ColumnFilters = %v, want none after failures", got)
	}
}

func TestColumnFilters_ResetAndChips(t *testing.T) {
	tbl := newTestTable(t)
	mustSet := func(id string, v any) {
		t.Helper()
		if err := tbl.SetColumnFilter(id, v); err != nil {
			t.Fatalf("SetColumnFilter(%q) error = %v", id, err)
		}
	}
	mustSet("age", Range{Min: float(10)})
	mustSet("status", "single")
	mustSet("updated", DateRange{From: day("2024-01-01"), To: day("2024-12-31")})

	want := []FilterChip{
		{ColumnID: "age", Text: "Age In Range Of ( 10 - ∞ )"},
		{ColumnID: "status", Text: "Status Equals/Contains 'single'"},
		{ColumnID: "updated", Text: "Last Update Is Between ( 2024/01/01 - 2024/12/31 )"},
	}
	if got := tbl.FilterChips(); !slices.Equal(got, want) {
		t.Errorf("FilterChips() = %v, want %v", got, want)
	}
	if !tbl.IsFiltered() {
		t.Error("IsFiltered() = false, want true")
	}

	if err := tbl.RemoveColumnFilter("status"); err != nil {
		t.Fatalf("RemoveColumnFilter() error = %v", err)
	}
	if got := len(tbl.FilterChips()); got != 2 {
		t.Errorf("len(FilterChips()) = %d, want 2", got)
	}

	tbl.ResetColumnFilters()
	if tbl.IsFiltered() {
		t.Error("IsFiltered() = true after reset")
	}
	if got := len(tbl.FilteredRows()); got != 5 {
		t.Errorf("len(FilteredRows()) = %d, want 5", got)
	}
}

func TestToggleSorting_Cycle(t *testing.T) {
	tbl := newTestTable(t)

	steps := []struct {
		wantDir string
		want    []string
	}{
		{"asc", []string{"p4", "p2", "p1", "p3", "p5"}},
		{"desc", []string{"p5", "p3", "p1", "p2", "p4"}},
		{"", []string{"p1", "p2", "p3", "p4", "p5"}},
	}
	for i, step := range steps {
		if err := tbl.ToggleSorting("age", false); err != nil {
			t.Fatalf("ToggleSorting() error = %v", err)
		}
		if got := tbl.SortDirection("age"); got != step.wantDir {
			t.Errorf("step %d SortDirection() = %q, want %q", i, got, step.wantDir)
		}
		if got := rowIDs(tbl.FilteredRows()); !slices.Equal(got, step.want) {
			t.Errorf("step %d FilteredRows() = %v, want %v", i, got, step.want)
		}
	}
}

func TestSorting_MultiAndTiebreak(t *testing.T) {
	tbl := newTestTable(t)
	if err := tbl.SetSorting([]SortingRule{{ID: "status"}, {ID: "age", Desc: true}}); err != nil {
		t.Fatalf("SetSorting() error = %v", err)
	}
	want := []string{"p2", "p5", "p3", "p1", "p4"}
	if got := rowIDs(tbl.FilteredRows()); !slices.Equal(got, want) {
		t.Errorf("FilteredRows() = %v, want %v", got, want)
	}

	if err := tbl.ToggleSorting("first", true); err != nil {
		t.Fatalf("ToggleSorting(multi) error = %v", err)
	}
	if got := len(tbl.State().Sorting); got != 3 {
		t.Errorf("len(Sorting) = %d, want 3", got)
	}
	if err := tbl.SetSorting([]SortingRule{{ID: "age"}, {ID: "age"}}); !errors.Is(err, ErrDuplicateColumn) {
		t.Errorf("SetSorting(duplicate) error = %v, want ErrDuplicateColumn", err)
	}
}

func TestPagination(t *testing.T) {
	tbl := newTestTable(t, func(d *Definition[person]) { d.PageSize = 2 })

	if got := tbl.PageCount(); got != 3 {
		t.Errorf("PageCount() = %d, want 3", got)
	}
	tbl.SetPageIndex(2)
	if got := rowIDs(tbl.RowModel()); !slices.Equal(got, []string{"p5"}) {
		t.Errorf("last page RowModel() = %v, want [p5]", got)
	}
	tbl.SetPageIndex(10)
	if got := tbl.Pagination().PageIndex; got != 2 {
		t.Errorf("PageIndex after overshoot = %d, want 2", got)
	}

	// Filtering returns to the first page
	tbl.SetGlobalFilter("a")
	if got := tbl.Pagination().PageIndex; got != 0 {
		t.Errorf("PageIndex after filtering = %d, want 0", got)
	}

	tbl.ResetGlobalFilter()
	tbl.SetPageIndex(1)
	tbl.SetPageSize(3)
	if got := tbl.Pagination(); got.PageIndex != 0 || got.PageSize != 3 {
		t.Errorf("Pagination() after resize = %+v, want index 0 size 3", got)
	}
}

func TestPinning_OrderAndOffsets(t *testing.T) {
	tbl := newTestTable(t)
	if err := tbl.PinColumn("status", PinLeft); err != nil {
		t.Fatalf("PinColumn() error = %v", err)
	}
	if err := tbl.PinColumn("first", PinRight); err != nil {
		t.Fatalf("PinColumn() error = %v", err)
	}

	headers := tbl.Headers()
	want := []string{"status", "last", "age", "updated", "first"}
	if got := headerIDs(headers); !slices.Equal(got, want) {
		t.Fatalf("Headers() = %v, want %v", got, want)
	}
	if !headers[0].LastLeft || headers[0].Offset != 0 {
		t.Errorf("left pinned header = %+v, want LastLeft at offset 0", headers[0])
	}
	if last := headers[len(headers)-1]; !last.FirstRight || last.Pin != PinRight {
		t.Errorf("right pinned header = %+v, want FirstRight", last)
	}

	if err := tbl.PinColumn("status", PinNone); err != nil {
		t.Fatalf("PinColumn(none) error = %v", err)
	}
	if got := headerIDs(tbl.Headers())[0]; got != "last" {
		t.Errorf("first header after unpin = %q, want last", got)
	}
}

func TestSelectColumn_OnlyWhileSelecting(t *testing.T) {
	tbl := newTestTable(t)
	if slices.Contains(headerIDs(tbl.Headers()), SelectColumnID) {
		t.Error("select column shown outside selection mode")
	}
	tbl.ToggleSelection()
	if got := headerIDs(tbl.Headers())[0]; got != SelectColumnID {
		t.Errorf("first header in selection mode = %q, want %q", got, SelectColumnID)
	}
}

func TestSelection(t *testing.T) {
	tbl := newTestTable(t, func(d *Definition[person]) { d.PageSize = 2 })

	if err := tbl.ToggleRowSelected("p3"); err != nil {
		t.Fatalf("ToggleRowSelected() error = %v", err)
	}
	if err := tbl.ToggleRowSelected("nope"); !errors.Is(err, ErrUnknownRow) {
		t.Errorf("ToggleRowSelected(unknown) error = %v, want ErrUnknownRow", err)
	}

	tbl.ToggleAllPageRowsSelected(true)
	if !tbl.IsAllPageRowsSelected() {
		t.Error("IsAllPageRowsSelected() = false after selecting the page")
	}
	if got := tbl.SelectedRowIDs(); !slices.Equal(got, []string{"p1", "p2", "p3"}) {
		t.Errorf("SelectedRowIDs() = %v, want [p1 p2 p3]", got)
	}

	// Selection survives filtering
	tbl.SetGlobalFilter("anna")
	if got := len(tbl.SelectedRows()); got != 3 {
		t.Errorf("len(SelectedRows()) while filtered = %d, want 3", got)
	}
	tbl.ResetGlobalFilter()

	// and is pruned when rows disappear
	tbl.SetData(testPeople()[1:])
	if got := tbl.SelectedRowIDs(); !slices.Equal(got, []string{"p2", "p3"}) {
		t.Errorf("SelectedRowIDs() after SetData = %v, want [p2 p3]", got)
	}

	tbl.ResetRowSelection()
	if tbl.IsSomeRowsSelected() {
		t.Error("IsSomeRowsSelected() = true after reset")
	}

	tbl.ToggleAllRowsSelected(true)
	if got := len(tbl.SelectedRowIDs()); got != 4 {
		t.Errorf("len(SelectedRowIDs()) after select all = %d, want 4", got)
	}
}

func TestFacetsAndMinMax(t *testing.T) {
	tbl := newTestTable(t)
	if err := tbl.SetColumnFilter("age", Range{Max: float(40)}); err != nil {
		t.Fatalf("SetColumnFilter() error = %v", err)
	}
	if err := tbl.SetColumnFilter("status", "single"); err != nil {
		t.Fatalf("SetColumnFilter() error = %v", err)
	}

	// Status facets ignore the status filter but honor the age filter
	facets, err := tbl.Facets("status")
	if err != nil {
		t.Fatalf("Facets() error = %v", err)
	}
	want := []FacetValue{{Value: "complicated", Count: 1}, {Value: "single", Count: 2}}
	if !slices.Equal(facets, want) {
		t.Errorf("Facets() = %v, want %v", facets, want)
	}

	lo, hi, ok, err := tbl.MinMax("age")
	if err != nil || !ok {
		t.Fatalf("MinMax() ok = %v, error = %v", ok, err)
	}
	if lo != 19 || hi != 33 {
		t.Errorf("MinMax() = (%v, %v), want (19, 33)", lo, hi)
	}

	if _, err := tbl.Facets("nope"); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("Facets(unknown) error = %v, want ErrUnknownColumn", err)
	}
}

func TestRowValues(t *testing.T) {
	tbl := newTestTable(t)
	values, err := tbl.RowValues("p2")
	if err != nil {
		t.Fatalf("RowValues() error = %v", err)
	}
	if values["first"] != "Kevin" || values["age"] != 27 {
		t.Errorf("RowValues() = %v, want Kevin aged 27", values)
	}
	if _, ok := values[SelectColumnID]; ok {
		t.Error("RowValues() includes the selection column")
	}
}

func TestSnapshot(t *testing.T) {
	tbl := newTestTable(t, func(d *Definition[person]) { d.PageSize = 2 })
	tbl.SetGlobalFilter("a")

	snap := tbl.Snapshot(ViewOptions{Facets: true})
	if snap.TableID != "people" {
		t.Errorf("TableID = %q, want people", snap.TableID)
	}
	if !snap.Filtered {
		t.Error("Filtered = false, want true")
	}
	if len(snap.Rows) != 2 {
		t.Errorf("len(Rows) = %d, want 2", len(snap.Rows))
	}
	for _, row := range snap.Rows {
		if len(row.Cells) != len(snap.Headers) {
			t.Errorf("row %s has %d cells for %d headers", row.ID, len(row.Cells), len(snap.Headers))
		}
	}
	if _, ok := snap.Filters["status"]; !ok {
		t.Error("Filters missing status facets")
	}
	if opts := snap.Filters["age"]; opts.Min == nil || opts.Max == nil {
		t.Errorf("age filter options = %+v, want min and max", opts)
	}

	all := tbl.Snapshot(ViewOptions{AllRows: true, RowStart: 1, RowEnd: 3})
	if len(all.Rows) != 2 || all.RowOffset != 1 {
		t.Errorf("windowed snapshot rows = %d offset = %d, want 2 and 1", len(all.Rows), all.RowOffset)
	}
}

func TestOnCompute(t *testing.T) {
	calls := 0
	tbl := newTestTable(t, func(d *Definition[person]) {
		d.OnCompute = func(time.Duration, int) { calls++ }
	})
	calls = 0

	tbl.RowModel()
	tbl.RowModel()
	if calls != 0 {
		t.Errorf("pipeline ran %d times without changes, want 0", calls)
	}
	tbl.SetGlobalFilter("joe")
	tbl.RowModel()
	tbl.FilteredRows()
	if calls != 1 {
		t.Errorf("pipeline ran %d times after one change, want 1", calls)
	}
}

func TestColumnsFor(t *testing.T) {
	type record struct {
		FirstName  string `json:"firstName"`
		LastUpdate time.Time
		Secret     string `json:"-"`
		hidden     string
	}
	cols := ColumnsFor[record]("json")
	if len(cols) != 2 {
		t.Fatalf("len(ColumnsFor()) = %d, want 2", len(cols))
	}
	if cols[0].ID != "firstName" || cols[0].Header != "First Name" {
		t.Errorf("cols[0] = %q/%q, want firstName/First Name", cols[0].ID, cols[0].Header)
	}
	if cols[1].ID != "LastUpdate" || cols[1].Header != "Last Update" {
		t.Errorf("cols[1] = %q/%q, want LastUpdate/Last Update", cols[1].ID, cols[1].Header)
	}
	if got := cols[0].Accessor(record{FirstName: "Ada", hidden: "x"}); got != "Ada" {
		t.Errorf("Accessor() = %v, want Ada", got)
	}
}
