package demo

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JonMunkholm/datagrid/internal/core"
	"github.com/JonMunkholm/datagrid/internal/form"
	"github.com/JonMunkholm/datagrid/internal/source"
)

func TestMakeData(t *testing.T) {
	a := MakeData(200, 42)
	b := MakeData(200, 42)
	if !slices.Equal(a, b) {
		t.Fatal("MakeData() differs for the same seed")
	}
	if c := MakeData(200, 43); slices.Equal(a, c) {
		t.Error("MakeData() identical for different seeds")
	}

	seen := make(map[string]bool)
	for _, p := range a {
		if seen[p.ID] {
			t.Fatalf("duplicate id %s", p.ID)
		}
		seen[p.ID] = true
		if !slices.Contains(statuses, p.Status) {
			t.Errorf("status = %q, want one of %v", p.Status, statuses)
		}
		if p.Age < 0 || p.Age > 40 || p.Visits < 0 || p.Visits > 1000 {
			t.Errorf("age/visits = %d/%d out of range", p.Age, p.Visits)
		}
		if p.LastUpdate.Before(dataEpoch) || p.LastUpdate.After(dataEpoch.AddDate(1, 0, 0)) {
			t.Errorf("lastUpdate = %v out of range", p.LastUpdate)
		}
	}
}

func TestColumns_CoverEveryVariant(t *testing.T) {
	variants := make(map[core.FilterVariant]bool)
	for _, c := range Columns() {
		v := c.Filter
		if v == "" {
			v = core.FilterText
		}
		variants[v] = true
	}
	for _, want := range []core.FilterVariant{core.FilterText, core.FilterRange, core.FilterSelect, core.FilterDate} {
		if !variants[want] {
			t.Errorf("no column uses the %s filter", want)
		}
	}
}

func TestColumns_FromPersonTags(t *testing.T) {
	cols := Columns()
	var ids, headers []string
	for _, c := range cols {
		ids = append(ids, c.ID)
		headers = append(headers, c.Header)
	}
	wantIDs := []string{"firstName", "lastName", "gender", "jobType", "address", "locality", "age", "visits", "lastUpdate", "status"}
	if !slices.Equal(ids, wantIDs) {
		t.Errorf("ids = %v, want %v", ids, wantIDs)
	}
	if headers[0] != "First Name" || headers[8] != "Last Update" {
		t.Errorf("headers = %v", headers)
	}

	p := MakeData(1, 3)[0]
	if got := cols[6].Accessor(p); got != p.Age {
		t.Errorf("age accessor = %v, want %d", got, p.Age)
	}
	if got := cols[8].Cell(p); got != p.LastUpdate.Format(displayDate) {
		t.Errorf("lastUpdate cell = %q", got)
	}
	if cols[4].Size != 320 || !cols[4].DisableSorting {
		t.Errorf("address column = %+v, want size 320 without sorting", cols[4])
	}
}

func TestSchemas_MatchColumns(t *testing.T) {
	ids := make(map[string]bool)
	for _, c := range Columns() {
		ids[c.ID] = true
	}
	for _, f := range Schemas() {
		if !ids[f.ID] {
			t.Errorf("field %q has no matching column", f.ID)
		}
	}
}

func TestApplyValues(t *testing.T) {
	f := form.New(Schemas())
	raw := url.Values{
		"firstName":  {"Ada"},
		"lastName":   {"Lovelace"},
		"gender":     {"female"},
		"jobType":    {"Engineer"},
		"locality":   {"Norway"},
		"age":        {"36"},
		"visits":     {"0"},
		"lastUpdate": {"2025-03-04"},
		"status":     {StatusSingle},
	}
	values, err := f.Submit(context.Background(), raw, func(context.Context, form.Values) error { return nil })
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	p := applyValues(Person{ID: "x", Address: "kept"}, values)
	want := Person{
		ID:        "x",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Gender:    "female",
		JobType:   "Engineer",
		Locality:  "Norway",
		Age:       36,
		Status:    StatusSingle,
	}
	if day := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC); !p.LastUpdate.Equal(day) {
		t.Errorf("LastUpdate = %v, want %v", p.LastUpdate, day)
	}
	p.LastUpdate = time.Time{}
	if p != want {
		t.Errorf("applyValues() = %+v, want %+v", p, want)
	}
}

func TestApplyValues_RejectsUnknownOption(t *testing.T) {
	f := form.New(Schemas())
	raw := url.Values{
		"firstName":  {"Ada"},
		"lastName":   {"Lovelace"},
		"gender":     {"female"},
		"jobType":    {"Astronaut"},
		"locality":   {"Norway"},
		"lastUpdate": {"2025-03-04"},
		"status":     {StatusSingle},
	}
	_, err := f.Submit(context.Background(), raw, func(context.Context, form.Values) error {
		t.Error("handler called for an invalid submission")
		return nil
	})
	var fe form.FieldErrors
	if !errors.As(err, &fe) || fe["jobType"] == "" {
		t.Errorf("Submit() error = %v, want a jobType field error", err)
	}
}

type countingObserver struct {
	hits, misses, computes atomic.Int64
}

func (o *countingObserver) CacheHit(string)  { o.hits.Add(1) }
func (o *countingObserver) CacheMiss(string) { o.misses.Add(1) }
func (o *countingObserver) ComputeHook(string) func(time.Duration, int) {
	return func(time.Duration, int) { o.computes.Add(1) }
}

func register(t *testing.T, opts Options) *source.Slice[Person] {
	t.Helper()
	core.Clear()
	t.Cleanup(core.Clear)
	return Register(opts)
}

func TestRegister(t *testing.T) {
	register(t, Options{Rows: 50})

	var keys []string
	for _, def := range core.ByGroup(Group) {
		keys = append(keys, def.Info.Key)
	}
	want := []string{KeyPeople, KeyPeoplePaged, KeyPeopleVirtual}
	if !slices.Equal(keys, want) {
		t.Errorf("registered = %v, want %v", keys, want)
	}
	def, _ := core.Get(KeyPeopleVirtual)
	if !def.Info.Virtualized {
		t.Error("virtual table not marked Virtualized")
	}
}

func TestLocalTable_Mutations(t *testing.T) {
	obs := &countingObserver{}
	people := register(t, Options{Rows: 30, Observer: obs})
	ctx := context.Background()

	c, err := core.Open(KeyPeople)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	snap := c.Snapshot(core.ViewOptions{})
	if snap.RowCount != 30 || len(snap.Rows) != core.DefaultPageSize {
		t.Fatalf("Snapshot() = %d rows of %d", len(snap.Rows), snap.RowCount)
	}
	if obs.computes.Load() == 0 {
		t.Error("row model compute not observed")
	}

	first := snap.Rows[0].ID
	raw := url.Values{
		"firstName":  {"Renamed"},
		"lastName":   {"Person"},
		"gender":     {"male"},
		"jobType":    {"Analyst"},
		"locality":   {"Spain"},
		"lastUpdate": {"2025-06-01"},
		"status":     {StatusComplicated},
	}
	if _, err := c.SubmitEdit(ctx, first, raw); err != nil {
		t.Fatalf("SubmitEdit() error = %v", err)
	}
	if got := people.Rows()[0].FirstName; got != "Renamed" {
		t.Errorf("shared row first name = %q, want Renamed", got)
	}
	if got := c.Snapshot(core.ViewOptions{}).Rows[0].Cells[0].Text; got != "Renamed" {
		t.Errorf("table cell = %q, want Renamed", got)
	}

	if _, err := c.SubmitAdd(ctx, raw); err != nil {
		t.Fatalf("SubmitAdd() error = %v", err)
	}
	if got := c.Snapshot(core.ViewOptions{}).RowCount; got != 31 {
		t.Errorf("RowCount after add = %d, want 31", got)
	}

	pending, err := c.RequestDelete(first)
	if err != nil {
		t.Fatalf("RequestDelete() error = %v", err)
	}
	if n, err := c.ConfirmDelete(ctx, pending.Token); err != nil || n != 1 {
		t.Fatalf("ConfirmDelete() = %d, %v", n, err)
	}
	if people.Len() != 30 {
		t.Errorf("shared rows = %d, want 30", people.Len())
	}

	// A new session starts from the shared rows
	other, err := core.Open(KeyPeople)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := other.Snapshot(core.ViewOptions{}).RowCount; got != 30 {
		t.Errorf("new session RowCount = %d, want 30", got)
	}
}

func TestPagedTable(t *testing.T) {
	obs := &countingObserver{}
	register(t, Options{Rows: 25, Latency: 5 * time.Millisecond, Observer: obs})
	ctx := context.Background()

	c, err := core.Open(KeyPeoplePaged)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !c.Manual() {
		t.Fatal("paged table is not manual")
	}
	if err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	snap := c.Snapshot(core.ViewOptions{})
	if snap.RowCount != 25 || snap.PageCount != 3 {
		t.Errorf("RowCount/PageCount = %d/%d, want 25/3", snap.RowCount, snap.PageCount)
	}

	// A second session reuses the cached first page
	c2, _ := core.Open(KeyPeoplePaged)
	if err := c2.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if obs.misses.Load() != 1 || obs.hits.Load() != 1 {
		t.Errorf("misses/hits = %d/%d, want 1/1", obs.misses.Load(), obs.hits.Load())
	}

	d, err := c.ExportDataset(core.ExportAll)
	if err != nil {
		t.Fatalf("ExportDataset() error = %v", err)
	}
	if slices.Contains(d.Headers, "Address") {
		t.Errorf("Headers = %v, address exported despite exclusion", d.Headers)
	}
	if d.Len() != 10 {
		t.Errorf("exported %d rows, want the loaded page of 10", d.Len())
	}

	pending, err := c.RequestDelete(snap.Rows[0].ID)
	if err != nil {
		t.Fatalf("RequestDelete() error = %v", err)
	}
	if _, err := c.ConfirmDelete(ctx, pending.Token); err != nil {
		t.Fatalf("ConfirmDelete() error = %v", err)
	}
	if got := c.Snapshot(core.ViewOptions{}).RowCount; got != 24 {
		t.Errorf("RowCount after delete = %d, want 24", got)
	}
}

func TestWithLatency_Cancelled(t *testing.T) {
	called := false
	fetch := WithLatency(func(context.Context, int, int) (core.Page[Person], error) {
		called = true
		return core.Page[Person]{}, nil
	}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := fetch(ctx, 0, 10); !errors.Is(err, context.Canceled) {
		t.Errorf("fetch() error = %v, want context.Canceled", err)
	}
	if called {
		t.Error("underlying fetch called after cancellation")
	}
}

func TestPagedPeople_EveryPageSizeFetchedOnce(t *testing.T) {
	people := source.NewSlice(MakeData(500, 1))
	for _, size := range core.PageSizeOptions {
		var fetches atomic.Int64
		fetch := func(ctx context.Context, pageIndex, pageSize int) (core.Page[Person], error) {
			fetches.Add(1)
			return people.Fetch(ctx, pageIndex, pageSize)
		}
		p := source.NewPaged(fetch, source.PagedOptions{})

		var first time.Time
		for i := range 3 {
			page, err := p.Load(context.Background(), 0, size)
			if err != nil {
				t.Fatalf("size %d: Load() error = %v", size, err)
			}
			if len(page.Rows) != size {
				t.Fatalf("size %d: got %d rows", size, len(page.Rows))
			}
			if i == 0 {
				first = page.Rows[0].LastUpdate
			} else if got := page.Rows[0].LastUpdate; !got.Equal(first) || got.Location() != first.Location() {
				t.Errorf("size %d: cached LastUpdate = %v, fetched %v", size, got, first)
			}
		}
		if got := fetches.Load(); got != 1 {
			t.Errorf("size %d: fetches = %d, want 1", size, got)
		}
	}
}
