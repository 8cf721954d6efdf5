package source

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JonMunkholm/datagrid/internal/core"
)

type item struct {
	ID      int       `msgpack:"id" db:"id"`
	Name    string    `msgpack:"name" db:"name"`
	Created time.Time `msgpack:"created" db:"created_at"`
}

func items(n int) []item {
	out := make([]item, n)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = item{ID: i, Name: "item", Created: base.AddDate(0, 0, i)}
	}
	return out
}

func TestSlice_Load(t *testing.T) {
	s := NewSlice(items(7))

	tests := []struct {
		pageIndex, pageSize int
		wantFirst, wantLen  int
	}{
		{0, 3, 0, 3},
		{1, 3, 3, 3},
		{2, 3, 6, 1},
		{5, 3, 0, 0},
	}
	for _, tt := range tests {
		page, err := s.Load(context.Background(), tt.pageIndex, tt.pageSize)
		if err != nil {
			t.Fatalf("Load(%d, %d) error = %v", tt.pageIndex, tt.pageSize, err)
		}
		if len(page.Rows) != tt.wantLen || page.RowCount != 7 {
			t.Errorf("Load(%d, %d) = %d rows of %d, want %d of 7", tt.pageIndex, tt.pageSize, len(page.Rows), page.RowCount, tt.wantLen)
		}
		if tt.wantLen > 0 && page.Rows[0].ID != tt.wantFirst {
			t.Errorf("Load(%d, %d) first id = %d, want %d", tt.pageIndex, tt.pageSize, page.Rows[0].ID, tt.wantFirst)
		}
	}

	if _, err := s.Load(context.Background(), -1, 3); !errors.Is(err, ErrInvalidPage) {
		t.Errorf("Load(-1) error = %v, want ErrInvalidPage", err)
	}
	if _, err := s.Load(context.Background(), 0, 0); !errors.Is(err, ErrInvalidPage) {
		t.Errorf("Load(size 0) error = %v, want ErrInvalidPage", err)
	}
}

func TestSlice_Edit(t *testing.T) {
	s := NewSlice(items(3))
	s.Append(item{ID: 10, Name: "new"})
	if s.Len() != 4 {
		t.Errorf("Len() = %d, want 4", s.Len())
	}

	if !s.Replace(func(it item) bool { return it.ID == 1 }, item{ID: 1, Name: "renamed"}) {
		t.Error("Replace() = false for an existing row")
	}
	if got := s.Rows()[1].Name; got != "renamed" {
		t.Errorf("row 1 name = %q, want renamed", got)
	}
	if s.Replace(func(it item) bool { return it.ID == 99 }, item{}) {
		t.Error("Replace() = true with no match")
	}

	if n := s.Delete(func(it item) bool { return it.ID < 2 }); n != 2 {
		t.Errorf("Delete() = %d, want 2", n)
	}
	if s.Len() != 2 {
		t.Errorf("Len() after delete = %d, want 2", s.Len())
	}
}

type countingRecorder struct {
	hits, misses atomic.Int64
}

func (r *countingRecorder) CacheHit(string)  { r.hits.Add(1) }
func (r *countingRecorder) CacheMiss(string) { r.misses.Add(1) }

func TestPaged_CachesPages(t *testing.T) {
	backing := NewSlice(items(25))
	var fetches atomic.Int64
	fetch := func(ctx context.Context, pageIndex, pageSize int) (core.Page[item], error) {
		fetches.Add(1)
		return backing.Load(ctx, pageIndex, pageSize)
	}
	rec := &countingRecorder{}
	p := NewPaged(fetch, PagedOptions{Name: "items", Recorder: rec})

	for range 3 {
		page, err := p.Load(context.Background(), 1, 10)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(page.Rows) != 10 || page.Rows[0].ID != 10 || page.RowCount != 25 {
			t.Fatalf("Load() = %d rows starting %d of %d", len(page.Rows), page.Rows[0].ID, page.RowCount)
		}
		if !page.Rows[0].Created.Equal(time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("cached time = %v, want 2024-01-11", page.Rows[0].Created)
		}
	}
	if got := fetches.Load(); got != 1 {
		t.Errorf("fetches = %d, want 1", got)
	}
	if rec.hits.Load() != 2 || rec.misses.Load() != 1 {
		t.Errorf("hits/misses = %d/%d, want 2/1", rec.hits.Load(), rec.misses.Load())
	}

	// Another page size is another key
	if _, err := p.Load(context.Background(), 1, 5); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := fetches.Load(); got != 2 {
		t.Errorf("fetches = %d, want 2", got)
	}
	if got := p.CachedPages(); got != 2 {
		t.Errorf("CachedPages() = %d, want 2", got)
	}

	p.Invalidate()
	if _, err := p.Load(context.Background(), 1, 10); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := fetches.Load(); got != 3 {
		t.Errorf("fetches after Invalidate = %d, want 3", got)
	}
}

func TestPaged_KeepsPagesLargerThanASegment(t *testing.T) {
	// The smallest freecache holds entries up to 512 bytes; a page of 50
	// rows is far larger.
	rows := items(200)
	for i := range rows {
		rows[i].Name = strings.Repeat("x", 64)
	}
	backing := NewSlice(rows)
	var fetches atomic.Int64
	fetch := func(ctx context.Context, pageIndex, pageSize int) (core.Page[item], error) {
		fetches.Add(1)
		return backing.Load(ctx, pageIndex, pageSize)
	}
	p := NewPaged(fetch, PagedOptions{Name: "wide", CacheSize: 512 * 1024})

	for range 3 {
		page, err := p.Load(context.Background(), 1, 50)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(page.Rows) != 50 || page.Rows[0].ID != 50 {
			t.Fatalf("Load() = %d rows starting %d, want 50 starting 50", len(page.Rows), page.Rows[0].ID)
		}
	}
	if got := fetches.Load(); got != 1 {
		t.Errorf("fetches = %d, want 1", got)
	}
	if got := p.CachedPages(); got != 1 {
		t.Errorf("CachedPages() = %d, want 1", got)
	}

	p.Invalidate()
	if _, err := p.Load(context.Background(), 1, 50); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := fetches.Load(); got != 2 {
		t.Errorf("fetches after Invalidate = %d, want 2", got)
	}
}

func TestPaged_LargePagesExpire(t *testing.T) {
	rows := items(100)
	for i := range rows {
		rows[i].Name = strings.Repeat("y", 64)
	}
	backing := NewSlice(rows)
	var fetches atomic.Int64
	fetch := func(ctx context.Context, pageIndex, pageSize int) (core.Page[item], error) {
		fetches.Add(1)
		return backing.Load(ctx, pageIndex, pageSize)
	}
	p := NewPaged(fetch, PagedOptions{CacheSize: 512 * 1024, TTL: 30 * time.Millisecond})

	for range 2 {
		if _, err := p.Load(context.Background(), 0, 50); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := p.Load(context.Background(), 0, 50); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := fetches.Load(); got != 2 {
		t.Errorf("fetches = %d, want 2 (one before and one after expiry)", got)
	}
}

func TestPaged_TimesKeepTheirDayOutsideUTC(t *testing.T) {
	saved := time.Local
	time.Local = time.FixedZone("EDT", -4*60*60)
	t.Cleanup(func() { time.Local = saved })

	day := time.Date(2025, 8, 6, 0, 0, 0, 0, time.UTC)
	fetch := func(ctx context.Context, pageIndex, pageSize int) (core.Page[item], error) {
		return core.Page[item]{Rows: []item{{ID: 1, Created: day}}, RowCount: 1}, nil
	}
	p := NewPaged(fetch, PagedOptions{})

	only, err := core.ParseDateRange("2025-08-06", "2025-08-06")
	if err != nil {
		t.Fatalf("ParseDateRange() error = %v", err)
	}
	for _, label := range []string{"fetched", "cached"} {
		page, err := p.Load(context.Background(), 0, 10)
		if err != nil {
			t.Fatalf("%s Load() error = %v", label, err)
		}
		got := page.Rows[0].Created
		if got.Location() != time.UTC || !got.Equal(day) {
			t.Errorf("%s time = %v, want %v", label, got, day)
		}
		if !only.Contains(got) {
			t.Errorf("%s row fell out of its own day filter", label)
		}
	}
}

func TestUTCTimes(t *testing.T) {
	type nested struct {
		At     time.Time
		When   *time.Time
		Many   []time.Time
		hidden time.Time
	}
	zone := time.FixedZone("X", 3*60*60)
	at := time.Date(2024, 3, 1, 1, 0, 0, 0, zone)
	when := at
	v := nested{At: at, When: &when, Many: []time.Time{at}, hidden: at}

	utcTimes(&v)

	for name, got := range map[string]time.Time{"At": v.At, "When": *v.When, "Many": v.Many[0]} {
		if got.Location() != time.UTC || !got.Equal(at) {
			t.Errorf("%s = %v, want %v in UTC", name, got, at)
		}
	}
	if v.hidden.Location() != zone {
		t.Error("unexported field was changed")
	}
	utcTimes(nil)
	utcTimes(v)
}

func TestPaged_SharesConcurrentFetch(t *testing.T) {
	var fetches atomic.Int64
	release := make(chan struct{})
	fetch := func(ctx context.Context, pageIndex, pageSize int) (core.Page[item], error) {
		fetches.Add(1)
		<-release
		return core.Page[item]{Rows: items(pageSize), RowCount: 100}, nil
	}
	p := NewPaged(fetch, PagedOptions{})

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Load(context.Background(), 0, 10)
			errs <- err
		}()
	}

	// Let every caller reach the fetch before it completes
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Load() error = %v", err)
		}
	}
	if got := fetches.Load(); got != 1 {
		t.Errorf("fetches = %d, want 1", got)
	}
}

func TestPaged_ErrorsAreNotCached(t *testing.T) {
	fail := true
	fetch := func(ctx context.Context, pageIndex, pageSize int) (core.Page[item], error) {
		if fail {
			return core.Page[item]{}, errors.New("unavailable")
		}
		return core.Page[item]{Rows: items(1), RowCount: 1}, nil
	}
	p := NewPaged(fetch, PagedOptions{Name: "flaky"})

	if _, err := p.Load(context.Background(), 0, 10); err == nil {
		t.Fatal("Load() error = nil, want fetch failure")
	}
	fail = false
	page, err := p.Load(context.Background(), 0, 10)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(page.Rows) != 1 {
		t.Errorf("len(Rows) = %d, want 1", len(page.Rows))
	}
}

func TestPaged_WithTable(t *testing.T) {
	backing := NewSlice(items(30))
	p := NewPaged(backing.Fetch, PagedOptions{})

	tbl, err := core.New(core.Definition[item]{
		ID: "items",
		Columns: []core.Column[item]{
			{ID: "id", Header: "ID", Accessor: func(it item) any { return it.ID }},
		},
		Loader:   p,
		PageSize: 10,
	})
	if err != nil {
		t.Fatalf("core.New() error = %v", err)
	}

	tbl.SetPageIndex(0)
	if err := tbl.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if got := tbl.PageCount(); got != 3 {
		t.Errorf("PageCount() = %d, want 3", got)
	}
	tbl.SetPageIndex(2)
	if err := tbl.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	rows := tbl.RowModel()
	if len(rows) != 10 || rows[0].Original.ID != 20 {
		t.Errorf("page 2 = %d rows starting %d, want 10 starting 20", len(rows), rows[0].Original.ID)
	}
}

func TestPageQueries(t *testing.T) {
	count, page, err := PageQueries(PostgresOptions{
		Table:   "public.people",
		Columns: []string{"id", "first_name", `odd"name`},
		OrderBy: []string{"-created_at", "id"},
	})
	if err != nil {
		t.Fatalf("PageQueries() error = %v", err)
	}
	if want := `SELECT COUNT(*) FROM "public"."people"`; count != want {
		t.Errorf("count = %q, want %q", count, want)
	}
	want := `SELECT "id", "first_name", "odd""name" FROM "public"."people" ORDER BY "created_at" desc, "id" asc LIMIT $1 OFFSET $2`
	if page != want {
		t.Errorf("page = %q, want %q", page, want)
	}

	_, page, _ = PageQueries(PostgresOptions{Table: "people", Columns: []string{"id", "name"}})
	if want := `SELECT "id", "name" FROM "people" ORDER BY "id" asc LIMIT $1 OFFSET $2`; page != want {
		t.Errorf("default order page = %q, want %q", page, want)
	}

	if _, _, err := PageQueries(PostgresOptions{Table: "people"}); !errors.Is(err, ErrNoColumns) {
		t.Errorf("PageQueries(no columns) error = %v, want ErrNoColumns", err)
	}
	if _, _, err := PageQueries(PostgresOptions{Columns: []string{"id"}}); err == nil {
		t.Error("PageQueries(no table) error = nil")
	}
}
