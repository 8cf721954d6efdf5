package demo

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/JonMunkholm/datagrid/internal/core"
	"github.com/JonMunkholm/datagrid/internal/form"
	"github.com/JonMunkholm/datagrid/internal/logging"
	"github.com/JonMunkholm/datagrid/internal/source"
)

// Group is the listing section of every demo table.
const Group = "Demo"

// ExportFilename is the base name of exported files.
const ExportFilename = "exampleExport"

// Table keys.
const (
	KeyPeople        = "people"
	KeyPeopleVirtual = "people-virtual"
	KeyPeoplePaged   = "people-paged"
	KeyPeopleDB      = "people-db"
)

// Observer receives row model timings and page cache outcomes.
type Observer interface {
	source.Recorder
	ComputeHook(table string) func(d time.Duration, rows int)
}

type nopObserver struct{}

func (nopObserver) CacheHit(string)                             {}
func (nopObserver) CacheMiss(string)                            {}
func (nopObserver) ComputeHook(string) func(time.Duration, int) { return nil }

// Options configures the demo tables.
type Options struct {
	Rows      int           // Generated people (default 5000)
	Seed      uint64        // Data generator seed
	Latency   time.Duration // Artificial delay of paged fetches
	PageSize  int
	CacheSize int           // Page cache bytes
	CacheTTL  time.Duration // Page cache entry lifetime, zero keeps pages until evicted
	Observer  Observer
}

func (o Options) withDefaults() Options {
	if o.Rows <= 0 {
		o.Rows = 5000
	}
	if o.PageSize <= 0 {
		o.PageSize = core.DefaultPageSize
	}
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
	return o
}

// WithLatency delays every fetch by d, returning early when ctx is done.
func WithLatency[T any](fetch source.FetchFunc[T], d time.Duration) source.FetchFunc[T] {
	if d <= 0 {
		return fetch
	}
	return func(ctx context.Context, pageIndex, pageSize int) (core.Page[T], error) {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return core.Page[T]{}, ctx.Err()
		case <-timer.C:
		}
		return fetch(ctx, pageIndex, pageSize)
	}
}

// Register generates the people data and registers the in-memory tables.
// It returns the shared row set.
func Register(opts Options) *source.Slice[Person] {
	opts = opts.withDefaults()
	people := source.NewSlice(MakeData(opts.Rows, opts.Seed))

	registerPeople(people, opts)
	registerPeopleVirtual(people, opts)
	registerPeoplePaged(people, opts)
	return people
}

func rowID(_ int, p Person) string { return p.ID }

func byID(id string) func(Person) bool {
	return func(p Person) bool { return p.ID == id }
}

func inIDs(rows []Person) func(Person) bool {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return func(p Person) bool { return slices.Contains(ids, p.ID) }
}

// mutations are the row changes a table's forms and menu perform.
type mutations struct {
	add    func(ctx context.Context, p Person) error
	update func(ctx context.Context, p Person) error
	delete func(ctx context.Context, rows []Person) error
	// after runs once a change succeeded, to reload the table's rows
	after func(ctx context.Context) error
}

// sliceMutations edits the shared in-memory rows.
func sliceMutations(people *source.Slice[Person]) mutations {
	return mutations{
		add: func(_ context.Context, p Person) error {
			people.Append(p)
			return nil
		},
		update: func(_ context.Context, p Person) error {
			if !people.Replace(byID(p.ID), p) {
				return fmt.Errorf("%w: %s", core.ErrUnknownRow, p.ID)
			}
			return nil
		},
		delete: func(_ context.Context, rows []Person) error {
			people.Delete(inIDs(rows))
			return nil
		},
	}
}

// storeConfig wires forms, the context menu and export to m.
func storeConfig(table string, m mutations, exclude []string) core.StoreConfig[Person] {
	done := func(ctx context.Context) error {
		if m.after == nil {
			return nil
		}
		return m.after(ctx)
	}

	return core.StoreConfig[Person]{
		Export: &core.ExportConfig{
			Filename:       ExportFilename,
			ExcludeColumns: exclude,
		},
		Schemas: Schemas(),
		AddRow: &core.RowForm[Person]{
			Title:       "Add person",
			Description: "Fill in the details and save to add a row.",
			OnSubmit: func(ctx context.Context, values form.Values, _ *Person) error {
				p := applyValues(Person{ID: NewID()}, values)
				if err := m.add(ctx, p); err != nil {
					return err
				}
				logging.WithTable(ctx, table).Info("row added", "id", p.ID)
				return done(ctx)
			},
		},
		EditRow: &core.RowForm[Person]{
			Title:       "Edit person",
			Description: "Change the details and save.",
			OnSubmit: func(ctx context.Context, values form.Values, existing *Person) error {
				p := applyValues(*existing, values)
				if err := m.update(ctx, p); err != nil {
					return err
				}
				logging.WithTable(ctx, table).Info("row updated", "id", p.ID)
				return done(ctx)
			},
		},
		ContextMenu: &core.ContextMenuConfig[Person]{
			EnableEdit:   true,
			EnableDelete: true,
			OnDelete: func(ctx context.Context, rows []Person) error {
				if err := m.delete(ctx, rows); err != nil {
					return err
				}
				logging.WithTable(ctx, table).Info("rows deleted", "count", len(rows))
				return done(ctx)
			},
			Extra: []core.Action[Person]{
				{
					Name:  "log",
					Label: "Log to server",
					Run: func(ctx context.Context, p Person) error {
						logging.WithTable(ctx, table).Info("row action",
							"id", p.ID,
							"name", p.FirstName+" "+p.LastName,
							"status", p.Status,
						)
						return nil
					},
				},
			},
		},
		OnRowClick: func(ctx context.Context, p Person) error {
			logging.WithTable(ctx, table).Debug("row clicked", "id", p.ID)
			return nil
		},
	}
}

// localTable builds a table over a copy of the shared rows. Changes are
// written to the shared rows and reloaded into the session's table.
func localTable(key string, people *source.Slice[Person], opts Options) (core.Controller, error) {
	var tbl *core.Table[Person]
	m := sliceMutations(people)
	m.after = func(context.Context) error {
		tbl.SetData(people.Rows())
		return nil
	}

	tbl, err := core.New(core.Definition[Person]{
		ID:        key,
		Columns:   Columns(),
		Data:      people.Rows(),
		RowID:     rowID,
		PageSize:  opts.PageSize,
		Store:     storeConfig(key, m, nil),
		OnCompute: opts.Observer.ComputeHook(key),
	})
	if err != nil {
		return nil, err
	}
	return tbl, nil
}

func registerPeople(people *source.Slice[Person], opts Options) {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:         KeyPeople,
			Group:       Group,
			Label:       "People",
			Description: "Generated people, filtered and sorted in memory, one page at a time.",
		},
		New: func() (core.Controller, error) {
			return localTable(KeyPeople, people, opts)
		},
	})
}

func registerPeopleVirtual(people *source.Slice[Person], opts Options) {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:         KeyPeopleVirtual,
			Group:       Group,
			Label:       "People (virtualized)",
			Description: "Every filtered row in one scrolling window; only visible rows and columns are rendered.",
			Virtualized: true,
		},
		New: func() (core.Controller, error) {
			return localTable(KeyPeopleVirtual, people, opts)
		},
	})
}

func registerPeoplePaged(people *source.Slice[Person], opts Options) {
	paged := source.NewPaged(WithLatency(people.Fetch, opts.Latency), source.PagedOptions{
		Name:      KeyPeoplePaged,
		CacheSize: opts.CacheSize,
		TTL:       opts.CacheTTL,
		Recorder:  opts.Observer,
	})

	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:         KeyPeoplePaged,
			Group:       Group,
			Label:       "People (paged)",
			Description: "Pages fetched on demand with a delay and cached; filters apply to the loaded page.",
		},
		New: func() (core.Controller, error) {
			return pagedTable(KeyPeoplePaged, paged, sliceMutations(people), opts)
		},
	})
}

// pagedTable builds a loader backed table. Changes drop the page cache and
// reload the current page.
func pagedTable(key string, paged *source.Paged[Person], m mutations, opts Options) (core.Controller, error) {
	var tbl *core.Table[Person]
	m.after = func(ctx context.Context) error {
		paged.Invalidate()
		return tbl.Refresh(ctx)
	}

	tbl, err := core.New(core.Definition[Person]{
		ID:        key,
		Columns:   Columns(),
		Loader:    paged,
		RowID:     rowID,
		PageSize:  opts.PageSize,
		Store:     storeConfig(key, m, []string{"address"}),
		OnCompute: opts.Observer.ComputeHook(key),
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("paged table opened", "table", key, "cached_pages", paged.CachedPages())
	return tbl, nil
}
