package core

import (
	"context"
	"fmt"
	"net/url"
	"slices"

	"github.com/JonMunkholm/datagrid/internal/export"
	"github.com/JonMunkholm/datagrid/internal/form"
)

// Controller is the row-type independent view of a table used by the HTTP
// layer. *Table[T] implements it for every T.
type Controller interface {
	ID() string
	Manual() bool
	Snapshot(opts ViewOptions) Snapshot
	Refresh(ctx context.Context) error
	RefreshAsync(ctx context.Context) <-chan error

	SetGlobalFilter(query string)
	ResetGlobalFilter()
	SetColumnFilter(id string, value any) error
	ParseColumnFilter(id string, values url.Values) (any, error)
	RemoveColumnFilter(id string) error
	ResetColumnFilters()
	ToggleSorting(id string, multi bool) error
	SetPageIndex(index int)
	SetPageSize(size int)

	ToggleColumnVisibility(id string) error
	PinColumn(id string, side PinSide) error
	MoveColumn(activeID, overID string) error
	SetColumnOrder(order []string) error
	ResetColumnOrder() error

	ToggleSelection() bool
	ToggleRowSelected(id string) error
	ToggleAllPageRowsSelected(selected bool)
	ResetRowSelection()

	ContextMenu(rowID string) ([]MenuItem, error)
	RunAction(ctx context.Context, rowID, name string) error
	ClickRow(ctx context.Context, rowID string) error
	RequestDelete(rowIDs ...string) (PendingDelete, error)
	ConfirmDelete(ctx context.Context, token string) (int, error)
	CancelDelete(token string) bool

	AddForm() (*form.Form, form.Values)
	FormInfo(edit bool) (title, description string)
	EditForm(rowID string) (*form.Form, form.Values, error)
	SubmitAdd(ctx context.Context, raw url.Values) (form.Values, error)
	SubmitEdit(ctx context.Context, rowID string, raw url.Values) (form.Values, error)

	ExportConfig() (ExportConfig, bool)
	ToggleExportColumn(id string) error
	ExportDataset(scope ExportScope) (export.Dataset, error)
	DeliverExport(ctx context.Context, d export.Dataset) (bool, error)
}

var _ Controller = (*Table[struct{}])(nil)

// ToggleSelection flips selection mode and returns the new value.
func (t *Table[T]) ToggleSelection() bool { return t.store.ToggleSelection() }

// IsSelecting reports whether selection mode is on.
func (t *Table[T]) IsSelecting() bool { return t.store.IsSelecting() }

// ExportConfig returns the export config and whether export is enabled.
func (t *Table[T]) ExportConfig() (ExportConfig, bool) { return t.store.ExportConfig() }

// ToggleExportColumn leaves a column out of exports, or takes it back in.
func (t *Table[T]) ToggleExportColumn(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.column(id); err != nil {
		return err
	}
	cfg, ok := t.store.ExportConfig()
	if !ok {
		return fmt.Errorf("export: %w", ErrNoHandler)
	}
	if i := slices.Index(cfg.ExcludeColumns, id); i >= 0 {
		cfg.ExcludeColumns = slices.Delete(cfg.ExcludeColumns, i, i+1)
	} else {
		cfg.ExcludeColumns = append(cfg.ExcludeColumns, id)
	}
	t.store.SetExportConfig(&cfg)
	return nil
}

// ResetColumnOrder restores the order the columns were defined in.
func (t *Table[T]) ResetColumnOrder() error {
	ids := make([]string, len(t.columns))
	for i := range t.columns {
		ids[i] = t.columns[i].ID
	}
	return t.SetColumnOrder(ids)
}

// ParseColumnFilter reads a filter value for the column's variant from
// submitted form values: "value" for text and select, "min" and "max" for
// range, "from" and "to" for date.
func (t *Table[T]) ParseColumnFilter(id string, values url.Values) (any, error) {
	c, err := t.column(id)
	if err != nil {
		return nil, err
	}
	switch c.variant() {
	case FilterRange:
		return ParseRange(values.Get("min"), values.Get("max"))
	case FilterDate:
		return ParseDateRange(values.Get("from"), values.Get("to"))
	case FilterText, FilterSelect:
		return values.Get("value"), nil
	default:
		return nil, fmt.Errorf("%w: column %q has variant %q", ErrInvalidFilter, id, c.variant())
	}
}

// FormInfo returns the title and description of the add or edit form.
func (t *Table[T]) FormInfo(edit bool) (title, description string) {
	cfg := t.store.AddRow()
	if edit {
		cfg = t.store.EditRow()
	}
	if cfg == nil {
		return "", ""
	}
	return cfg.Title, cfg.Description
}
