package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/datagrid/internal/export"
)

// ExportScope selects which rows are exported.
type ExportScope string

const (
	// ExportAll exports every row of the table, as the toolbar does.
	ExportAll ExportScope = "all"
	// ExportSelected exports the selected rows, as the floating bar does.
	ExportSelected ExportScope = "selected"
)

// ErrNothingToExport is returned when the chosen scope has no rows.
var ErrNothingToExport = errors.New("no rows to export")

// ParseExportScope converts a query value; anything but "selected" is all.
func ParseExportScope(s string) ExportScope {
	if ExportScope(s) == ExportSelected {
		return ExportSelected
	}
	return ExportAll
}

// ExportDataset builds the export for a scope: every data column mapped to
// its header, minus the configured exclusions.
func (t *Table[T]) ExportDataset(scope ExportScope) (export.Dataset, error) {
	cfg, _ := t.store.ExportConfig()

	t.mu.Lock()
	var rows []T
	if scope == ExportSelected {
		rows = t.rowsByIDLocked(t.selectedIDsLocked())
	} else {
		rows = t.data
	}

	columns := make([]export.Column, 0, len(t.columns))
	for ci := range t.columns {
		c := &t.columns[ci]
		if c.ID == SelectColumnID || c.Accessor == nil {
			continue
		}
		columns = append(columns, export.Column{ID: c.ID, Header: c.Header})
	}
	raw := make([]map[string]any, len(rows))
	for i, row := range rows {
		rec := make(map[string]any, len(columns))
		for _, col := range columns {
			c := &t.columns[t.byID[col.ID]]
			rec[col.ID] = c.value(row)
		}
		raw[i] = rec
	}
	t.mu.Unlock()

	if len(raw) == 0 {
		return export.Dataset{}, ErrNothingToExport
	}
	return export.Transform(columns, raw, cfg.ExcludeColumns), nil
}

// DeliverExport hands the dataset to the caller's OnExport callback. It
// reports false when no callback is configured and a file should be written.
func (t *Table[T]) DeliverExport(ctx context.Context, d export.Dataset) (bool, error) {
	cfg, ok := t.store.ExportConfig()
	if !ok || cfg.OnExport == nil {
		return false, nil
	}
	if err := cfg.OnExport(ctx, d.Records()); err != nil {
		return true, &export.Error{Format: "callback", Filename: cfg.Filename, Err: fmt.Errorf("export callback: %w", err)}
	}
	return true, nil
}
