package core

import (
	"context"
	"fmt"
	"net/url"

	"github.com/JonMunkholm/datagrid/internal/form"
)

// AddForm returns the add form with empty defaults. The form is nil when no
// add config or no field schemas are set.
func (t *Table[T]) AddForm() (*form.Form, form.Values) {
	if t.store.AddRow() == nil {
		return nil, nil
	}
	f := form.New(t.store.Schemas())
	if f == nil {
		return nil, nil
	}
	return f, f.Defaults(nil)
}

// EditForm returns the edit form prefilled from the row's column values.
func (t *Table[T]) EditForm(rowID string) (*form.Form, form.Values, error) {
	values, err := t.RowValues(rowID)
	if err != nil {
		return nil, nil, err
	}
	if t.store.EditRow() == nil {
		return nil, nil, nil
	}
	f := form.New(t.store.Schemas())
	if f == nil {
		return nil, nil, nil
	}
	return f, f.Defaults(values), nil
}

// SubmitAdd validates the submission and calls the add handler once.
func (t *Table[T]) SubmitAdd(ctx context.Context, raw url.Values) (form.Values, error) {
	cfg := t.store.AddRow()
	if cfg == nil || cfg.OnSubmit == nil {
		return nil, fmt.Errorf("add row: %w", ErrNoHandler)
	}
	f := form.New(t.store.Schemas())
	if f == nil {
		return nil, fmt.Errorf("add row: %w", ErrNoHandler)
	}
	return f.Submit(ctx, raw, func(ctx context.Context, values form.Values) error {
		return cfg.OnSubmit(ctx, values, nil)
	})
}

// SubmitEdit validates the submission and calls the edit handler once with
// the existing row.
func (t *Table[T]) SubmitEdit(ctx context.Context, rowID string, raw url.Values) (form.Values, error) {
	row, ok := t.Row(rowID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRow, rowID)
	}
	cfg := t.store.EditRow()
	if cfg == nil || cfg.OnSubmit == nil {
		return nil, fmt.Errorf("edit row: %w", ErrNoHandler)
	}
	f := form.New(t.store.Schemas())
	if f == nil {
		return nil, fmt.Errorf("edit row: %w", ErrNoHandler)
	}
	return f.Submit(ctx, raw, func(ctx context.Context, values form.Values) error {
		return cfg.OnSubmit(ctx, values, &row)
	})
}
