package core

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoHandler is returned when an action has no caller handler configured.
var ErrNoHandler = errors.New("no handler configured")

// MenuItemKind distinguishes built-in from caller supplied menu entries.
type MenuItemKind string

const (
	MenuEdit   MenuItemKind = "edit"
	MenuDelete MenuItemKind = "delete"
	MenuExtra  MenuItemKind = "extra"
)

// MenuItem is one entry of a row's context menu.
type MenuItem struct {
	Kind  MenuItemKind
	Name  string
	Label string
}

// ContextMenu returns the menu entries for a row. It returns nothing while
// selection mode is active or when no menu is configured.
func (t *Table[T]) ContextMenu(rowID string) ([]MenuItem, error) {
	if _, ok := t.Row(rowID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRow, rowID)
	}
	if t.store.IsSelecting() {
		return nil, nil
	}
	cfg := t.store.ContextMenu()
	if !cfg.Enabled() {
		return nil, nil
	}

	var items []MenuItem
	if cfg.EnableEdit && t.store.EditRow() != nil {
		items = append(items, MenuItem{Kind: MenuEdit, Name: "edit", Label: "Edit"})
	}
	if cfg.EnableDelete && cfg.OnDelete != nil {
		items = append(items, MenuItem{Kind: MenuDelete, Name: "delete", Label: "Delete"})
	}
	for _, a := range cfg.Extra {
		label := a.Label
		if label == "" {
			label = a.Name
		}
		items = append(items, MenuItem{Kind: MenuExtra, Name: a.Name, Label: label})
	}
	return items, nil
}

// RunAction invokes the named caller supplied action with the row.
func (t *Table[T]) RunAction(ctx context.Context, rowID, name string) error {
	row, ok := t.Row(rowID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRow, rowID)
	}
	a, ok := t.store.ContextMenu().action(name)
	if !ok || a.Run == nil {
		return fmt.Errorf("action %q: %w", name, ErrNoHandler)
	}
	if err := a.Run(ctx, row); err != nil {
		return fmt.Errorf("action %q on row %s: %w", name, rowID, err)
	}
	return nil
}

// ClickRow invokes the caller's row click handler. Clicks are ignored
// while selection mode is active.
func (t *Table[T]) ClickRow(ctx context.Context, rowID string) error {
	row, ok := t.Row(rowID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRow, rowID)
	}
	fn := t.store.OnRowClick()
	if fn == nil || t.store.IsSelecting() {
		return nil
	}
	return fn(ctx, row)
}
