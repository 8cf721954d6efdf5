package core

import (
	"context"
	"slices"
	"sync"

	"github.com/JonMunkholm/datagrid/internal/form"
)

// ExportConfig controls how exported rows are named and delivered.
type ExportConfig struct {
	Filename       string   // Base name, ".xlsx" (or the chosen format's extension) is appended
	ExcludeColumns []string // Column ids left out of the export

	// OnExport receives the transformed records (keyed by header label)
	// instead of a file being written. Nil means write a file.
	OnExport func(ctx context.Context, records []map[string]any) error
}

// Excludes reports whether the column id is excluded from exports.
func (c ExportConfig) Excludes(id string) bool {
	return slices.Contains(c.ExcludeColumns, id)
}

// Action is a caller supplied context menu entry.
type Action[T any] struct {
	Name  string
	Label string
	Run   func(ctx context.Context, row T) error
}

// ContextMenuConfig configures the per-row context menu.
type ContextMenuConfig[T any] struct {
	EnableEdit   bool
	EnableDelete bool

	// OnDelete receives either the single row or the selected row set after
	// the user confirms.
	OnDelete func(ctx context.Context, rows []T) error

	Extra []Action[T]
}

// Enabled reports whether any menu entry would be shown.
func (c *ContextMenuConfig[T]) Enabled() bool {
	return c != nil && (c.EnableEdit || c.EnableDelete || len(c.Extra) > 0)
}

func (c *ContextMenuConfig[T]) action(name string) (Action[T], bool) {
	if c == nil {
		return Action[T]{}, false
	}
	for _, a := range c.Extra {
		if a.Name == name {
			return a, true
		}
	}
	return Action[T]{}, false
}

// RowForm configures the add or edit form. Values holds the decoded and
// validated submission keyed by field id.
type RowForm[T any] struct {
	Title       string
	Description string
	OnSubmit    func(ctx context.Context, values form.Values, existing *T) error
}

// Store holds table-wide settings shared by the toolbar, menus, forms and
// floating bar: the selection mode flag and the caller's configs.
type Store[T any] struct {
	mu sync.RWMutex

	selecting   bool
	export      *ExportConfig
	contextMenu *ContextMenuConfig[T]
	addRow      *RowForm[T]
	editRow     *RowForm[T]
	schemas     []form.Field
	onRowClick  func(ctx context.Context, row T) error
}

// StoreConfig seeds a Store.
type StoreConfig[T any] struct {
	Export      *ExportConfig
	ContextMenu *ContextMenuConfig[T]
	AddRow      *RowForm[T]
	EditRow     *RowForm[T]
	Schemas     []form.Field
	OnRowClick  func(ctx context.Context, row T) error
}

// NewStore creates a Store with selection mode off.
func NewStore[T any](cfg StoreConfig[T]) *Store[T] {
	s := &Store[T]{}
	s.SetConfig(cfg)
	return s
}

// SetConfig replaces every caller supplied config at once.
func (s *Store[T]) SetConfig(cfg StoreConfig[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.export = cfg.Export
	s.contextMenu = cfg.ContextMenu
	s.addRow = cfg.AddRow
	s.editRow = cfg.EditRow
	s.schemas = slices.Clone(cfg.Schemas)
	s.onRowClick = cfg.OnRowClick
}

// ToggleSelection flips selection mode and returns the new value.
func (s *Store[T]) ToggleSelection() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selecting = !s.selecting
	return s.selecting
}

// IsSelecting reports whether selection mode is on.
func (s *Store[T]) IsSelecting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selecting
}

// SetExportConfig replaces the export config. Nil disables export.
func (s *Store[T]) SetExportConfig(cfg *ExportConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.export = cfg
}

// ExportConfig returns a copy of the export config and whether one is set.
func (s *Store[T]) ExportConfig() (ExportConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.export == nil {
		return ExportConfig{}, false
	}
	cfg := *s.export
	cfg.ExcludeColumns = slices.Clone(cfg.ExcludeColumns)
	return cfg, true
}

// ContextMenu returns the context menu config, or nil.
func (s *Store[T]) ContextMenu() *ContextMenuConfig[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contextMenu
}

// AddRow returns the add form config, or nil.
func (s *Store[T]) AddRow() *RowForm[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addRow
}

// EditRow returns the edit form config, or nil.
func (s *Store[T]) EditRow() *RowForm[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editRow
}

// Schemas returns the form field schemas.
func (s *Store[T]) Schemas() []form.Field {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.schemas)
}

// OnRowClick returns the row click handler, or nil.
func (s *Store[T]) OnRowClick() func(ctx context.Context, row T) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.onRowClick
}
