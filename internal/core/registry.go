package core

// registry.go keeps the set of tables the server can show. Entries hold a
// factory rather than a table, so every client session gets its own state
// built from the same definition.

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// TableInfo describes a registered table for listings.
type TableInfo struct {
	Key         string // URL id, also the table id
	Label       string // Display name, defaults to Key
	Group       string // Listing section
	Description string

	// Virtualized renders every filtered row in a scrolling window instead
	// of one page at a time.
	Virtualized bool
}

// TableDefinition pairs table info with a factory for fresh table state.
type TableDefinition struct {
	Info TableInfo
	New  func() (Controller, error)
}

// ErrTableNotFound is returned by Open for unregistered keys.
var ErrTableNotFound = errors.New("table not found")

// Registry is a concurrency-safe set of table definitions keyed by
// TableInfo.Key.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]TableDefinition
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]TableDefinition)}
}

// Register adds def. It panics on a missing key or factory and on a key
// that is already taken, since these are wiring mistakes.
func (r *Registry) Register(def TableDefinition) {
	switch {
	case def.Info.Key == "":
		panic("table registered without a key")
	case def.New == nil:
		panic(fmt.Sprintf("table %s registered without a factory", def.Info.Key))
	}
	if def.Info.Label == "" {
		def.Info.Label = def.Info.Key
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.defs[def.Info.Key]; taken {
		panic(fmt.Sprintf("table %s registered twice", def.Info.Key))
	}
	r.defs[def.Info.Key] = def
}

func (r *Registry) Get(key string) (TableDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[key]
	return def, ok
}

// Open builds fresh table state for key.
func (r *Registry) Open(key string) (Controller, error) {
	def, ok := r.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, key)
	}
	c, err := def.New()
	if err != nil {
		return nil, fmt.Errorf("open table %s: %w", key, err)
	}
	return c, nil
}

// Filter returns the definitions accepted by keep, ordered by group then key.
// A nil keep accepts everything.
func (r *Registry) Filter(keep func(TableInfo) bool) []TableDefinition {
	r.mu.RLock()
	out := make([]TableDefinition, 0, len(r.defs))
	for _, def := range r.defs {
		if keep == nil || keep(def.Info) {
			out = append(out, def)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b TableDefinition) int {
		return cmp.Or(cmp.Compare(a.Info.Group, b.Info.Group), cmp.Compare(a.Info.Key, b.Info.Key))
	})
	return out
}

// Groups returns the distinct group names in order.
func (r *Registry) Groups() []string {
	r.mu.RLock()
	seen := make(map[string]struct{}, len(r.defs))
	for _, def := range r.defs {
		seen[def.Info.Group] = struct{}{}
	}
	r.mu.RUnlock()
	return slices.Sorted(maps.Keys(seen))
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// Reset drops every definition.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.defs)
}

// Tables is the registry the package level functions use.
var Tables = NewRegistry()

func Register(def TableDefinition)           { Tables.Register(def) }
func Open(key string) (Controller, error)    { return Tables.Open(key) }
func Get(key string) (TableDefinition, bool) { return Tables.Get(key) }
func All() []TableDefinition                 { return Tables.Filter(nil) }
func Groups() []string                       { return Tables.Groups() }
func TableCount() int                        { return Tables.Len() }
func Clear()                                 { Tables.Reset() }

func ByGroup(group string) []TableDefinition {
	return Tables.Filter(func(info TableInfo) bool { return info.Group == group })
}
