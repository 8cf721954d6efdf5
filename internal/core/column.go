package core

import (
	"reflect"
	"strings"
	"unicode"
)

// SelectColumnID is the id of the synthetic checkbox column shown while
// selection mode is active.
const SelectColumnID = "select"

// FilterVariant selects the filter input and predicate used for a column.
type FilterVariant string

const (
	FilterText   FilterVariant = "text"
	FilterRange  FilterVariant = "range"
	FilterSelect FilterVariant = "select"
	FilterDate   FilterVariant = "date"
)

// FilterFunc reports whether a cell value passes a filter value.
type FilterFunc func(value any, filter any) bool

// SortFunc compares two cell values and returns -1, 0 or 1.
type SortFunc func(a, b any) int

// Column declares how one column reads, renders, filters and sorts rows.
type Column[T any] struct {
	ID     string // Unique, stable across renders
	Header string // Display label, also used as the export header
	Size   int    // Preferred width in pixels (0 = DefaultColumnSize)

	// Accessor returns the raw cell value used for filtering, sorting and export.
	Accessor func(row T) any

	// Cell renders the display text. Defaults to FormatValue(Accessor(row)).
	Cell func(row T) string

	Filter   FilterVariant // Empty means text
	FilterFn FilterFunc    // Optional custom predicate, replaces the variant default
	SortFn   SortFunc      // Optional comparator, replaces CompareValues

	DisableSorting      bool
	DisableHiding       bool
	DisablePinning      bool
	DisableFilter       bool
	DisableGlobalFilter bool
}

// DefaultColumnSize is the width used for columns without an explicit Size.
const DefaultColumnSize = 150

func (c *Column[T]) value(row T) any {
	if c.Accessor == nil {
		return nil
	}
	return c.Accessor(row)
}

func (c *Column[T]) render(row T) string {
	if c.Cell != nil {
		return c.Cell(row)
	}
	return FormatValue(c.value(row))
}

func (c *Column[T]) size() int {
	if c.Size > 0 {
		return c.Size
	}
	return DefaultColumnSize
}

func (c *Column[T]) variant() FilterVariant {
	if c.Filter == "" {
		return FilterText
	}
	return c.Filter
}

// ColumnsFor builds accessor columns from the exported fields of struct type T.
// The column id is taken from the named struct tag (e.g. "json"), falling back
// to the field name. Fields tagged "-" are skipped. Headers are derived from the
// field name ("LastUpdate" -> "Last Update").
func ColumnsFor[T any](tag string) []Column[T] {
	var zero T
	t := reflect.TypeOf(zero)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	var cols []Column[T]
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		id := field.Name
		if tag != "" {
			if v, ok := field.Tag.Lookup(tag); ok {
				if idx := strings.IndexByte(v, ','); idx != -1 {
					v = v[:idx]
				}
				if v == "-" {
					continue
				}
				if v != "" {
					id = v
				}
			}
		}

		index := field.Index
		cols = append(cols, Column[T]{
			ID:     id,
			Header: headerFromFieldName(field.Name),
			Accessor: func(row T) any {
				v := reflect.ValueOf(row)
				for v.Kind() == reflect.Pointer {
					if v.IsNil() {
						return nil
					}
					v = v.Elem()
				}
				return v.FieldByIndex(index).Interface()
			},
		})
	}
	return cols
}

// headerFromFieldName splits a Go identifier on case changes.
func headerFromFieldName(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte(' ')
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
