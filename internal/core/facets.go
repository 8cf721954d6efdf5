package core

import (
	"slices"
)

// MaxFacetValues caps the unique values offered by a select filter.
const MaxFacetValues = 5000

// FacetValue is one unique cell value and how many rows carry it.
type FacetValue struct {
	Value string
	Count int
}

// Facets returns the unique display values of a column over the rows
// passing every other filter, sorted and capped at MaxFacetValues.
func (t *Table[T]) Facets(id string) ([]FacetValue, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.column(id); err != nil {
		return nil, err
	}
	return t.facetsLocked(id), nil
}

// MinMax returns the smallest and largest numeric value of a column over the
// rows passing every other filter. ok is false when no row has a number.
func (t *Table[T]) MinMax(id string) (lo, hi float64, ok bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.column(id); err != nil {
		return 0, 0, false, err
	}
	lo, hi, ok = t.minMaxLocked(id)
	return lo, hi, ok, nil
}

func (t *Table[T]) facetsLocked(id string) []FacetValue {
	c := &t.columns[t.byID[id]]
	counts := make(map[string]int)
	for _, r := range t.filterRowsLocked(id) {
		if v := FormatValue(c.value(r.Original)); v != "" {
			counts[v]++
		}
	}
	out := make([]FacetValue, 0, len(counts))
	for v, n := range counts {
		out = append(out, FacetValue{Value: v, Count: n})
	}
	slices.SortFunc(out, func(a, b FacetValue) int { return CompareAlphanumeric(a.Value, b.Value) })
	if len(out) > MaxFacetValues {
		out = out[:MaxFacetValues]
	}
	return out
}

func (t *Table[T]) minMaxLocked(id string) (lo, hi float64, ok bool) {
	c := &t.columns[t.byID[id]]
	for _, r := range t.filterRowsLocked(id) {
		f, isNum := toFloat(c.value(r.Original))
		if !isNum {
			continue
		}
		if !ok || f < lo {
			lo = f
		}
		if !ok || f > hi {
			hi = f
		}
		ok = true
	}
	return lo, hi, ok
}
