package core

import "slices"

// SortingRule orders rows by one column.
type SortingRule struct {
	ID   string
	Desc bool
}

// PaginationState selects one page of the sorted row model.
type PaginationState struct {
	PageIndex int
	PageSize  int
}

// DefaultPageSize is used when a definition does not set one.
const DefaultPageSize = 10

// PageSizeOptions are the page sizes offered by the pagination control.
var PageSizeOptions = []int{10, 20, 30, 40, 50}

// PinSide fixes a column to an edge of the table.
type PinSide string

const (
	PinNone  PinSide = ""
	PinLeft  PinSide = "left"
	PinRight PinSide = "right"
)

// ParsePinSide converts "left", "right" or anything else (none).
func ParsePinSide(s string) PinSide {
	switch PinSide(s) {
	case PinLeft:
		return PinLeft
	case PinRight:
		return PinRight
	default:
		return PinNone
	}
}

// PinningState lists pinned column ids per side, in display order.
type PinningState struct {
	Left  []string
	Right []string
}

func (p PinningState) side(id string) PinSide {
	if slices.Contains(p.Left, id) {
		return PinLeft
	}
	if slices.Contains(p.Right, id) {
		return PinRight
	}
	return PinNone
}

func (p PinningState) without(id string) PinningState {
	return PinningState{
		Left:  slices.DeleteFunc(slices.Clone(p.Left), func(s string) bool { return s == id }),
		Right: slices.DeleteFunc(slices.Clone(p.Right), func(s string) bool { return s == id }),
	}
}

// State is a copy of every piece of table state.
type State struct {
	ColumnFilters    []ColumnFilter
	GlobalFilter     string
	Sorting          []SortingRule
	Pagination       PaginationState
	ColumnVisibility map[string]bool // absent means visible
	ColumnPinning    PinningState
	ColumnOrder      []string
	RowSelection     map[string]bool
}

func (s State) clone() State {
	out := s
	out.ColumnFilters = slices.Clone(s.ColumnFilters)
	out.Sorting = slices.Clone(s.Sorting)
	out.ColumnOrder = slices.Clone(s.ColumnOrder)
	out.ColumnPinning = PinningState{
		Left:  slices.Clone(s.ColumnPinning.Left),
		Right: slices.Clone(s.ColumnPinning.Right),
	}
	out.ColumnVisibility = make(map[string]bool, len(s.ColumnVisibility))
	for k, v := range s.ColumnVisibility {
		out.ColumnVisibility[k] = v
	}
	out.RowSelection = make(map[string]bool, len(s.RowSelection))
	for k, v := range s.RowSelection {
		out.RowSelection[k] = v
	}
	return out
}

// MoveID moves the element equal to activeID to the index of overID,
// shifting the elements in between. Unknown ids leave the order unchanged.
func MoveID(order []string, activeID, overID string) []string {
	from := slices.Index(order, activeID)
	to := slices.Index(order, overID)
	if from < 0 || to < 0 || from == to {
		return slices.Clone(order)
	}
	out := slices.Clone(order)
	item := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, item)
}
