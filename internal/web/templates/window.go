package templates

import "github.com/JonMunkholm/datagrid/internal/core"

// windowColumns lists the header indexes to render: pinned columns always,
// unpinned ones only inside the column window. Negative entries are spacer
// widths standing in for skipped columns.
func windowColumns(headers []core.Header, win *Window) []int {
	var left, middle, right []int
	for i, hd := range headers {
		switch hd.Pin {
		case core.PinLeft:
			left = append(left, i)
		case core.PinRight:
			right = append(right, i)
		default:
			middle = append(middle, i)
		}
	}

	cols := left
	if win.Columns.Before > 0 {
		cols = append(cols, -win.Columns.Before)
	}
	for _, item := range win.Columns.Items {
		if item.Index < len(middle) {
			cols = append(cols, middle[item.Index])
		}
	}
	if win.Columns.After > 0 {
		cols = append(cols, -win.Columns.After)
	}
	return append(cols, right...)
}

// UnpinnedSizes returns the widths of the unpinned headers in display order,
// the sizes a column virtualizer lays out.
func UnpinnedSizes(headers []core.Header) []int {
	var sizes []int
	for _, hd := range headers {
		if hd.Pin == core.PinNone {
			sizes = append(sizes, hd.Size)
		}
	}
	return sizes
}
