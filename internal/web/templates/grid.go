package templates

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/datagrid/internal/core"
	"github.com/JonMunkholm/datagrid/internal/export"
	"github.com/JonMunkholm/datagrid/internal/virtual"
)

// ExportFormats are offered by the toolbar and the floating bar.
var ExportFormats = []string{export.FormatXLSX, export.FormatCSV, export.FormatJSON, export.FormatYAML}

// PollInterval is how soon a grid rendered while loading asks again.
const PollInterval = 300 * time.Millisecond

// GridProps holds everything the grid renders.
type GridProps struct {
	Info     core.TableInfo
	Snap     core.Snapshot
	Debounce time.Duration

	// Window is set for virtualized tables. Snap.Rows then holds the
	// windowed rows starting at Snap.RowOffset.
	Window *Window
}

// Window is the visible slice of a virtualized table.
type Window struct {
	Rows    virtual.Window
	Columns virtual.Window // Over the unpinned headers
	Measure bool           // Report rendered row heights back
}

func pollTrigger() string {
	return fmt.Sprintf("load delay:%dms", PollInterval.Milliseconds())
}

func searchTrigger(debounce time.Duration) string {
	if debounce <= 0 {
		debounce = core.DefaultDebounce
	}
	return fmt.Sprintf("input changed delay:%dms, search", debounce.Milliseconds())
}

func scrollID(tableID string) string {
	return "scroll-" + domID(tableID)
}

func scrollVals(tableID string) string {
	el := "document.getElementById('" + scrollID(tableID) + "')"
	rows := "Array.from(" + el + ".querySelectorAll('tr[data-index]')).map(r => r.dataset.index + ':' + r.offsetHeight).join(',')"
	return "js:{offset: " + el + ".scrollTop, viewport: " + el + ".clientHeight, " +
		"xoffset: " + el + ".scrollLeft, xviewport: " + el + ".clientWidth, " +
		"measured: " + el + ".dataset.measure === 'true' ? " + rows + " : ''}"
}

// exportURL is the download link the export buttons fetch through htmx.
func exportURL(tableID, format string, scope core.ExportScope) string {
	q := url.Values{"format": {format}, "scope": {string(scope)}}
	return TablePath(tableID, "export") + "?" + q.Encode()
}

// cellAttrs positions a header or body cell, sticking pinned ones to
// their side.
func cellAttrs(hd core.Header) templ.Attributes {
	var class, style string
	switch hd.Pin {
	case core.PinLeft:
		class = "pinned"
		if hd.LastLeft {
			class += " last-left"
		}
		style = fmt.Sprintf("left:%dpx;", hd.Offset)
	case core.PinRight:
		class = "pinned"
		if hd.FirstRight {
			class += " first-right"
		}
		style = fmt.Sprintf("right:%dpx;", hd.Offset)
	}
	attrs := templ.Attributes{"style": style + fmt.Sprintf("width:%dpx;min-width:%dpx", hd.Size, hd.Size)}
	if class != "" {
		attrs["class"] = class
	}
	return attrs
}

// spacerAttrs sizes a cell standing in for columns outside the window.
func spacerAttrs(width int) templ.Attributes {
	return templ.Attributes{"style": fmt.Sprintf("width:%dpx;min-width:%dpx;padding:0", width, width)}
}

// heightAttrs sizes a row standing in for rows outside the window.
func heightAttrs(height int) templ.Attributes {
	return templ.Attributes{"style": fmt.Sprintf("height:%dpx;padding:0", height)}
}

func allColumns(n int) []int {
	cols := make([]int, n)
	for i := range cols {
		cols[i] = i
	}
	return cols
}

// sortBadge is the 1-based position shown next to a sorted header when
// more than one column is sorted, 0 otherwise.
func sortBadge(s core.Snapshot, hd core.Header) int {
	if hd.SortIndex < 0 {
		return 0
	}
	n := 0
	for _, h := range s.Headers {
		if h.Sorted != "" {
			n++
		}
	}
	if n < 2 {
		return 0
	}
	return hd.SortIndex + 1
}

func jsonVals(v map[string]string) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func pinVals(side core.PinSide) string { return jsonVals(map[string]string{"side": string(side)}) }
func pageVals(index int) string        { return jsonVals(map[string]string{"index": itoa(index)}) }
func selectPageVals(selected bool) string {
	return jsonVals(map[string]string{"selected": fmt.Sprint(selected)})
}
func rowVals(rowID string) string { return jsonVals(map[string]string{"row": rowID}) }

func filterText(f any) string {
	s, _ := f.(string)
	return s
}

func filterRange(f any) core.Range {
	r, _ := f.(core.Range)
	return r
}

func filterDates(f any) core.DateRange {
	r, _ := f.(core.DateRange)
	return r
}

func boundPlaceholder(label string, bound *float64) string {
	if bound == nil {
		return label
	}
	return label + " (" + formatFloat(*bound) + ")"
}
