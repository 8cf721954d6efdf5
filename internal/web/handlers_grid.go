package web

// handlers_grid.go renders the grid and applies the state changes sent by
// the toolbar, headers, pagination and selection controls. Every state
// change answers with the re-rendered grid.

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/datagrid/internal/core"
	"github.com/JonMunkholm/datagrid/internal/virtual"
	"github.com/JonMunkholm/datagrid/internal/web/templates"
)

// loadWait is how long a page change waits for a paged table to load before
// rendering the previous rows marked as loading.
const loadWait = 100 * time.Millisecond

// render writes a component as HTML.
func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		requestLogger(r).Error("render failed", "error", err)
	}
}

// scroll is the scroll position reported by a virtualized grid.
type scroll struct {
	offset, viewport   int
	xoffset, xviewport int
	measured           map[int]int // Row index to rendered height
}

// parseScroll reads the window query. Missing sizes fall back to the last
// reported viewport.
func parseScroll(r *http.Request, ts *tableState) scroll {
	q := r.URL.Query()
	height, width := ts.viewport()
	sc := scroll{
		offset:    queryInt(q.Get("offset"), 0),
		viewport:  queryInt(q.Get("viewport"), height),
		xoffset:   queryInt(q.Get("xoffset"), 0),
		xviewport: queryInt(q.Get("xviewport"), width),
	}
	ts.setViewport(sc.viewport, sc.xviewport)

	for _, pair := range strings.Split(q.Get("measured"), ",") {
		idx, size, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		i, err1 := strconv.Atoi(idx)
		n, err2 := strconv.Atoi(size)
		if err1 != nil || err2 != nil {
			continue
		}
		if sc.measured == nil {
			sc.measured = make(map[int]int)
		}
		sc.measured[i] = n
	}
	return sc
}

// queryInt parses a non-negative integer, returning def when absent or invalid.
func queryInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// gridProps snapshots the table for rendering. Virtualized tables include
// only the rows and columns inside the scroll window.
func (s *Server) gridProps(ts *tableState, sc scroll) templates.GridProps {
	p := templates.GridProps{Info: ts.info, Debounce: s.cfg.Table.SearchDebounce}
	if !ts.info.Virtualized {
		p.Snap = ts.ctrl.Snapshot(core.ViewOptions{Facets: true})
		return p
	}

	count := ts.ctrl.Snapshot(core.ViewOptions{AllRows: true, RowStart: math.MaxInt}).RowCount
	ts.rows.SetCount(count)
	for i, size := range sc.measured {
		ts.rows.Measure(i, size)
	}
	ts.rows.Scroll(sc.offset, sc.viewport)
	rows := ts.rows.Window()

	opts := core.ViewOptions{AllRows: true, Facets: true, RowStart: math.MaxInt}
	if n := len(rows.Items); n > 0 {
		opts.RowStart = rows.Items[0].Index
		opts.RowEnd = rows.Items[n-1].Index + 1
	}
	p.Snap = ts.ctrl.Snapshot(opts)

	sizes := templates.UnpinnedSizes(p.Snap.Headers)
	cols := virtual.New(virtual.Options{
		Count:          len(sizes),
		EstimateSize:   virtual.Sizes(sizes),
		Overscan:       virtual.DefaultColumnOverscan,
		DisableMeasure: true,
	})
	cols.Scroll(sc.xoffset, sc.xviewport)

	p.Window = &templates.Window{Rows: rows, Columns: cols.Window(), Measure: ts.measure}
	return p
}

// renderGrid re-renders the whole grid. A virtualized grid starts again at
// the top, so row measurements of the previous ordering are dropped.
func (s *Server) renderGrid(w http.ResponseWriter, r *http.Request, ts *tableState) {
	height, width := ts.viewport()
	if ts.rows != nil {
		ts.rows.ResetMeasurements()
	}
	render(w, r, templates.Grid(s.gridProps(ts, scroll{viewport: height, xviewport: width})))
}

// update applies fn to the request's table and answers with the grid.
func (s *Server) update(w http.ResponseWriter, r *http.Request, fn func(c core.Controller) error) {
	ts := tableFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", core.ErrInvalidFilter, err), http.StatusBadRequest)
		return
	}
	if err := fn(ts.ctrl); err != nil {
		fail(w, r, err)
		return
	}
	s.renderGrid(w, r, ts)
}

// loadPage starts loading the current page of a paged table. Fast loads
// finish before the grid renders; slower ones keep the previous rows on
// screen with the loading flag set while the grid polls.
func (s *Server) loadPage(r *http.Request, ts *tableState) {
	if !ts.ctrl.Manual() {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.cfg.Server.RequestTimeout)
	done := ts.ctrl.RefreshAsync(ctx)
	result := make(chan struct{})
	logger := requestLogger(r)
	go func() {
		defer cancel()
		defer close(result)
		if err := <-done; err != nil {
			logger.Warn("page load failed", "error", err)
		}
	}()

	timer := time.NewTimer(loadWait)
	defer timer.Stop()
	select {
	case <-result:
	case <-timer.C:
	}
}

func (s *Server) handleTablePage(w http.ResponseWriter, r *http.Request) {
	ts := tableFrom(r.Context())
	height, width := ts.viewport()
	render(w, r, templates.TablePage(s.gridProps(ts, scroll{viewport: height, xviewport: width})))
}

// handleGrid renders the grid partial; loading grids poll it.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	height, width := tableFrom(r.Context()).viewport()
	render(w, r, templates.Grid(s.gridProps(tableFrom(r.Context()), scroll{viewport: height, xviewport: width})))
}

// handleWindow renders the visible slice of a virtualized table.
func (s *Server) handleWindow(w http.ResponseWriter, r *http.Request) {
	ts := tableFrom(r.Context())
	if !ts.info.Virtualized {
		fail(w, r, fmt.Errorf("%w: table %s is paginated", core.ErrNotAllowed, ts.info.Key))
		return
	}
	render(w, r, templates.WindowTable(s.gridProps(ts, parseScroll(r, ts))))
}

func (s *Server) handleGlobalFilter(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, func(c core.Controller) error {
		c.SetGlobalFilter(r.PostForm.Get("q"))
		return nil
	})
}

func (s *Server) handleColumnFilter(w http.ResponseWriter, r *http.Request) {
	col := chi.URLParam(r, "col")
	s.update(w, r, func(c core.Controller) error {
		v, err := c.ParseColumnFilter(col, r.PostForm)
		if err != nil {
			return err
		}
		return c.SetColumnFilter(col, v)
	})
}

func (s *Server) handleClearColumnFilter(w http.ResponseWriter, r *http.Request) {
	col := chi.URLParam(r, "col")
	s.update(w, r, func(c core.Controller) error {
		return c.RemoveColumnFilter(col)
	})
}

func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, func(c core.Controller) error {
		c.ResetColumnFilters()
		return nil
	})
}

// handleSort cycles the column's sort direction. multi adds the column to
// the existing sort instead of replacing it.
func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	col := chi.URLParam(r, "col")
	s.update(w, r, func(c core.Controller) error {
		multi, _ := strconv.ParseBool(r.PostForm.Get("multi"))
		return c.ToggleSorting(col, multi)
	})
}

// handlePage changes the page size and/or page index, then loads the page
// of a paged table.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	ts := tableFrom(r.Context())
	s.update(w, r, func(c core.Controller) error {
		if v := r.PostForm.Get("size"); v != "" {
			size, err := strconv.Atoi(v)
			if err != nil || size <= 0 {
				return fmt.Errorf("%w: page size %q", core.ErrInvalidFilter, v)
			}
			c.SetPageSize(size)
		}
		if v := r.PostForm.Get("index"); v != "" {
			index, err := strconv.Atoi(v)
			if err != nil || index < 0 {
				return fmt.Errorf("%w: page index %q", core.ErrInvalidFilter, v)
			}
			c.SetPageIndex(index)
		}
		s.loadPage(r, ts)
		return nil
	})
}

func (s *Server) handleVisibility(w http.ResponseWriter, r *http.Request) {
	col := chi.URLParam(r, "col")
	s.update(w, r, func(c core.Controller) error {
		return c.ToggleColumnVisibility(col)
	})
}

func (s *Server) handlePin(w http.ResponseWriter, r *http.Request) {
	col := chi.URLParam(r, "col")
	s.update(w, r, func(c core.Controller) error {
		return c.PinColumn(col, core.ParsePinSide(r.PostForm.Get("side")))
	})
}

// handleMove places the dragged column at the position of the column it was
// dropped on.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, func(c core.Controller) error {
		return c.MoveColumn(r.PostForm.Get("active"), r.PostForm.Get("over"))
	})
}

// handleColumnOrder replaces the column order with the posted col values.
// Posting none restores the defined order.
func (s *Server) handleColumnOrder(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, func(c core.Controller) error {
		order := r.PostForm["col"]
		if len(order) == 0 {
			return c.ResetColumnOrder()
		}
		return c.SetColumnOrder(order)
	})
}

func (s *Server) handleSelectRow(w http.ResponseWriter, r *http.Request) {
	rowID := chi.URLParam(r, "rowID")
	s.update(w, r, func(c core.Controller) error {
		return c.ToggleRowSelected(rowID)
	})
}

func (s *Server) handleSelectPage(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, func(c core.Controller) error {
		selected, _ := strconv.ParseBool(r.PostForm.Get("selected"))
		c.ToggleAllPageRowsSelected(selected)
		return nil
	})
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, func(c core.Controller) error {
		c.ResetRowSelection()
		return nil
	})
}

func (s *Server) handleSelectionMode(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, func(c core.Controller) error {
		on := c.ToggleSelection()
		requestLogger(r).Debug("selection mode changed", "selecting", on)
		return nil
	})
}
