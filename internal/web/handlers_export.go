package web

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/datagrid/internal/core"
	"github.com/JonMunkholm/datagrid/internal/export"
	"github.com/JonMunkholm/datagrid/internal/metrics"
)

// handleExport downloads the table's rows, or the selected rows with
// scope=selected. Tables with an export callback receive the records
// instead and the response is empty. HTMX requests are checked and then
// redirected to the download, so failures show up as alerts.
//
// Query params:
//   - format: xlsx (default), csv, json or yaml
//   - scope: all (default) or selected
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ts := tableFrom(r.Context())
	logger := requestLogger(r)

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		fail(w, r, err)
		return
	}
	scope := core.ParseExportScope(r.URL.Query().Get("scope"))

	cfg, ok := ts.ctrl.ExportConfig()
	if !ok {
		fail(w, r, fmt.Errorf("export: %w", core.ErrNoHandler))
		return
	}
	data, err := ts.ctrl.ExportDataset(scope)
	if err != nil {
		fail(w, r, err)
		return
	}

	delivered, err := ts.ctrl.DeliverExport(r.Context(), data)
	if delivered {
		if err != nil {
			s.metrics.Export("callback", metrics.OutcomeError, 0)
			fail(w, r, err)
			return
		}
		s.metrics.Export("callback", metrics.OutcomeOK, data.Len())
		logger.Info("export delivered", "scope", scope, "rows", data.Len())
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if isHTMX(r) {
		w.Header().Set("HX-Redirect", r.URL.RequestURI())
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := s.exports.Acquire(r.Context()); err != nil {
		s.metrics.Export(format, metrics.OutcomeRejected, 0)
		fail(w, r, err)
		return
	}
	defer s.exports.Release()

	filename := export.Filename(cfg.Filename, format)
	var buf bytes.Buffer
	if err := export.Write(&buf, format, filename, data); err != nil {
		s.metrics.Export(format, metrics.OutcomeError, 0)
		fail(w, r, err)
		return
	}
	s.metrics.Export(format, metrics.OutcomeOK, data.Len())
	logger.Info("export written", "format", format, "scope", scope, "rows", data.Len(), "bytes", buf.Len())

	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		logger.Warn("export write interrupted", "error", err)
	}
}

// handleExportColumn leaves a column out of exports, or takes it back in.
func (s *Server) handleExportColumn(w http.ResponseWriter, r *http.Request) {
	col := chi.URLParam(r, "col")
	s.update(w, r, func(c core.Controller) error {
		return c.ToggleExportColumn(col)
	})
}
