package web

// handlers_rows.go serves row level actions: clicks, the context menu and
// its actions, the confirmed delete flow and the add/edit forms. Menus,
// confirmations and forms render into the modal area; completed changes
// answer with the re-rendered grid.

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/datagrid/internal/core"
	"github.com/JonMunkholm/datagrid/internal/form"
	"github.com/JonMunkholm/datagrid/internal/web/templates"
)

// handleRowClick passes a row click to the table's click handler.
func (s *Server) handleRowClick(w http.ResponseWriter, r *http.Request) {
	ts := tableFrom(r.Context())
	if err := ts.ctrl.ClickRow(r.Context(), chi.URLParam(r, "rowID")); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMenu renders a row's context menu. In selection mode the menu is
// empty.
func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	ts := tableFrom(r.Context())
	rowID := chi.URLParam(r, "rowID")
	items, err := ts.ctrl.ContextMenu(rowID)
	if err != nil {
		fail(w, r, err)
		return
	}
	render(w, r, templates.Menu(ts.info.Key, rowID, items))
}

// handleAction runs a caller supplied menu action on a row.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	ts := tableFrom(r.Context())
	rowID, name := chi.URLParam(r, "rowID"), chi.URLParam(r, "name")
	if err := ts.ctrl.RunAction(r.Context(), rowID, name); err != nil {
		fail(w, r, err)
		return
	}
	requestLogger(r).Debug("row action run", "row", rowID, "action", name)
	s.renderGrid(w, r, ts)
}

// handleRequestDelete asks for confirmation before deleting. With a row
// value that row is deleted, otherwise the current selection.
func (s *Server) handleRequestDelete(w http.ResponseWriter, r *http.Request) {
	ts := tableFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		fail(w, r, fmt.Errorf("delete request: %w", err))
		return
	}

	var ids []string
	if id := r.PostForm.Get("row"); id != "" {
		ids = append(ids, id)
	}
	pending, err := ts.ctrl.RequestDelete(ids...)
	if err != nil {
		fail(w, r, err)
		return
	}
	render(w, r, templates.ConfirmDialog(ts.info.Key, pending))
}

// handleConfirmDelete carries out a confirmed delete.
func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	ts := tableFrom(r.Context())
	n, err := ts.ctrl.ConfirmDelete(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		fail(w, r, err)
		return
	}
	requestLogger(r).Info("rows deleted", "count", n)
	s.renderGrid(w, r, ts)
}

// handleCancelDelete drops a pending delete and closes the dialog.
func (s *Server) handleCancelDelete(w http.ResponseWriter, r *http.Request) {
	ts := tableFrom(r.Context())
	if !ts.ctrl.CancelDelete(chi.URLParam(r, "token")) {
		requestLogger(r).Debug("delete confirmation already gone")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleAddForm(w http.ResponseWriter, r *http.Request) {
	ts := tableFrom(r.Context())
	f, values := ts.ctrl.AddForm()
	if f == nil {
		fail(w, r, fmt.Errorf("add form: %w", errNoForm))
		return
	}
	title, desc := ts.ctrl.FormInfo(false)
	render(w, r, templates.Form(templates.FormProps{
		TableID:     ts.info.Key,
		Title:       title,
		Description: desc,
		Action:      templates.TablePath(ts.info.Key, "rows"),
		Fields:      f.Fields(),
		Values:      values,
	}))
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	ts := tableFrom(r.Context())
	rowID := chi.URLParam(r, "rowID")
	f, values, err := ts.ctrl.EditForm(rowID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if f == nil {
		fail(w, r, fmt.Errorf("edit form: %w", errNoForm))
		return
	}
	title, desc := ts.ctrl.FormInfo(true)
	render(w, r, templates.Form(templates.FormProps{
		TableID:     ts.info.Key,
		Title:       title,
		Description: desc,
		Action:      templates.TablePath(ts.info.Key, "rows", rowID),
		Fields:      f.Fields(),
		Values:      values,
	}))
}

func (s *Server) handleSubmitAdd(w http.ResponseWriter, r *http.Request) {
	ts := tableFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		fail(w, r, fmt.Errorf("add row: %w", err))
		return
	}
	values, err := ts.ctrl.SubmitAdd(r.Context(), r.PostForm)
	s.finishSubmit(w, r, false, templates.TablePath(ts.info.Key, "rows"), values, err)
}

func (s *Server) handleSubmitEdit(w http.ResponseWriter, r *http.Request) {
	ts := tableFrom(r.Context())
	rowID := chi.URLParam(r, "rowID")
	if err := r.ParseForm(); err != nil {
		fail(w, r, fmt.Errorf("edit row: %w", err))
		return
	}
	values, err := ts.ctrl.SubmitEdit(r.Context(), rowID, r.PostForm)
	s.finishSubmit(w, r, true, templates.TablePath(ts.info.Key, "rows", rowID), values, err)
}

// finishSubmit answers a form submission. Field errors re-render the form
// with the submitted values; success closes the form and refreshes the grid.
func (s *Server) finishSubmit(w http.ResponseWriter, r *http.Request, edit bool, action string, values form.Values, err error) {
	ts := tableFrom(r.Context())

	var fieldErrs form.FieldErrors
	if errors.As(err, &fieldErrs) {
		requestLogger(r).Debug("form rejected", "fields", len(fieldErrs))
		f, _ := ts.ctrl.AddForm()
		if edit {
			f, _, _ = ts.ctrl.EditForm(chi.URLParam(r, "rowID"))
		}
		if f == nil {
			fail(w, r, err)
			return
		}
		title, desc := ts.ctrl.FormInfo(edit)
		writeHTML(w, r, http.StatusUnprocessableEntity, templates.Form(templates.FormProps{
			TableID:     ts.info.Key,
			Title:       title,
			Description: desc,
			Action:      action,
			Fields:      f.Fields(),
			Values:      values,
			Errors:      fieldErrs,
		}))
		return
	}
	if err != nil {
		fail(w, r, err)
		return
	}

	w.Header().Set("HX-Retarget", templates.GridSelector(ts.info.Key))
	w.Header().Set("HX-Reswap", "outerHTML")
	s.renderGrid(w, r, ts)
	render(w, r, templates.ClearModal())
}

// errNoForm is reported when a table has no form configured.
var errNoForm = fmt.Errorf("no form configured: %w", core.ErrNoHandler)
