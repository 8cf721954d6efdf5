package web

// errors.go turns handler errors into responses. The technical error is
// logged with the request id; the client gets the mapped user message as an
// HTMX alert in the modal area, a JSON body or a full error page.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/datagrid/internal/core"
	"github.com/JonMunkholm/datagrid/internal/export"
	"github.com/JonMunkholm/datagrid/internal/form"
	"github.com/JonMunkholm/datagrid/internal/web/templates"
)

// errRateLimited is reported when a client exceeds its request budget.
var errRateLimited = errors.New("rate limit exceeded")

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// errorStatuses lists the status for each known error; first match wins.
var errorStatuses = []struct {
	target error
	status int
}{
	{ErrSessionNotFound, http.StatusGone},
	{core.ErrTableNotFound, http.StatusNotFound},
	{core.ErrUnknownRow, http.StatusNotFound},
	{core.ErrUnknownColumn, http.StatusNotFound},
	{core.ErrConfirmationNotFound, http.StatusNotFound},
	{core.ErrNoHandler, http.StatusNotFound},
	{form.ErrValidation, http.StatusUnprocessableEntity},
	{core.ErrInvalidFilter, http.StatusBadRequest},
	{core.ErrNotAllowed, http.StatusBadRequest},
	{core.ErrNothingToDelete, http.StatusBadRequest},
	{core.ErrNothingToExport, http.StatusBadRequest},
	{export.ErrUnknownFormat, http.StatusBadRequest},
	{core.ErrTooManyExports, http.StatusServiceUnavailable},
	{errRateLimited, http.StatusTooManyRequests},
}

// statusFor picks the HTTP status for an error, 500 when unknown.
func statusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.target) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// fail responds with the status derived from err.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, err, statusFor(err))
}

func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := core.MapError(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError || !core.IsKnownError(err) {
		level = slog.LevelError
	}
	requestLogger(r).Log(r.Context(), level, "request error",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"code", msg.Code,
		"error", err,
	)

	switch {
	case isHTMX(r):
		// Alerts block the page until dismissed.
		w.Header().Set("HX-Retarget", "#modal")
		w.Header().Set("HX-Reswap", "innerHTML")
		writeHTML(w, r, status, templates.ErrorAlert(msg.Message, msg.Action, msg.Code))
	case wantsJSON(r):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		}); err != nil {
			requestLogger(r).Debug("error body not written", "error", err)
		}
	default:
		writeHTML(w, r, status, templates.ErrorPage(msg.Message, msg.Action, msg.Code))
	}
}

// writeHTML renders c with an explicit status.
func writeHTML(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		requestLogger(r).Error("render failed", "error", err)
	}
}

// isHTMX reports whether the request was sent by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the client asked for or sent JSON.
func wantsJSON(r *http.Request) bool {
	for _, h := range []string{r.Header.Get("Accept"), r.Header.Get("Content-Type")} {
		for _, part := range strings.Split(h, ",") {
			if mt, _, err := mime.ParseMediaType(part); err == nil && mt == "application/json" {
				return true
			}
		}
	}
	return false
}
