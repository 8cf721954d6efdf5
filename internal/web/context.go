package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/datagrid/internal/logging"
)

type ctxKey int

const tableStateKey ctxKey = iota

// withTableState stores the resolved table for the handlers below it.
func withTableState(ctx context.Context, ts *tableState) context.Context {
	return context.WithValue(ctx, tableStateKey, ts)
}

// tableFrom returns the table resolved by the tableSession middleware.
func tableFrom(ctx context.Context) *tableState {
	ts, _ := ctx.Value(tableStateKey).(*tableState)
	return ts
}

// requestLogger returns a logger carrying the request id, table and client.
func requestLogger(r *http.Request) *slog.Logger {
	return logging.WithTable(r.Context(), chi.URLParam(r, "tableID")).With(
		"ip", r.RemoteAddr,
		"user_agent", r.UserAgent(),
	)
}
