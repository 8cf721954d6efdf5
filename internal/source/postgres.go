package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/datagrid/internal/core"
)

// Querier is the subset of *pgxpool.Pool used to read pages.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresOptions names the table and columns a page is read from.
type PostgresOptions struct {
	Table   string   // May be schema qualified ("public.people")
	Columns []string // Selected in order; scanned into T by `db` tag or field name
	OrderBy []string // Stable ordering; defaults to the first column
}

var ErrNoColumns = errors.New("postgres source needs at least one column")

// quoteIdentifier quotes a SQL identifier to prevent injection.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteQualified quotes each dot separated part of a table name.
func quoteQualified(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = quoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// PageQueries returns the count and page statements for opts. The page
// statement takes LIMIT and OFFSET as $1 and $2.
func PageQueries(opts PostgresOptions) (count, page string, err error) {
	if strings.TrimSpace(opts.Table) == "" {
		return "", "", fmt.Errorf("postgres source: table is required")
	}
	if len(opts.Columns) == 0 {
		return "", "", ErrNoColumns
	}

	table := quoteQualified(opts.Table)
	cols := make([]string, len(opts.Columns))
	for i, c := range opts.Columns {
		cols[i] = quoteIdentifier(c)
	}

	order := opts.OrderBy
	if len(order) == 0 {
		order = opts.Columns[:1]
	}
	orderParts := make([]string, len(order))
	for i, o := range order {
		col, dir := o, "asc"
		if name, ok := strings.CutPrefix(o, "-"); ok {
			col, dir = name, "desc"
		}
		orderParts[i] = quoteIdentifier(col) + " " + dir
	}

	count = fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	page = fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY %s LIMIT $1 OFFSET $2",
		strings.Join(cols, ", "),
		table,
		strings.Join(orderParts, ", "),
	)
	return count, page, nil
}

// Postgres returns a FetchFunc reading pages of T from a table. A leading
// "-" on an OrderBy column sorts it descending.
func Postgres[T any](db Querier, opts PostgresOptions) (FetchFunc[T], error) {
	countSQL, pageSQL, err := PageQueries(opts)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, pageIndex, pageSize int) (core.Page[T], error) {
		if err := checkPage(pageIndex, pageSize); err != nil {
			return core.Page[T]{}, err
		}

		var total int64
		if err := db.QueryRow(ctx, countSQL).Scan(&total); err != nil {
			return core.Page[T]{}, fmt.Errorf("count rows: %w", err)
		}

		rows, err := db.Query(ctx, pageSQL, pageSize, pageIndex*pageSize)
		if err != nil {
			return core.Page[T]{}, fmt.Errorf("query rows: %w", err)
		}
		items, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
		if err != nil {
			return core.Page[T]{}, fmt.Errorf("read rows: %w", err)
		}
		return core.Page[T]{Rows: items, RowCount: int(total)}, nil
	}, nil
}
