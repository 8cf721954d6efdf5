package demo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/datagrid/internal/core"
	"github.com/JonMunkholm/datagrid/internal/source"
)

// peopleTable is the database table backing KeyPeopleDB.
const peopleTable = "people"

var peopleColumns = []string{
	"id", "first_name", "last_name", "gender", "job_type", "address",
	"locality", "age", "visits", "last_update", "status",
}

const createPeopleSQL = `CREATE TABLE IF NOT EXISTS people (
	id          TEXT PRIMARY KEY,
	first_name  TEXT NOT NULL,
	last_name   TEXT NOT NULL,
	gender      TEXT NOT NULL,
	job_type    TEXT NOT NULL,
	address     TEXT NOT NULL DEFAULT '',
	locality    TEXT NOT NULL,
	age         INTEGER NOT NULL DEFAULT 0,
	visits      INTEGER NOT NULL DEFAULT 0,
	last_update TIMESTAMPTZ NOT NULL,
	status      TEXT NOT NULL
)`

// SetupPostgres creates the people table and seeds it with rows when empty.
func SetupPostgres(ctx context.Context, pool *pgxpool.Pool, rows []Person) error {
	if _, err := pool.Exec(ctx, createPeopleSQL); err != nil {
		return fmt.Errorf("create people table: %w", err)
	}

	var count int64
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM people").Scan(&count); err != nil {
		return fmt.Errorf("count people: %w", err)
	}
	if count > 0 {
		slog.Info("people table already seeded", "rows", count)
		return nil
	}

	copied, err := pool.CopyFrom(ctx, pgx.Identifier{peopleTable}, peopleColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return personArgs(rows[i]), nil
		}),
	)
	if err != nil {
		return fmt.Errorf("seed people: %w", err)
	}
	slog.Info("people table seeded", "rows", copied)
	return nil
}

func personArgs(p Person) []any {
	return []any{
		p.ID, p.FirstName, p.LastName, p.Gender, p.JobType, p.Address,
		p.Locality, p.Age, p.Visits, p.LastUpdate, p.Status,
	}
}

// dbMutations writes row changes to the people table.
func dbMutations(pool *pgxpool.Pool) mutations {
	return mutations{
		add: func(ctx context.Context, p Person) error {
			_, err := pool.Exec(ctx, `INSERT INTO people (`+
				`id, first_name, last_name, gender, job_type, address, locality, age, visits, last_update, status`+
				`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
				personArgs(p)...)
			if err != nil {
				return fmt.Errorf("insert person: %w", err)
			}
			return nil
		},
		update: func(ctx context.Context, p Person) error {
			tag, err := pool.Exec(ctx, `UPDATE people SET `+
				`first_name = $2, last_name = $3, gender = $4, job_type = $5, address = $6, `+
				`locality = $7, age = $8, visits = $9, last_update = $10, status = $11 `+
				`WHERE id = $1`,
				personArgs(p)...)
			if err != nil {
				return fmt.Errorf("update person: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w: %s", core.ErrUnknownRow, p.ID)
			}
			return nil
		},
		delete: func(ctx context.Context, rows []Person) error {
			ids := make([]string, len(rows))
			for i, r := range rows {
				ids[i] = r.ID
			}
			if _, err := pool.Exec(ctx, "DELETE FROM people WHERE id = ANY($1)", ids); err != nil {
				return fmt.Errorf("delete people: %w", err)
			}
			return nil
		},
	}
}

// RegisterPostgres registers a paged table served from the people table.
// Call SetupPostgres first.
func RegisterPostgres(pool *pgxpool.Pool, opts Options) error {
	opts = opts.withDefaults()
	fetch, err := source.Postgres[Person](pool, source.PostgresOptions{
		Table:   peopleTable,
		Columns: peopleColumns,
		OrderBy: []string{"-last_update", "id"},
	})
	if err != nil {
		return err
	}
	paged := source.NewPaged(fetch, source.PagedOptions{
		Name:      KeyPeopleDB,
		CacheSize: opts.CacheSize,
		TTL:       opts.CacheTTL,
		Recorder:  opts.Observer,
	})

	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:         KeyPeopleDB,
			Group:       Group,
			Label:       "People (Postgres)",
			Description: "Pages read from Postgres, newest update first, and cached.",
		},
		New: func() (core.Controller, error) {
			return pagedTable(KeyPeopleDB, paged, dbMutations(pool), opts)
		},
	})
	return nil
}
