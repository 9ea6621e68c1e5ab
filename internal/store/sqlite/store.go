// Package sqlite is a kanban.Store on a local SQLite file, used for
// single-node runs and for tests. The connection from db.OpenSQLite is
// limited to one and starts every transaction with BEGIN IMMEDIATE, so each
// Atomic call holds the database write lock from its first read.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gustavobragaia/job-application/internal/db"
	"github.com/gustavobragaia/job-application/internal/kanban"
)

var _ kanban.Store = (*Store)(nil)

// Store is a SQLite implementation of kanban.Store.
type Store struct {
	DB *sql.DB
}

// New wraps an open, migrated database.
func New(conn *sql.DB) *Store { return &Store{DB: conn} }

// Open opens the file at path and applies the migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	conn, err := db.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateSQLite(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return New(conn), nil
}

// Close closes the database.
func (s *Store) Close() error { return s.DB.Close() }

// Atomic runs fn in one transaction; errors from fn are passed through.
func (s *Store) Atomic(ctx context.Context, fn func(tx kanban.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&sqlTx{tx: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// List returns one page of applications plus the unpaged total.
func (s *Store) List(ctx context.Context, ownerID string, f kanban.ListFilter) ([]kanban.Application, int, error) {
	where, args := listWhere(ownerID, f)

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM job_applications WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	col := sortColumns[f.SortBy]
	dir := "DESC"
	if f.Order == kanban.OrderAsc {
		dir = "ASC"
	}
	query := fmt.Sprintf(`SELECT %s FROM job_applications WHERE %s ORDER BY %s IS NULL, %s %s, id LIMIT ? OFFSET ?`,
		appColumns, where, col, col, dir)
	rows, err := s.DB.QueryContext(ctx, query, append(args, f.Limit, f.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps, err := collectApplications(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}
	return apps, total, nil
}

// CountByStatus groups the owner's applications by status.
func (s *Store) CountByStatus(ctx context.Context, ownerID string) (map[kanban.Status]int, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT current_status, COUNT(*) FROM job_applications WHERE user_id = ? GROUP BY current_status`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[kanban.Status]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("count by status scan: %w", err)
		}
		counts[kanban.Status(status)] = n
	}
	return counts, rows.Err()
}

// ListStale returns non-terminal applications untouched since before.
func (s *Store) ListStale(ctx context.Context, before time.Time, limit int) ([]kanban.Application, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+appColumns+`
		 FROM job_applications
		 WHERE current_status NOT IN ('OFFER', 'REJECTED')
		   AND updated_at < ?
		 ORDER BY updated_at
		 LIMIT ?`,
		formatTime(before), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list stale: %w", err)
	}
	defer rows.Close()
	return collectApplications(rows)
}
