// Package postgres is the production kanban.Store backed by pgx/v5.
//
// Status changes rely on row locks: LockOwned issues SELECT … FOR UPDATE
// inside a READ COMMITTED transaction, so a concurrent writer for the same
// application blocks until the first commits and then reads the new status.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gustavobragaia/job-application/internal/kanban"
)

var _ kanban.Store = (*Store)(nil)

// Store is a PostgreSQL implementation of kanban.Store.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{pool: pool, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Atomic runs fn in a READ COMMITTED transaction. Errors returned by fn are
// passed through unchanged.
func (s *Store) Atomic(ctx context.Context, fn func(tx kanban.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Warn("rollback failed", "err", rbErr)
			}
		}
	}()

	if err = fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// List returns one page of applications plus the unpaged total.
func (s *Store) List(ctx context.Context, ownerID string, f kanban.ListFilter) ([]kanban.Application, int, error) {
	where, args := listWhere(ownerID, f)

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM job_applications a WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM job_applications a WHERE %s ORDER BY %s %s NULLS LAST, a.id LIMIT $%d OFFSET $%d`,
		appColumns, where, sortColumns[f.SortBy], orderKeyword(f.Order), len(args)+1, len(args)+2)
	rows, err := s.pool.Query(ctx, query, append(args, f.Limit, f.Offset())...)
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
	rows, err := s.pool.Query(ctx,
		`SELECT current_status::text, COUNT(*)
		 FROM job_applications
		 WHERE user_id = $1
		 GROUP BY current_status`,
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
	rows, err := s.pool.Query(ctx,
		`SELECT `+appColumns+`
		 FROM job_applications a
		 WHERE a.current_status NOT IN ('OFFER', 'REJECTED')
		   AND a.updated_at < $1
		 ORDER BY a.updated_at
		 LIMIT $2`,
		before, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list stale: %w", err)
	}
	defer rows.Close()
	return collectApplications(rows)
}
