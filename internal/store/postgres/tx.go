package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gustavobragaia/job-application/internal/kanban"
)

// pgTx implements kanban.Tx on top of a pgx transaction.
type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Insert(ctx context.Context, a *kanban.Application) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO job_applications
		   (id, user_id, company, role, job_url, location, notes, currency,
		    salary_min, salary_max, current_status, applied_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::application_status, $12, $13, $14)`,
		a.ID, a.OwnerID, a.Company, a.Role, a.JobURL, a.Location, a.Notes, a.Currency,
		a.SalaryMin, a.SalaryMax, string(a.CurrentStatus), a.AppliedAt, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (t *pgTx) FindOwned(ctx context.Context, ownerID, id string) (*kanban.Application, error) {
	return t.findOwned(ctx, ownerID, id, "")
}

func (t *pgTx) LockOwned(ctx context.Context, ownerID, id string) (*kanban.Application, error) {
	return t.findOwned(ctx, ownerID, id, " FOR UPDATE")
}

func (t *pgTx) findOwned(ctx context.Context, ownerID, id, lock string) (*kanban.Application, error) {
	// A malformed id can never match a UUID column; treat it as absent.
	if !isUUID(id) {
		return nil, kanban.ErrNotFound
	}
	row := t.tx.QueryRow(ctx,
		`SELECT `+appColumns+` FROM job_applications a WHERE a.id = $1 AND a.user_id = $2`+lock,
		id, ownerID,
	)
	app, err := scanApplication(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, kanban.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find application: %w", err)
	}
	return app, nil
}

func (t *pgTx) Update(ctx context.Context, a *kanban.Application) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE job_applications
		 SET company        = $1,
		     role           = $2,
		     job_url        = $3,
		     location       = $4,
		     notes          = $5,
		     currency       = $6,
		     salary_min     = $7,
		     salary_max     = $8,
		     current_status = $9::application_status,
		     applied_at     = $10,
		     updated_at     = $11
		 WHERE id = $12 AND user_id = $13`,
		a.Company, a.Role, a.JobURL, a.Location, a.Notes, a.Currency,
		a.SalaryMin, a.SalaryMax, string(a.CurrentStatus), a.AppliedAt, a.UpdatedAt,
		a.ID, a.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return kanban.ErrNotFound
	}
	return nil
}

func (t *pgTx) Delete(ctx context.Context, ownerID, id string) error {
	if !isUUID(id) {
		return kanban.ErrNotFound
	}
	tag, err := t.tx.Exec(ctx, `DELETE FROM job_applications WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return kanban.ErrNotFound
	}
	return nil
}

func (t *pgTx) AppendHistory(ctx context.Context, e kanban.HistoryEntry) error {
	var from *string
	if e.FromStatus != nil {
		s := string(*e.FromStatus)
		from = &s
	}
	_, err := t.tx.Exec(ctx,
		`INSERT INTO status_history (application_id, from_status, to_status, reason, changed_at)
		 VALUES ($1, $2::application_status, $3::application_status, $4, $5)`,
		e.ApplicationID, from, string(e.ToStatus), e.Reason, e.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (t *pgTx) History(ctx context.Context, applicationID string) ([]kanban.HistoryEntry, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT application_id::text, from_status::text, to_status::text, reason, changed_at
		 FROM status_history
		 WHERE application_id = $1
		 ORDER BY changed_at DESC, id DESC`,
		applicationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	entries := make([]kanban.HistoryEntry, 0)
	for rows.Next() {
		var (
			e    kanban.HistoryEntry
			from *string
			to   string
		)
		if err := rows.Scan(&e.ApplicationID, &from, &to, &e.Reason, &e.ChangedAt); err != nil {
			return nil, fmt.Errorf("list history scan: %w", err)
		}
		if from != nil {
			st := kanban.Status(*from)
			e.FromStatus = &st
		}
		e.ToStatus = kanban.Status(to)
		e.ChangedAt = e.ChangedAt.UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
