package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gustavobragaia/job-application/internal/kanban"
)

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Insert(ctx context.Context, a *kanban.Application) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO job_applications
			(id, user_id, company, role, job_url, location, notes, currency,
			 salary_min, salary_max, current_status, applied_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.OwnerID, a.Company, a.Role,
		nullString(a.JobURL), nullString(a.Location), nullString(a.Notes), nullString(a.Currency),
		nullInt(a.SalaryMin), nullInt(a.SalaryMax),
		string(a.CurrentStatus), nullTime(a.AppliedAt),
		formatTime(a.CreatedAt), formatTime(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// FindOwned and LockOwned are the same query: the transaction already holds
// the database write lock.
func (t *sqlTx) FindOwned(ctx context.Context, ownerID, id string) (*kanban.Application, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+appColumns+` FROM job_applications WHERE id = ? AND user_id = ?`,
		id, ownerID,
	)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kanban.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find application: %w", err)
	}
	return app, nil
}

func (t *sqlTx) LockOwned(ctx context.Context, ownerID, id string) (*kanban.Application, error) {
	return t.FindOwned(ctx, ownerID, id)
}

func (t *sqlTx) Update(ctx context.Context, a *kanban.Application) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE job_applications
		SET company = ?, role = ?, job_url = ?, location = ?, notes = ?, currency = ?,
		    salary_min = ?, salary_max = ?, current_status = ?, applied_at = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		a.Company, a.Role,
		nullString(a.JobURL), nullString(a.Location), nullString(a.Notes), nullString(a.Currency),
		nullInt(a.SalaryMin), nullInt(a.SalaryMax),
		string(a.CurrentStatus), nullTime(a.AppliedAt), formatTime(a.UpdatedAt),
		a.ID, a.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	return expectOneRow(res)
}

func (t *sqlTx) Delete(ctx context.Context, ownerID, id string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM job_applications WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	return expectOneRow(res)
}

func (t *sqlTx) AppendHistory(ctx context.Context, e kanban.HistoryEntry) error {
	var from sql.NullString
	if e.FromStatus != nil {
		from = sql.NullString{String: string(*e.FromStatus), Valid: true}
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO status_history (application_id, from_status, to_status, reason, changed_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.ApplicationID, from, string(e.ToStatus), nullString(e.Reason), formatTime(e.ChangedAt),
	)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (t *sqlTx) History(ctx context.Context, applicationID string) ([]kanban.HistoryEntry, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT application_id, from_status, to_status, reason, changed_at
		FROM status_history
		WHERE application_id = ?
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
			e         kanban.HistoryEntry
			from      sql.NullString
			to        string
			reason    sql.NullString
			changedAt string
		)
		if err := rows.Scan(&e.ApplicationID, &from, &to, &reason, &changedAt); err != nil {
			return nil, fmt.Errorf("list history scan: %w", err)
		}
		if from.Valid {
			st := kanban.Status(from.String)
			e.FromStatus = &st
		}
		e.ToStatus = kanban.Status(to)
		e.Reason = stringPtr(reason)
		if e.ChangedAt, err = parseTime(changedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return kanban.ErrNotFound
	}
	return nil
}
