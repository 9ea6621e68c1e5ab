package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gustavobragaia/job-application/internal/kanban"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

const appColumns = `id, user_id, company, role, job_url, location, notes, currency,
	salary_min, salary_max, current_status, applied_at, created_at, updated_at`

var sortColumns = map[kanban.SortField]string{
	kanban.SortCreatedAt: "created_at",
	kanban.SortUpdatedAt: "updated_at",
	kanban.SortAppliedAt: "applied_at",
}

func listWhere(ownerID string, f kanban.ListFilter) (string, []any) {
	clauses := []string{"user_id = ?"}
	args := []any{ownerID}

	if f.Status != nil {
		clauses = append(clauses, "current_status = ?")
		args = append(args, string(*f.Status))
	}
	if f.Company != "" {
		clauses = append(clauses, `lower(company) LIKE ? ESCAPE '\'`)
		args = append(args, contains(f.Company))
	}
	if f.Role != "" {
		clauses = append(clauses, `lower(role) LIKE ? ESCAPE '\'`)
		args = append(args, contains(f.Role))
	}
	if f.Query != "" {
		p := contains(f.Query)
		clauses = append(clauses, `(lower(company) LIKE ? ESCAPE '\' OR lower(role) LIKE ? ESCAPE '\' OR lower(coalesce(location, '')) LIKE ? ESCAPE '\')`)
		args = append(args, p, p, p)
	}
	return strings.Join(clauses, " AND "), args
}

func contains(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func nullTime(p *time.Time) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*p), Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

type scanner interface {
	Scan(dest ...any) error
}

func scanApplication(row scanner) (*kanban.Application, error) {
	var (
		a                        kanban.Application
		jobURL, location, notes  sql.NullString
		currency, appliedAt      sql.NullString
		salaryMin, salaryMax     sql.NullInt64
		status, created, updated string
	)
	if err := row.Scan(
		&a.ID, &a.OwnerID, &a.Company, &a.Role, &jobURL, &location, &notes, &currency,
		&salaryMin, &salaryMax, &status, &appliedAt, &created, &updated,
	); err != nil {
		return nil, err
	}

	a.JobURL = stringPtr(jobURL)
	a.Location = stringPtr(location)
	a.Notes = stringPtr(notes)
	a.Currency = stringPtr(currency)
	if salaryMin.Valid {
		v := salaryMin.Int64
		a.SalaryMin = &v
	}
	if salaryMax.Valid {
		v := salaryMax.Int64
		a.SalaryMax = &v
	}
	a.CurrentStatus = kanban.Status(status)

	var err error
	if appliedAt.Valid {
		t, err := parseTime(appliedAt.String)
		if err != nil {
			return nil, err
		}
		a.AppliedAt = &t
	}
	if a.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &a, nil
}

func collectApplications(rows *sql.Rows) ([]kanban.Application, error) {
	apps := make([]kanban.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}
