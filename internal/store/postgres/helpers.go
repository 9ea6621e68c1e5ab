package postgres

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gustavobragaia/job-application/internal/kanban"
)

// appColumns is the projection shared by every application query; the table
// must be aliased as "a".
const appColumns = `a.id::text, a.user_id, a.company, a.role, a.job_url, a.location, a.notes,
	a.currency, a.salary_min, a.salary_max, a.current_status::text, a.applied_at,
	a.created_at, a.updated_at`

var sortColumns = map[kanban.SortField]string{
	kanban.SortCreatedAt: "a.created_at",
	kanban.SortUpdatedAt: "a.updated_at",
	kanban.SortAppliedAt: "a.applied_at",
}

func orderKeyword(o kanban.SortOrder) string {
	if o == kanban.OrderAsc {
		return "ASC"
	}
	return "DESC"
}

// listWhere builds the WHERE clause of the list view with positional args.
func listWhere(ownerID string, f kanban.ListFilter) (string, []any) {
	clauses := []string{"a.user_id = $1"}
	args := []any{ownerID}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != nil {
		clauses = append(clauses, "a.current_status = "+arg(string(*f.Status))+"::application_status")
	}
	if f.Company != "" {
		clauses = append(clauses, "a.company ILIKE "+arg(contains(f.Company)))
	}
	if f.Role != "" {
		clauses = append(clauses, "a.role ILIKE "+arg(contains(f.Role)))
	}
	if f.Query != "" {
		p := arg(contains(f.Query))
		clauses = append(clauses, "(a.company ILIKE "+p+" OR a.role ILIKE "+p+" OR a.location ILIKE "+p+")")
	}
	return strings.Join(clauses, " AND "), args
}

// contains turns free text into an ILIKE pattern, escaping wildcards.
func contains(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func scanApplication(row pgx.Row) (*kanban.Application, error) {
	var (
		a      kanban.Application
		status string
	)
	if err := row.Scan(
		&a.ID, &a.OwnerID, &a.Company, &a.Role, &a.JobURL, &a.Location, &a.Notes,
		&a.Currency, &a.SalaryMin, &a.SalaryMax, &status, &a.AppliedAt,
		&a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.CurrentStatus = kanban.Status(status)
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	if a.AppliedAt != nil {
		t := a.AppliedAt.UTC()
		a.AppliedAt = &t
	}
	return &a, nil
}

func collectApplications(rows pgx.Rows) ([]kanban.Application, error) {
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
