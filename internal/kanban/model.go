package kanban

import "time"

// Application is the JSON shape returned to the Gateway / mobile clients.
type Application struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"userId"`
	Company       string     `json:"company"`
	Role          string     `json:"role"`
	JobURL        *string    `json:"jobUrl"`
	Location      *string    `json:"location"`
	Notes         *string    `json:"notes"`
	Currency      *string    `json:"currency"`
	SalaryMin     *int64     `json:"salaryMin"`
	SalaryMax     *int64     `json:"salaryMax"`
	CurrentStatus Status     `json:"currentStatus"`
	AppliedAt     *time.Time `json:"appliedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// HistoryEntry is one immutable row of the status history. FromStatus is nil
// only for the entry written at creation.
type HistoryEntry struct {
	ApplicationID string    `json:"applicationId"`
	FromStatus    *Status   `json:"fromStatus"`
	ToStatus      Status    `json:"toStatus"`
	Reason        *string   `json:"reason"`
	ChangedAt     time.Time `json:"changedAt"`
}

// ApplicationDetail is an application with its history, newest entry first.
type ApplicationDetail struct {
	Application
	History []HistoryEntry `json:"history"`
}

// NewApplication carries the descriptive fields of an application to create.
// Status is optional; APPLIED is used when it is nil.
type NewApplication struct {
	Company   string     `json:"company"`
	Role      string     `json:"role"`
	JobURL    *string    `json:"jobUrl"`
	Location  *string    `json:"location"`
	Notes     *string    `json:"notes"`
	Currency  *string    `json:"currency"`
	SalaryMin *int64     `json:"salaryMin"`
	SalaryMax *int64     `json:"salaryMax"`
	AppliedAt *time.Time `json:"appliedAt"`
	Status    *Status    `json:"currentStatus"`
}

// Summary counts applications per status. Every status is always present.
type Summary map[Status]int

func newSummary() Summary {
	all := AllStatuses()
	s := make(Summary, len(all))
	for _, st := range all {
		s[st] = 0
	}
	return s
}

// SortField is a column the list view may be ordered by.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
	SortAppliedAt SortField = "appliedAt"
)

// SortOrder is the direction of the list ordering.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ListFilter narrows and orders the list view. Zero values mean "no filter"
// or the default; call Normalize before handing it to a Store.
type ListFilter struct {
	Status  *Status
	Company string
	Role    string
	Query   string
	Page    int
	Limit   int
	SortBy  SortField
	Order   SortOrder
}

// Normalize clamps paging and fills in the default ordering.
func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageLimit
	}
	if f.Limit > maxPageLimit {
		f.Limit = maxPageLimit
	}
	switch f.SortBy {
	case SortCreatedAt, SortUpdatedAt, SortAppliedAt:
	default:
		f.SortBy = SortCreatedAt
	}
	if f.Order != OrderAsc {
		f.Order = OrderDesc
	}
	return f
}

// Offset is the number of rows skipped before the current page.
func (f ListFilter) Offset() int { return (f.Page - 1) * f.Limit }

// Page is one page of the list view.
type Page struct {
	Items      []Application `json:"items"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	Total      int           `json:"total"`
	TotalPages int           `json:"totalPages"`
}

func newPage(items []Application, f ListFilter, total int) *Page {
	if items == nil {
		items = make([]Application, 0)
	}
	return &Page{
		Items:      items,
		Page:       f.Page,
		Limit:      f.Limit,
		Total:      total,
		TotalPages: (total + f.Limit - 1) / f.Limit,
	}
}
