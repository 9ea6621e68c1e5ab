package kanban

import (
	"net/url"
	"strings"
)

// Validate checks the shape of a create request the way the transport layer
// is expected to before calling Service.Create.
func (in NewApplication) Validate() error {
	if strings.TrimSpace(in.Company) == "" {
		return invalidf("company is required")
	}
	if strings.TrimSpace(in.Role) == "" {
		return invalidf("role is required")
	}
	if in.JobURL != nil {
		if err := validateURL(*in.JobURL); err != nil {
			return err
		}
	}
	if in.Currency != nil && strings.TrimSpace(*in.Currency) == "" {
		return invalidf("currency must not be empty")
	}
	if err := validateSalary("salaryMin", in.SalaryMin); err != nil {
		return err
	}
	if err := validateSalary("salaryMax", in.SalaryMax); err != nil {
		return err
	}
	if in.Status != nil {
		if _, err := ParseStatus(string(*in.Status)); err != nil {
			return invalidf("%v", err)
		}
	}
	return nil
}

// Validate checks the shape of a partial update.
func (p Patch) Validate() error {
	if p.Company != nil && strings.TrimSpace(*p.Company) == "" {
		return invalidf("company must not be empty")
	}
	if p.Role != nil && strings.TrimSpace(*p.Role) == "" {
		return invalidf("role must not be empty")
	}
	if p.JobURL.Value != nil {
		if err := validateURL(*p.JobURL.Value); err != nil {
			return err
		}
	}
	if p.Currency.Value != nil && strings.TrimSpace(*p.Currency.Value) == "" {
		return invalidf("currency must not be empty")
	}
	if err := validateSalary("salaryMin", p.SalaryMin.Value); err != nil {
		return err
	}
	if err := validateSalary("salaryMax", p.SalaryMax.Value); err != nil {
		return err
	}
	if p.Status != nil {
		if _, err := ParseStatus(string(*p.Status)); err != nil {
			return invalidf("%v", err)
		}
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalidf("jobUrl must be an absolute http(s) URL, got %q", raw)
	}
	return nil
}

func validateSalary(field string, v *int64) error {
	if v != nil && *v < 0 {
		return invalidf("%s must be a non-negative integer", field)
	}
	return nil
}

// Validate checks a list query. Zero paging and empty ordering values select
// the defaults applied by Normalize.
func (f ListFilter) Validate() error {
	if f.Status != nil {
		if _, err := ParseStatus(string(*f.Status)); err != nil {
			return invalidf("%v", err)
		}
	}
	if f.Page < 0 {
		return invalidf("page must be a positive integer")
	}
	if f.Limit < 0 || f.Limit > maxPageLimit {
		return invalidf("limit must be between 1 and %d", maxPageLimit)
	}
	switch f.SortBy {
	case "", SortCreatedAt, SortUpdatedAt, SortAppliedAt:
	default:
		return invalidf("sortBy must be one of createdAt, updatedAt, appliedAt")
	}
	switch f.Order {
	case "", OrderAsc, OrderDesc:
	default:
		return invalidf("order must be asc or desc")
	}
	return nil
}
