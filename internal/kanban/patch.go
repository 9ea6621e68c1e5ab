package kanban

import (
	"encoding/json"
	"time"
)

// Optional is a nullable field that also remembers whether it was supplied.
// Absent leaves the stored value alone, an explicit null clears it and any
// other value replaces it.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns a supplied, non-null Optional.
func Some[T any](v T) Optional[T] { return Optional[T]{Set: true, Value: &v} }

// Null returns a supplied Optional that clears the field.
func Null[T any]() Optional[T] { return Optional[T]{Set: true} }

// UnmarshalJSON is only invoked for keys present in the document, so reaching
// it at all marks the field as supplied.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func (o Optional[T]) applyTo(dst **T) {
	if !o.Set {
		return
	}
	if o.Value == nil {
		*dst = nil
		return
	}
	v := *o.Value
	*dst = &v
}

// Patch is a partial edit of an application. Company and Role cannot be
// cleared, so nil means "unchanged" for them. Status and Reason drive the
// history entry written when the status changes.
type Patch struct {
	Company   *string             `json:"company"`
	Role      *string             `json:"role"`
	JobURL    Optional[string]    `json:"jobUrl"`
	Location  Optional[string]    `json:"location"`
	Notes     Optional[string]    `json:"notes"`
	Currency  Optional[string]    `json:"currency"`
	SalaryMin Optional[int64]     `json:"salaryMin"`
	SalaryMax Optional[int64]     `json:"salaryMax"`
	AppliedAt Optional[time.Time] `json:"appliedAt"`
	Status    *Status             `json:"currentStatus"`
	Reason    *string             `json:"reason"`
}

// apply merges every supplied field into app. It never touches ID, OwnerID
// or the timestamps.
func (p Patch) apply(app *Application) {
	if p.Company != nil {
		app.Company = *p.Company
	}
	if p.Role != nil {
		app.Role = *p.Role
	}
	p.JobURL.applyTo(&app.JobURL)
	p.Location.applyTo(&app.Location)
	p.Notes.applyTo(&app.Notes)
	p.Currency.applyTo(&app.Currency)
	p.SalaryMin.applyTo(&app.SalaryMin)
	p.SalaryMax.applyTo(&app.SalaryMax)
	p.AppliedAt.applyTo(&app.AppliedAt)
	if p.Status != nil {
		app.CurrentStatus = *p.Status
	}
}
