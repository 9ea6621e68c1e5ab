// Package kanban contains the pure business logic for the Tracker service.
// It is transport-agnostic: used by the HTTP API (httpapi package) and the
// gRPC server (grpcserver package).
package kanban

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// createdReason is the reason recorded on the history entry written at creation.
const createdReason = "Created"

// ─── Service ─────────────────────────────────────────────────────────────────

// Service encapsulates all Kanban business logic.
// It has no dependency on net/http and can be used by any transport layer.
type Service struct {
	store  Store
	events Publisher
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService returns a configured Service. events may be nil.
func NewService(store Store, events Publisher, opts ...Option) *Service {
	s := &Service{
		store:  store,
		events: events,
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestamp is truncated to the precision every backing store keeps.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// ─── Business logic ───────────────────────────────────────────────────────────

// Create inserts a new application together with its creation history entry
// (nil → initial status, reason "Created").
func (s *Service) Create(ctx context.Context, ownerID string, in NewApplication) (*Application, error) {
	status := StatusApplied
	if in.Status != nil {
		status = *in.Status
	}

	now := s.timestamp()
	app := &Application{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Company:       in.Company,
		Role:          in.Role,
		JobURL:        in.JobURL,
		Location:      in.Location,
		Notes:         in.Notes,
		Currency:      in.Currency,
		SalaryMin:     in.SalaryMin,
		SalaryMax:     in.SalaryMax,
		CurrentStatus: status,
		AppliedAt:     in.AppliedAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.store.Atomic(ctx, func(tx Tx) error {
		if err := tx.Insert(ctx, app); err != nil {
			return err
		}
		reason := createdReason
		return tx.AppendHistory(ctx, HistoryEntry{
			ApplicationID: app.ID,
			ToStatus:      status,
			Reason:        &reason,
			ChangedAt:     now,
		})
	})
	if err != nil {
		return nil, wrap("createApplication", err)
	}

	s.publish(ctx, Event{
		Type:          EventApplicationCreated,
		ApplicationID: app.ID,
		UserID:        ownerID,
		To:            status,
	})
	return app, nil
}

// Get returns one application with its full history, newest entry first.
func (s *Service) Get(ctx context.Context, ownerID, appID string) (*ApplicationDetail, error) {
	var detail ApplicationDetail
	err := s.store.Atomic(ctx, func(tx Tx) error {
		app, err := tx.FindOwned(ctx, ownerID, appID)
		if err != nil {
			return err
		}
		history, err := tx.History(ctx, app.ID)
		if err != nil {
			return err
		}
		detail = ApplicationDetail{Application: *app, History: history}
		return nil
	})
	if err != nil {
		return nil, wrap("getApplication", err)
	}
	if detail.History == nil {
		detail.History = make([]HistoryEntry, 0)
	}
	return &detail, nil
}

// List returns one page of the owner's applications.
func (s *Service) List(ctx context.Context, ownerID string, f ListFilter) (*Page, error) {
	f = f.Normalize()
	items, total, err := s.store.List(ctx, ownerID, f)
	if err != nil {
		return nil, fmt.Errorf("listApplications: %w", err)
	}
	return newPage(items, f, total), nil
}

// Summary counts the owner's applications per status; every status is present.
func (s *Service) Summary(ctx context.Context, ownerID string) (Summary, error) {
	counts, err := s.store.CountByStatus(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	sum := newSummary()
	for st, n := range counts {
		if _, ok := sum[st]; ok {
			sum[st] = n
		}
	}
	return sum, nil
}

// ChangeStatus transitions an application to a new status.
// Returns ErrNotFound if the application does not exist or belong to ownerID.
// Returns a *TransitionError if the state machine rejects the transition.
// Moving to the current status is a no-op: nothing is written.
//
// The current status is read under a row lock in the same transaction as the
// write, so two concurrent callers can never both commit against the same
// from-status.
func (s *Service) ChangeStatus(ctx context.Context, ownerID, appID string, to Status, reason *string) (*Application, error) {
	var (
		app     *Application
		from    Status
		changed bool
	)
	err := s.store.Atomic(ctx, func(tx Tx) error {
		cur, err := tx.LockOwned(ctx, ownerID, appID)
		if err != nil {
			return err
		}
		if cur.CurrentStatus == to {
			app = cur
			return nil
		}
		if !IsTransitionAllowed(cur.CurrentStatus, to) {
			return &TransitionError{From: cur.CurrentStatus, To: to}
		}

		from = cur.CurrentStatus
		now := s.timestamp()
		cur.CurrentStatus = to
		cur.UpdatedAt = now
		if err := tx.Update(ctx, cur); err != nil {
			return err
		}
		if err := tx.AppendHistory(ctx, HistoryEntry{
			ApplicationID: cur.ID,
			FromStatus:    &from,
			ToStatus:      to,
			Reason:        reason,
			ChangedAt:     now,
		}); err != nil {
			return err
		}
		app = cur
		changed = true
		return nil
	})
	if err != nil {
		return nil, wrap("changeStatus", err)
	}

	if changed {
		s.publish(ctx, statusEvent(app, from, reason))
	}
	return app, nil
}

// UpdateApplication merges p into the application. When p carries a status
// different from the current one, a history entry is written in the same
// transaction.
//
// This path does not consult the transition table: any status may be set
// here, including moves ChangeStatus would reject. Such moves are logged.
func (s *Service) UpdateApplication(ctx context.Context, ownerID, appID string, p Patch) (*Application, error) {
	var (
		app           *Application
		from          Status
		statusChanged bool
	)
	err := s.store.Atomic(ctx, func(tx Tx) error {
		cur, err := tx.LockOwned(ctx, ownerID, appID)
		if err != nil {
			return err
		}
		from = cur.CurrentStatus
		statusChanged = p.Status != nil && *p.Status != cur.CurrentStatus

		now := s.timestamp()
		p.apply(cur)
		cur.UpdatedAt = now
		if err := tx.Update(ctx, cur); err != nil {
			return err
		}
		if statusChanged {
			if err := tx.AppendHistory(ctx, HistoryEntry{
				ApplicationID: cur.ID,
				FromStatus:    &from,
				ToStatus:      cur.CurrentStatus,
				Reason:        p.Reason,
				ChangedAt:     now,
			}); err != nil {
				return err
			}
		}
		app = cur
		return nil
	})
	if err != nil {
		return nil, wrap("updateApplication", err)
	}

	if statusChanged {
		if !IsTransitionAllowed(from, app.CurrentStatus) {
			s.logger.Warn("status set through general update",
				"applicationId", app.ID, "from", from, "to", app.CurrentStatus, "bypassesPolicy", true)
		}
		s.publish(ctx, statusEvent(app, from, p.Reason))
	}
	return app, nil
}

// Delete removes an application; its history goes with it.
func (s *Service) Delete(ctx context.Context, ownerID, appID string) error {
	err := s.store.Atomic(ctx, func(tx Tx) error {
		return tx.Delete(ctx, ownerID, appID)
	})
	if err != nil {
		return wrap("deleteApplication", err)
	}
	s.publish(ctx, Event{Type: EventApplicationDeleted, ApplicationID: appID, UserID: ownerID})
	return nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// publish runs after commit and outlives a cancelled request (non-fatal).
func (s *Service) publish(ctx context.Context, evt Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(context.WithoutCancel(ctx), evt); err != nil {
		s.logger.Warn("publish event failed", "type", evt.Type, "applicationId", evt.ApplicationID, "err", err)
	}
}

func statusEvent(app *Application, from Status, reason *string) Event {
	evt := Event{
		Type:          EventStatusChanged,
		ApplicationID: app.ID,
		UserID:        app.OwnerID,
		From:          from,
		To:            app.CurrentStatus,
	}
	if reason != nil {
		evt.Reason = *reason
	}
	return evt
}

// wrap leaves domain errors untouched so transports can match them and
// annotates storage failures with the operation name.
func wrap(op string, err error) error {
	var te *TransitionError
	if errors.Is(err, ErrNotFound) || errors.As(err, &te) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
