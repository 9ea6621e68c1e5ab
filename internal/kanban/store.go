package kanban

import (
	"context"
	"time"
)

// Store persists applications and their status history.
type Store interface {
	// Atomic runs fn inside one storage transaction. The transaction commits
	// only when fn returns nil; any error, including a cancelled ctx, rolls
	// back every write made through tx.
	Atomic(ctx context.Context, fn func(tx Tx) error) error

	// List returns one page of the owner's applications. f is normalized.
	List(ctx context.Context, ownerID string, f ListFilter) ([]Application, int, error)

	// CountByStatus groups the owner's applications by current status.
	// Statuses with no applications may be omitted.
	CountByStatus(ctx context.Context, ownerID string) (map[Status]int, error)

	// ListStale returns applications in a non-terminal status whose last
	// update is older than before, oldest first.
	ListStale(ctx context.Context, before time.Time, limit int) ([]Application, error)
}

// Tx is the unit of work handed to Store.Atomic. Every lookup is scoped by
// owner and returns ErrNotFound when no row matches (ownerID, id).
type Tx interface {
	Insert(ctx context.Context, app *Application) error
	FindOwned(ctx context.Context, ownerID, id string) (*Application, error)
	// LockOwned is FindOwned plus a write lock on the row held until the
	// transaction ends.
	LockOwned(ctx context.Context, ownerID, id string) (*Application, error)
	// Update writes every mutable field of app. ID and OwnerID are used only
	// to locate the row.
	Update(ctx context.Context, app *Application) error
	Delete(ctx context.Context, ownerID, id string) error

	AppendHistory(ctx context.Context, e HistoryEntry) error
	// History returns the entries of one application, newest first.
	History(ctx context.Context, applicationID string) ([]HistoryEntry, error)
}

// Event types published after a commit.
const (
	EventApplicationCreated = "EVENT_APPLICATION_CREATED"
	EventStatusChanged      = "EVENT_STATUS_CHANGED"
	EventApplicationDeleted = "EVENT_APPLICATION_DELETED"
	EventFollowUpDue        = "EVENT_FOLLOW_UP_DUE"
)

// Event is the payload published for SSE forwarding by the Gateway.
type Event struct {
	Type          string `json:"type"`
	ApplicationID string `json:"applicationId"`
	UserID        string `json:"userId"`
	From          Status `json:"from,omitempty"`
	To            Status `json:"to,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// Publisher fans events out to other services. Failures are never fatal.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}
