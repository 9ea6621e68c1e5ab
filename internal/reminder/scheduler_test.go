package reminder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gustavobragaia/job-application/internal/kanban"
)

type fakeStore struct {
	apps   []kanban.Application
	err    error
	before time.Time
	limit  int
}

func (f *fakeStore) ListStale(_ context.Context, before time.Time, limit int) ([]kanban.Application, error) {
	f.before, f.limit = before, limit
	return f.apps, f.err
}

type fakePublisher struct {
	mu     sync.Mutex
	events []kanban.Event
	failOn string
}

func (p *fakePublisher) Publish(_ context.Context, evt kanban.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if evt.ApplicationID == p.failOn {
		return errors.New("redis down")
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRunOnce_PublishesForEachStaleApplication(t *testing.T) {
	now := time.Date(2026, 5, 20, 8, 0, 0, 0, time.UTC)
	store := &fakeStore{apps: []kanban.Application{
		{ID: "a1", OwnerID: "u1", CurrentStatus: kanban.StatusApplied},
		{ID: "a2", OwnerID: "u2", CurrentStatus: kanban.StatusInterview},
		{ID: "a3", OwnerID: "u1", CurrentStatus: kanban.StatusOA},
	}}
	pub := &fakePublisher{failOn: "a2"}

	s := New(store, pub, "@every 1h", 14, quiet)
	s.now = func() time.Time { return now }

	if got := s.RunOnce(context.Background()); got != 2 {
		t.Fatalf("RunOnce = %d, want 2", got)
	}
	if want := now.Add(-14 * 24 * time.Hour); !store.before.Equal(want) {
		t.Errorf("cutoff = %v, want %v", store.before, want)
	}
	if store.limit != batchSize {
		t.Errorf("limit = %d, want %d", store.limit, batchSize)
	}
	for _, e := range pub.events {
		if e.Type != kanban.EventFollowUpDue {
			t.Errorf("event type = %s", e.Type)
		}
	}
	if pub.events[0].UserID != "u1" || pub.events[0].To != kanban.StatusApplied {
		t.Errorf("first event = %+v", pub.events[0])
	}
}

func TestRunOnce_StoreError(t *testing.T) {
	pub := &fakePublisher{}
	s := New(&fakeStore{err: errors.New("db down")}, pub, "@every 1h", 14, quiet)
	if got := s.RunOnce(context.Background()); got != 0 || pub.count() != 0 {
		t.Fatalf("RunOnce = %d with %d events, want 0", got, pub.count())
	}
}

func TestStart_RejectsBadSpec(t *testing.T) {
	s := New(&fakeStore{}, &fakePublisher{}, "every now and then", 14, quiet)
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestStart_RunsImmediately(t *testing.T) {
	pub := &fakePublisher{}
	store := &fakeStore{apps: []kanban.Application{{ID: "a1", OwnerID: "u1", CurrentStatus: kanban.StatusOA}}}
	s := New(store, pub, "@every 24h", 7, quiet)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for pub.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if pub.count() != 1 {
		t.Fatalf("events after start = %d, want 1", pub.count())
	}
}
