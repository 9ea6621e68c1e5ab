package kanban_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gustavobragaia/job-application/internal/kanban"
	"github.com/gustavobragaia/job-application/internal/store/sqlite"
)

const (
	owner = "user-1"
	other = "user-2"
)

// ──────────────────────────────────────────────────
// Fixtures
// ──────────────────────────────────────────────────

type recordingPublisher struct {
	mu     sync.Mutex
	events []kanban.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt kanban.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newService(t *testing.T) (*kanban.Service, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	return kanban.NewService(newStore(t), pub), pub
}

func create(t *testing.T, svc *kanban.Service) *kanban.Application {
	t.Helper()
	app, err := svc.Create(context.Background(), owner, kanban.NewApplication{Company: "Acme", Role: "Backend Engineer"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return app
}

func history(t *testing.T, svc *kanban.Service, id string) []kanban.HistoryEntry {
	t.Helper()
	d, err := svc.Get(context.Background(), owner, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return d.History
}

func ptr[T any](v T) *T { return &v }

// ──────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────

func TestCreate_DefaultsToAppliedWithCreationEntry(t *testing.T) {
	svc, pub := newService(t)
	app := create(t, svc)

	if app.CurrentStatus != kanban.StatusApplied {
		t.Fatalf("status = %s, want APPLIED", app.CurrentStatus)
	}
	if !app.CreatedAt.Equal(app.UpdatedAt) {
		t.Errorf("createdAt %v != updatedAt %v", app.CreatedAt, app.UpdatedAt)
	}

	h := history(t, svc, app.ID)
	if len(h) != 1 {
		t.Fatalf("history has %d entries, want 1", len(h))
	}
	if h[0].FromStatus != nil || h[0].ToStatus != kanban.StatusApplied {
		t.Errorf("creation entry = %v → %s, want nil → APPLIED", h[0].FromStatus, h[0].ToStatus)
	}
	if h[0].Reason == nil || *h[0].Reason != "Created" {
		t.Errorf("creation reason = %v, want Created", h[0].Reason)
	}
	if got := pub.types(); len(got) != 1 || got[0] != kanban.EventApplicationCreated {
		t.Errorf("events = %v, want [%s]", got, kanban.EventApplicationCreated)
	}
}

func TestCreate_InitialStatus(t *testing.T) {
	svc, _ := newService(t)
	app, err := svc.Create(context.Background(), owner, kanban.NewApplication{
		Company: "Acme", Role: "SRE", Status: ptr(kanban.StatusInterview),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	h := history(t, svc, app.ID)
	if len(h) != 1 || h[0].FromStatus != nil || h[0].ToStatus != kanban.StatusInterview {
		t.Fatalf("history = %+v, want single nil → INTERVIEW entry", h)
	}
}

func TestCreate_KeepsOptionalFields(t *testing.T) {
	svc, _ := newService(t)
	applied := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	app, err := svc.Create(context.Background(), owner, kanban.NewApplication{
		Company:   "Acme",
		Role:      "SRE",
		JobURL:    ptr("https://acme.example/jobs/1"),
		Location:  ptr("Remote"),
		Currency:  ptr("EUR"),
		SalaryMin: ptr(int64(50000)),
		SalaryMax: ptr(int64(40000)), // min > max is accepted
		AppliedAt: &applied,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.Get(context.Background(), owner, app.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if *got.JobURL != "https://acme.example/jobs/1" || *got.Location != "Remote" || *got.Currency != "EUR" {
		t.Errorf("text fields not persisted: %+v", got.Application)
	}
	if *got.SalaryMin != 50000 || *got.SalaryMax != 40000 {
		t.Errorf("salaries = %d..%d", *got.SalaryMin, *got.SalaryMax)
	}
	if got.Notes != nil {
		t.Errorf("notes = %q, want nil", *got.Notes)
	}
	if got.AppliedAt == nil || !got.AppliedAt.Equal(applied) {
		t.Errorf("appliedAt = %v, want %v", got.AppliedAt, applied)
	}
}

// ──────────────────────────────────────────────────
// ChangeStatus
// ──────────────────────────────────────────────────

// The concrete scenario: APPLIED → OFFER rejected, → OA accepted, OA again is
// a no-op, OA → APPLIED rejected.
func TestChangeStatus_Scenario(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	app := create(t, svc)

	_, err := svc.ChangeStatus(ctx, owner, app.ID, kanban.StatusOffer, nil)
	var te *kanban.TransitionError
	if !errors.As(err, &te) || te.From != kanban.StatusApplied || te.To != kanban.StatusOffer {
		t.Fatalf("APPLIED → OFFER err = %v, want TransitionError(APPLIED, OFFER)", err)
	}

	got, err := svc.ChangeStatus(ctx, owner, app.ID, kanban.StatusOA, ptr("passed screening"))
	if err != nil {
		t.Fatalf("APPLIED → OA: %v", err)
	}
	if got.CurrentStatus != kanban.StatusOA {
		t.Fatalf("status = %s, want OA", got.CurrentStatus)
	}
	if n := len(history(t, svc, app.ID)); n != 2 {
		t.Fatalf("history has %d entries, want 2", n)
	}

	if _, err := svc.ChangeStatus(ctx, owner, app.ID, kanban.StatusOA, nil); err != nil {
		t.Fatalf("OA → OA: %v", err)
	}
	if n := len(history(t, svc, app.ID)); n != 2 {
		t.Fatalf("history has %d entries after no-op, want 2", n)
	}

	_, err = svc.ChangeStatus(ctx, owner, app.ID, kanban.StatusApplied, nil)
	if !errors.Is(err, kanban.ErrInvalidTransition) {
		t.Fatalf("OA → APPLIED err = %v, want ErrInvalidTransition", err)
	}

	h := history(t, svc, app.ID)
	if h[0].FromStatus == nil || *h[0].FromStatus != kanban.StatusApplied || h[0].ToStatus != kanban.StatusOA {
		t.Errorf("newest entry = %+v, want APPLIED → OA", h[0])
	}
	if h[0].Reason == nil || *h[0].Reason != "passed screening" {
		t.Errorf("newest reason = %v", h[0].Reason)
	}
}

// Reaching every status through the shortest allowed path.
var pathTo = map[kanban.Status][]kanban.Status{
	kanban.StatusApplied:   nil,
	kanban.StatusOA:        {kanban.StatusOA},
	kanban.StatusInterview: {kanban.StatusInterview},
	kanban.StatusOffer:     {kanban.StatusInterview, kanban.StatusOffer},
	kanban.StatusRejected:  {kanban.StatusRejected},
}

func createIn(t *testing.T, svc *kanban.Service, s kanban.Status) *kanban.Application {
	t.Helper()
	app := create(t, svc)
	for _, step := range pathTo[s] {
		var err error
		if app, err = svc.ChangeStatus(context.Background(), owner, app.ID, step, nil); err != nil {
			t.Fatalf("walk to %s: %v", s, err)
		}
	}
	return app
}

func TestChangeStatus_SelfTransitionIsNoOp(t *testing.T) {
	svc, pub := newService(t)
	for _, s := range kanban.AllStatuses() {
		t.Run(string(s), func(t *testing.T) {
			app := createIn(t, svc, s)
			before := history(t, svc, app.ID)
			events := len(pub.types())

			got, err := svc.ChangeStatus(context.Background(), owner, app.ID, s, ptr("again"))
			if err != nil {
				t.Fatalf("ChangeStatus(%s → %s): %v", s, s, err)
			}
			if got.CurrentStatus != s || !got.UpdatedAt.Equal(app.UpdatedAt) {
				t.Errorf("application changed: %+v", got)
			}
			if after := history(t, svc, app.ID); len(after) != len(before) {
				t.Errorf("history grew from %d to %d", len(before), len(after))
			}
			if len(pub.types()) != events {
				t.Error("no-op published an event")
			}
		})
	}
}

func TestChangeStatus_EnforcesTable(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	for _, from := range kanban.AllStatuses() {
		for _, to := range kanban.AllStatuses() {
			if from == to || kanban.IsTransitionAllowed(from, to) {
				continue
			}
			app := createIn(t, svc, from)
			before := history(t, svc, app.ID)

			_, err := svc.ChangeStatus(ctx, owner, app.ID, to, nil)
			if !errors.Is(err, kanban.ErrInvalidTransition) {
				t.Errorf("%s → %s: err = %v, want ErrInvalidTransition", from, to, err)
				continue
			}
			d, _ := svc.Get(ctx, owner, app.ID)
			if d.CurrentStatus != from || len(d.History) != len(before) {
				t.Errorf("%s → %s mutated state: status %s, history %d → %d",
					from, to, d.CurrentStatus, len(before), len(d.History))
			}
		}
	}
}

func TestChangeStatus_AllowedAppendsExactlyOneEntry(t *testing.T) {
	svc, pub := newService(t)
	ctx := context.Background()
	for _, from := range kanban.AllStatuses() {
		for _, to := range kanban.AllStatuses() {
			if !kanban.IsTransitionAllowed(from, to) {
				continue
			}
			app := createIn(t, svc, from)
			before := history(t, svc, app.ID)

			got, err := svc.ChangeStatus(ctx, owner, app.ID, to, nil)
			if err != nil {
				t.Fatalf("%s → %s: %v", from, to, err)
			}
			if got.CurrentStatus != to {
				t.Errorf("%s → %s: status = %s", from, to, got.CurrentStatus)
			}
			after := history(t, svc, app.ID)
			if len(after) != len(before)+1 {
				t.Fatalf("%s → %s: history %d → %d, want +1", from, to, len(before), len(after))
			}
			if after[0].FromStatus == nil || *after[0].FromStatus != from || after[0].ToStatus != to {
				t.Errorf("%s → %s: newest entry = %+v", from, to, after[0])
			}
		}
	}

	evts := pub.types()
	if evts[len(evts)-1] != kanban.EventStatusChanged {
		t.Errorf("last event = %s, want %s", evts[len(evts)-1], kanban.EventStatusChanged)
	}
}

func TestChangeStatus_NotFound(t *testing.T) {
	svc, _ := newService(t)
	app := create(t, svc)

	for _, tc := range []struct{ name, owner, id string }{
		{"unknown id", owner, "00000000-0000-0000-0000-000000000000"},
		{"malformed id", owner, "not-a-uuid"},
		{"other owner", other, app.ID},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ChangeStatus(context.Background(), tc.owner, tc.id, kanban.StatusOA, nil)
			if !errors.Is(err, kanban.ErrNotFound) {
				t.Fatalf("err = %v, want ErrNotFound", err)
			}
		})
	}
}

// Concurrent callers reading the same from-status: every commit must be
// serialized, so the history stays a valid chain and only one of the
// competing edges out of APPLIED wins.
func TestChangeStatus_ConcurrentCallersSerialize(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	app := create(t, svc)

	targets := []kanban.Status{
		kanban.StatusOA, kanban.StatusInterview, kanban.StatusRejected,
		kanban.StatusOA, kanban.StatusInterview, kanban.StatusRejected,
	}
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for _, to := range targets {
		wg.Add(1)
		go func(to kanban.Status) {
			defer wg.Done()
			_, err := svc.ChangeStatus(ctx, owner, app.ID, to, nil)
			if err != nil && !errors.Is(err, kanban.ErrInvalidTransition) {
				t.Errorf("ChangeStatus(%s): %v", to, err)
				return
			}
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(to)
	}
	wg.Wait()

	d, err := svc.Get(ctx, owner, app.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	assertChain(t, d)

	fromApplied := 0
	for _, e := range d.History {
		if e.FromStatus != nil && *e.FromStatus == kanban.StatusApplied {
			fromApplied++
		}
	}
	if fromApplied != 1 {
		t.Errorf("%d entries leave APPLIED, want exactly 1", fromApplied)
	}
	if succeeded == 0 {
		t.Error("no caller succeeded")
	}
}

// assertChain replays history oldest → newest and checks every link and the
// final status.
func assertChain(t *testing.T, d *kanban.ApplicationDetail) {
	t.Helper()
	var cur *kanban.Status
	for i := len(d.History) - 1; i >= 0; i-- {
		e := d.History[i]
		switch {
		case cur == nil && e.FromStatus != nil:
			t.Fatalf("first entry has from = %s, want nil", *e.FromStatus)
		case cur != nil && (e.FromStatus == nil || *e.FromStatus != *cur):
			t.Fatalf("entry %d: from = %v, want %s", i, e.FromStatus, *cur)
		}
		to := e.ToStatus
		cur = &to
	}
	if cur == nil || *cur != d.CurrentStatus {
		t.Fatalf("replayed status = %v, current = %s", cur, d.CurrentStatus)
	}
}

// ──────────────────────────────────────────────────
// Atomicity
// ──────────────────────────────────────────────────

var errBoom = errors.New("boom")

// failingHistoryStore lets the status update succeed and fails the history
// append in the same transaction.
type failingHistoryStore struct{ *sqlite.Store }

func (s failingHistoryStore) Atomic(ctx context.Context, fn func(tx kanban.Tx) error) error {
	return s.Store.Atomic(ctx, func(tx kanban.Tx) error { return fn(failingTx{tx}) })
}

type failingTx struct{ kanban.Tx }

func (failingTx) AppendHistory(context.Context, kanban.HistoryEntry) error { return errBoom }

func TestChangeStatus_HistoryFailureRollsBackStatus(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	app := create(t, kanban.NewService(store, nil))

	broken := kanban.NewService(failingHistoryStore{store}, nil)
	if _, err := broken.ChangeStatus(ctx, owner, app.ID, kanban.StatusOA, nil); !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want errBoom", err)
	}
	if _, err := broken.UpdateApplication(ctx, owner, app.ID, kanban.Patch{
		Company: ptr("Renamed"), Status: ptr(kanban.StatusInterview),
	}); !errors.Is(err, errBoom) {
		t.Fatalf("update err = %v, want errBoom", err)
	}

	d, err := kanban.NewService(store, nil).Get(ctx, owner, app.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.CurrentStatus != kanban.StatusApplied || d.Company != "Acme" || len(d.History) != 1 {
		t.Fatalf("partial write visible: status %s, company %s, history %d", d.CurrentStatus, d.Company, len(d.History))
	}
}

func TestChangeStatus_CancelledContextWritesNothing(t *testing.T) {
	svc, _ := newService(t)
	app := create(t, svc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.ChangeStatus(ctx, owner, app.ID, kanban.StatusOA, nil); err == nil {
		t.Fatal("expected error for cancelled context")
	}

	d, _ := svc.Get(context.Background(), owner, app.ID)
	if d.CurrentStatus != kanban.StatusApplied || len(d.History) != 1 {
		t.Fatalf("cancelled change persisted: %s, %d entries", d.CurrentStatus, len(d.History))
	}
}

// ──────────────────────────────────────────────────
// UpdateApplication
// ──────────────────────────────────────────────────

func TestUpdateApplication_MergesFields(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	app, err := svc.Create(ctx, owner, kanban.NewApplication{
		Company: "Acme", Role: "SRE", Location: ptr("Paris"), Notes: ptr("referral"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.UpdateApplication(ctx, owner, app.ID, kanban.Patch{
		Role:      ptr("Staff SRE"),
		Notes:     kanban.Null[string](),
		SalaryMin: kanban.Some(int64(90000)),
	})
	if err != nil {
		t.Fatalf("UpdateApplication: %v", err)
	}
	if got.Company != "Acme" || got.Role != "Staff SRE" {
		t.Errorf("company/role = %s/%s", got.Company, got.Role)
	}
	if got.Location == nil || *got.Location != "Paris" {
		t.Errorf("absent location changed: %v", got.Location)
	}
	if got.Notes != nil {
		t.Errorf("null notes not cleared: %q", *got.Notes)
	}
	if got.SalaryMin == nil || *got.SalaryMin != 90000 {
		t.Errorf("salaryMin = %v", got.SalaryMin)
	}
	if got.ID != app.ID || got.OwnerID != owner || !got.CreatedAt.Equal(app.CreatedAt) {
		t.Errorf("immutable fields changed: %+v", got)
	}
	if got.UpdatedAt.Before(app.UpdatedAt) {
		t.Errorf("updatedAt went backwards")
	}
	if n := len(history(t, svc, app.ID)); n != 1 {
		t.Errorf("field-only update wrote history: %d entries", n)
	}
}

func TestUpdateApplication_StatusChangeWritesHistory(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	app := create(t, svc)

	got, err := svc.UpdateApplication(ctx, owner, app.ID, kanban.Patch{
		Status: ptr(kanban.StatusOA), Reason: ptr("recruiter call"),
	})
	if err != nil {
		t.Fatalf("UpdateApplication: %v", err)
	}
	if got.CurrentStatus != kanban.StatusOA {
		t.Fatalf("status = %s", got.CurrentStatus)
	}
	h := history(t, svc, app.ID)
	if len(h) != 2 || *h[0].FromStatus != kanban.StatusApplied || h[0].ToStatus != kanban.StatusOA || *h[0].Reason != "recruiter call" {
		t.Fatalf("history = %+v", h)
	}

	// Same status again: no new entry.
	if _, err := svc.UpdateApplication(ctx, owner, app.ID, kanban.Patch{Status: ptr(kanban.StatusOA)}); err != nil {
		t.Fatalf("UpdateApplication: %v", err)
	}
	if n := len(history(t, svc, app.ID)); n != 2 {
		t.Errorf("unchanged status wrote history: %d entries", n)
	}
}

// The general update path bypasses the transition table.
func TestUpdateApplication_BypassesPolicy(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	app := createIn(t, svc, kanban.StatusRejected)

	got, err := svc.UpdateApplication(ctx, owner, app.ID, kanban.Patch{
		Status: ptr(kanban.StatusApplied), Reason: ptr("rejected by mistake"),
	})
	if err != nil {
		t.Fatalf("REJECTED → APPLIED via update: %v", err)
	}
	if got.CurrentStatus != kanban.StatusApplied {
		t.Fatalf("status = %s, want APPLIED", got.CurrentStatus)
	}
	d, _ := svc.Get(ctx, owner, app.ID)
	assertChain(t, d)
}

// ──────────────────────────────────────────────────
// Ownership, delete, summary, list
// ──────────────────────────────────────────────────

func TestOwnershipIsolation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	app := create(t, svc)

	if _, err := svc.Get(ctx, other, app.ID); !errors.Is(err, kanban.ErrNotFound) {
		t.Errorf("Get: err = %v", err)
	}
	if _, err := svc.UpdateApplication(ctx, other, app.ID, kanban.Patch{Company: ptr("x")}); !errors.Is(err, kanban.ErrNotFound) {
		t.Errorf("UpdateApplication: err = %v", err)
	}
	if err := svc.Delete(ctx, other, app.ID); !errors.Is(err, kanban.ErrNotFound) {
		t.Errorf("Delete: err = %v", err)
	}
	if d, err := svc.Get(ctx, owner, app.ID); err != nil || d.Company != "Acme" {
		t.Errorf("owner view changed: %v %v", d, err)
	}
}

func TestDelete_CascadesHistory(t *testing.T) {
	store := newStore(t)
	svc := kanban.NewService(store, nil)
	ctx := context.Background()
	app := createIn(t, svc, kanban.StatusInterview)

	if err := svc.Delete(ctx, owner, app.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, owner, app.ID); !errors.Is(err, kanban.ErrNotFound) {
		t.Fatalf("Get after delete: err = %v", err)
	}
	if err := svc.Delete(ctx, owner, app.ID); !errors.Is(err, kanban.ErrNotFound) {
		t.Fatalf("second Delete: err = %v", err)
	}

	var n int
	if err := store.DB.QueryRow(`SELECT COUNT(*) FROM status_history WHERE application_id = ?`, app.ID).Scan(&n); err != nil {
		t.Fatalf("count history: %v", err)
	}
	if n != 0 {
		t.Errorf("%d orphaned history rows", n)
	}
}

func TestSummary_AllStatusesPresent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	sum, err := svc.Summary(ctx, owner)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	for _, s := range kanban.AllStatuses() {
		if v, ok := sum[s]; !ok || v != 0 {
			t.Errorf("empty summary[%s] = %d, %v", s, v, ok)
		}
	}

	createIn(t, svc, kanban.StatusOA)
	createIn(t, svc, kanban.StatusOA)
	createIn(t, svc, kanban.StatusOffer)
	if _, err := svc.Create(ctx, other, kanban.NewApplication{Company: "Other", Role: "x"}); err != nil {
		t.Fatal(err)
	}

	sum, err = svc.Summary(ctx, owner)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	want := kanban.Summary{
		kanban.StatusApplied: 0, kanban.StatusOA: 2, kanban.StatusInterview: 0,
		kanban.StatusOffer: 1, kanban.StatusRejected: 0,
	}
	for s, n := range want {
		if sum[s] != n {
			t.Errorf("summary[%s] = %d, want %d", s, sum[s], n)
		}
	}
}

func TestList_PagingAndFilters(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	for _, c := range []string{"Acme", "Globex", "Initech", "Acme Labs"} {
		if _, err := svc.Create(ctx, owner, kanban.NewApplication{Company: c, Role: "Engineer"}); err != nil {
			t.Fatal(err)
		}
	}
	createIn(t, svc, kanban.StatusRejected) // Acme, REJECTED

	page, err := svc.List(ctx, owner, kanban.ListFilter{Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 5 || page.TotalPages != 3 || len(page.Items) != 2 || page.Page != 1 {
		t.Fatalf("page = total %d, pages %d, items %d, page %d", page.Total, page.TotalPages, len(page.Items), page.Page)
	}

	page, err = svc.List(ctx, owner, kanban.ListFilter{Company: "acme"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 3 {
		t.Errorf("company filter total = %d, want 3", page.Total)
	}

	page, err = svc.List(ctx, owner, kanban.ListFilter{Status: ptr(kanban.StatusRejected)})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 1 || page.Items[0].CurrentStatus != kanban.StatusRejected {
		t.Errorf("status filter = %+v", page)
	}

	page, err = svc.List(ctx, other, kanban.ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 0 || page.Items == nil {
		t.Errorf("other owner sees %d items (items nil: %v)", page.Total, page.Items == nil)
	}
}

func TestListFilter_Normalize(t *testing.T) {
	f := kanban.ListFilter{Page: -3, Limit: 500, SortBy: "bogus", Order: "sideways"}.Normalize()
	if f.Page != 1 || f.Limit != 100 || f.SortBy != kanban.SortCreatedAt || f.Order != kanban.OrderDesc {
		t.Fatalf("Normalize() = %+v", f)
	}
	if got := (kanban.ListFilter{Page: 3, Limit: 20}).Offset(); got != 40 {
		t.Errorf("Offset() = %d, want 40", got)
	}
}
