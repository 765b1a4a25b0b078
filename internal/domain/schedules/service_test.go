package schedules

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

// testRepo lleva mutex porque Apply escribe el plan en concurrente.
type testRepo struct {
	mu   sync.Mutex
	byID map[string]ScheduleRecord
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]ScheduleRecord{}}
}

func (r *testRepo) Create(ctx context.Context, rec ScheduleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[rec.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *testRepo) Update(ctx context.Context, rec ScheduleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[rec.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (ScheduleRecord, error) {
	rec, ok := r.byID[id]
	if !ok {
		return ScheduleRecord{}, errRepoNotFound
	}
	return rec, nil
}

func (r *testRepo) ListByUser(ctx context.Context, userID string) ([]ScheduleRecord, error) {
	out := make([]ScheduleRecord, 0)
	for _, rec := range r.byID {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *testRepo) ListUnalerted(ctx context.Context) ([]ScheduleRecord, error) {
	out := make([]ScheduleRecord, 0)
	for _, rec := range r.byID {
		if rec.Status == StatusPending && !rec.AlertSent {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *testRepo) MarkAlertSent(ctx context.Context, id string) error {
	rec, ok := r.byID[id]
	if !ok {
		return errRepoNotFound
	}
	rec.AlertSent = true
	r.byID[id] = rec
	return nil
}

type testCatalog struct {
	names map[string]string // id -> name
}

func (c *testCatalog) NamesByID(ctx context.Context) (map[string]string, error) {
	return c.names, nil
}

func (c *testCatalog) IDsByName(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(c.names))
	for id, name := range c.names {
		out[name] = id
	}
	return out, nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Apply_EmptyStore_CreatesSingleRecord(t *testing.T) {
	repo := newTestRepo()
	catalog := &testCatalog{names: map[string]string{"med-met": "Metformin"}}
	svc := NewService(repo, catalog, time.UTC)

	now := time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	res, err := svc.Apply(context.Background(), "elder-1", DesiredState{
		1: {Pill: "Metformin", Alarms: []AlarmSlot{{Date: "2024-06-01", Time: "08:00"}}},
	})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if res.Created != 1 || res.Updated != 0 {
		t.Fatalf("expected 1 create / 0 updates, got %+v", res)
	}

	if len(repo.byID) != 1 {
		t.Fatalf("expected exactly one record in store, got %d", len(repo.byID))
	}
	for _, rec := range repo.byID {
		if rec.Container != 1 || rec.Date != "2024-06-01" || rec.Time != "08:00" {
			t.Fatalf("unexpected record %+v", rec)
		}
		if rec.Status != StatusPending || rec.AlertSent {
			t.Fatalf("expected Pending/alertSent=false, got %+v", rec)
		}
		if rec.MedicationID != "med-met" {
			t.Fatalf("expected resolved medication id, got %s", rec.MedicationID)
		}
	}
}

func TestService_Apply_Twice_NoDuplicates(t *testing.T) {
	repo := newTestRepo()
	catalog := &testCatalog{names: map[string]string{"med-met": "Metformin"}}
	svc := NewService(repo, catalog, time.UTC)

	desired := DesiredState{
		1: {Pill: "Metformin", Alarms: []AlarmSlot{
			{Date: "2024-06-01", Time: "08:00"},
			{Date: "2024-06-01", Time: "20:00"},
		}},
	}

	if _, err := svc.Apply(context.Background(), "elder-1", desired); err != nil {
		t.Fatalf("Apply #1 error: %v", err)
	}
	res, err := svc.Apply(context.Background(), "elder-1", desired)
	if err != nil {
		t.Fatalf("Apply #2 error: %v", err)
	}

	if res.Created != 0 || res.Updated != 2 {
		t.Fatalf("expected idempotent re-apply (0 creates / 2 updates), got %+v", res)
	}
	if len(repo.byID) != 2 {
		t.Fatalf("expected 2 records after re-apply, got %d", len(repo.byID))
	}
}

func TestService_Apply_InvalidDate_Rejected(t *testing.T) {
	repo := newTestRepo()
	catalog := &testCatalog{names: map[string]string{}}
	svc := NewService(repo, catalog, time.UTC)

	_, err := svc.Apply(context.Background(), "elder-1", DesiredState{
		1: {Pill: "X", Alarms: []AlarmSlot{{Date: "01/06/2024", Time: "08:00"}}},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatalf("nothing should be written on validation failure")
	}
}

func TestService_Apply_InvalidContainer_Rejected(t *testing.T) {
	repo := newTestRepo()
	catalog := &testCatalog{names: map[string]string{}}
	svc := NewService(repo, catalog, time.UTC)

	_, err := svc.Apply(context.Background(), "elder-1", DesiredState{
		4: {Pill: "X", Alarms: []AlarmSlot{{Date: "2024-06-01", Time: "08:00"}}},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for container 4, got %v", err)
	}
}

func TestService_ContainerViews_FreshReadFromStore(t *testing.T) {
	repo := newTestRepo()
	catalog := &testCatalog{names: map[string]string{"med-asp": "Aspirin"}}
	svc := NewService(repo, catalog, time.UTC)

	repo.byID["r1"] = ScheduleRecord{
		ID: "r1", UserID: "elder-1", MedicationID: "med-asp", Container: 2,
		Date: "2024-06-01", Time: "08:00", Status: StatusPending,
	}

	views, err := svc.ContainerViews(context.Background(), "elder-1")
	if err != nil {
		t.Fatalf("ContainerViews error: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 containers, got %d", len(views))
	}
	if views[2].Pill == nil || *views[2].Pill != "Aspirin" {
		t.Fatalf("expected Aspirin in container 2, got %v", views[2].Pill)
	}
}

func TestService_Cancel_OwnershipAndIdempotence(t *testing.T) {
	repo := newTestRepo()
	catalog := &testCatalog{names: map[string]string{}}
	svc := NewService(repo, catalog, time.UTC)

	repo.byID["r1"] = ScheduleRecord{
		ID: "r1", UserID: "elder-1", MedicationID: "m", Container: 1,
		Date: "2024-06-01", Time: "08:00", Status: StatusPending,
	}

	// Otro usuario no puede cancelar
	if _, err := svc.Cancel(context.Background(), "otro", "r1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	rec, err := svc.Cancel(context.Background(), "elder-1", "r1")
	if err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if rec.Status != StatusCancelled {
		t.Fatalf("expected Cancelled, got %s", rec.Status)
	}

	// Idempotente
	rec2, err := svc.Cancel(context.Background(), "elder-1", "r1")
	if err != nil {
		t.Fatalf("Cancel #2 error: %v", err)
	}
	if rec2.Status != StatusCancelled {
		t.Fatalf("expected Cancelled after idempotent cancel, got %s", rec2.Status)
	}
}
