package connections

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Connection
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Connection{}}
}

func (r *testRepo) Create(ctx context.Context, c Connection) error {
	if c.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[c.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[c.ID] = c
	return nil
}

func (r *testRepo) Update(ctx context.Context, c Connection) error {
	if _, ok := r.byID[c.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[c.ID] = c
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Connection, error) {
	c, ok := r.byID[id]
	if !ok {
		return Connection{}, errRepoNotFound
	}
	return c, nil
}

func (r *testRepo) ListByElder(ctx context.Context, elderUserID string) ([]Connection, error) {
	out := make([]Connection, 0)
	for _, c := range r.byID {
		if c.ElderUserID == elderUserID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *testRepo) ListByCaregiver(ctx context.Context, caregiverUserID string) ([]Connection, error) {
	out := make([]Connection, 0)
	for _, c := range r.byID {
		if c.CaregiverUserID == caregiverUserID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *testRepo) GetActive(ctx context.Context, elderUserID, caregiverUserID string) (Connection, error) {
	var winner Connection
	has := false

	for _, c := range r.byID {
		if c.ElderUserID != elderUserID || c.CaregiverUserID != caregiverUserID {
			continue
		}
		if c.Status != StatusActive {
			continue
		}
		if !has || c.UpdatedAt.After(winner.UpdatedAt) {
			winner = c
			has = true
		}
	}

	if !has {
		return Connection{}, errRepoNotFound
	}
	return winner, nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Invite_DefaultScope_WhenEmpty(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	c, err := svc.Invite(context.Background(), InviteInput{
		ElderUserID:     "elder-1",
		CaregiverUserID: "care-1",
		Scopes:          nil,
	})
	if err != nil {
		t.Fatalf("Invite returned error: %v", err)
	}
	if c.Status != StatusInvited {
		t.Fatalf("expected status invited, got %s", c.Status)
	}
	if c.CreatedAt != now || c.UpdatedAt != now {
		t.Fatalf("expected CreatedAt/UpdatedAt to be now")
	}
	// default: solo lectura
	if !HasScope(c, ScopeScheduleRead) {
		t.Fatalf("expected default scope schedule:read, got %#v", c.Scopes)
	}
	if HasScope(c, ScopeScheduleWrite) {
		t.Fatalf("write scope must not be granted by default")
	}
}

func TestService_Invite_StrictScopes_RejectsUnknown(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	_, err := svc.Invite(context.Background(), InviteInput{
		ElderUserID:     "elder-1",
		CaregiverUserID: "care-1",
		Scopes:          []Scope{ScopeScheduleRead, Scope("bad:scope")},
	})
	if err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Invite_SelfConnection_Rejected(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	_, err := svc.Invite(context.Background(), InviteInput{
		ElderUserID:     "user-1",
		CaregiverUserID: "user-1",
	})
	if err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for self connection, got %v", err)
	}
}

func TestService_Invite_Dedup_UpdatesSameConnection(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now1 := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	now2 := now1.Add(5 * time.Minute)

	svc.now = func() time.Time { return now1 }
	c1, err := svc.Invite(context.Background(), InviteInput{
		ElderUserID:     "elder-1",
		CaregiverUserID: "care-1",
		Scopes:          []Scope{ScopeScheduleRead},
	})
	if err != nil {
		t.Fatalf("Invite #1 error: %v", err)
	}

	svc.now = func() time.Time { return now2 }
	c2, err := svc.Invite(context.Background(), InviteInput{
		ElderUserID:     "elder-1",
		CaregiverUserID: "care-1",
		Scopes:          []Scope{ScopeScheduleRead, ScopeScheduleWrite},
	})
	if err != nil {
		t.Fatalf("Invite #2 error: %v", err)
	}

	if c2.ID != c1.ID {
		t.Fatalf("expected same connection ID (dedup), got %s vs %s", c1.ID, c2.ID)
	}
	if c2.UpdatedAt != now2 {
		t.Fatalf("expected UpdatedAt to change on reinvite")
	}
	if !HasScope(c2, ScopeScheduleWrite) {
		t.Fatalf("expected scopes updated, got %#v", c2.Scopes)
	}
}

func TestService_Accept_SetsActive_AndIdempotent(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	c, err := svc.Invite(context.Background(), InviteInput{
		ElderUserID:     "elder-1",
		CaregiverUserID: "care-1",
	})
	if err != nil {
		t.Fatalf("Invite error: %v", err)
	}

	// Solo el caregiver invitado puede aceptar
	if _, err := svc.Accept(context.Background(), c.ID, "otro"); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	accepted, err := svc.Accept(context.Background(), c.ID, "care-1")
	if err != nil {
		t.Fatalf("Accept error: %v", err)
	}
	if accepted.Status != StatusActive {
		t.Fatalf("expected active, got %s", accepted.Status)
	}

	// idempotente
	accepted2, err := svc.Accept(context.Background(), c.ID, "care-1")
	if err != nil {
		t.Fatalf("Accept #2 error: %v", err)
	}
	if accepted2.Status != StatusActive {
		t.Fatalf("expected active after idempotent accept, got %s", accepted2.Status)
	}
}

func TestService_Revoke_ThenAcceptFails(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	c, err := svc.Invite(context.Background(), InviteInput{
		ElderUserID:     "elder-1",
		CaregiverUserID: "care-1",
	})
	if err != nil {
		t.Fatalf("Invite error: %v", err)
	}

	// Solo el elder dueño puede revocar
	if _, err := svc.Revoke(context.Background(), c.ID, "care-1"); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	revoked, err := svc.Revoke(context.Background(), c.ID, "elder-1")
	if err != nil {
		t.Fatalf("Revoke error: %v", err)
	}
	if revoked.Status != StatusRevoked || revoked.RevokedAt == nil {
		t.Fatalf("expected revoked with RevokedAt, got %+v", revoked)
	}

	if _, err := svc.Accept(context.Background(), c.ID, "care-1"); err != ErrBadState {
		t.Fatalf("expected ErrBadState accepting revoked connection, got %v", err)
	}
}
