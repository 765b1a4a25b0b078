package connections

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadState     = errors.New("invalid state")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type InviteInput struct {
	ElderUserID     string
	CaregiverUserID string
	Scopes          []Scope
}

// Invite crea (o reusa) la invitación del elder hacia un caregiver.
// Si ya existe una conexión no-revocada para el par, se actualizan sus
// scopes en vez de duplicar; duplicados viejos se revocan best-effort.
func (s *Service) Invite(ctx context.Context, in InviteInput) (Connection, error) {
	elderID := strings.TrimSpace(in.ElderUserID)
	caregiverID := strings.TrimSpace(in.CaregiverUserID)

	if elderID == "" || caregiverID == "" {
		return Connection{}, ErrInvalidInput
	}
	if elderID == caregiverID {
		return Connection{}, ErrInvalidInput
	}

	// Scopes: vacío => default de solo lectura. Con valores => validación estricta.
	var scopes []Scope
	var err error
	if len(in.Scopes) == 0 {
		scopes = []Scope{ScopeScheduleRead}
	} else {
		scopes, err = normalizeScopesStrict(in.Scopes)
		if err != nil {
			return Connection{}, err
		}
		if len(scopes) == 0 {
			return Connection{}, ErrInvalidInput
		}
	}

	now := s.now()

	existing, allMatches, err := s.findLatestMatch(ctx, elderID, caregiverID)
	if err == nil && existing.ID != "" {
		// Si el "winner" está revoked, permitimos re-invitar creando uno nuevo.
		if existing.Status != StatusRevoked {
			_ = s.revokeOtherMatches(ctx, existing.ID, allMatches, now)

			existing.Scopes = scopes
			existing.UpdatedAt = now

			if err := s.repo.Update(ctx, existing); err != nil {
				return Connection{}, err
			}
			return existing, nil
		}
	}

	c := Connection{
		ID:              uuid.NewString(),
		ElderUserID:     elderID,
		CaregiverUserID: caregiverID,
		Scopes:          scopes,
		Status:          StatusInvited,
		CreatedAt:       now,
		UpdatedAt:       now,
		RevokedAt:       nil,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return Connection{}, err
	}
	return c, nil
}

// Accept la ejecuta el caregiver invitado. Idempotente sobre active.
func (s *Service) Accept(ctx context.Context, connectionID, caregiverUserID string) (Connection, error) {
	connectionID = strings.TrimSpace(connectionID)
	caregiverUserID = strings.TrimSpace(caregiverUserID)

	if connectionID == "" || caregiverUserID == "" {
		return Connection{}, ErrInvalidInput
	}

	c, err := s.repo.GetByID(ctx, connectionID)
	if err != nil {
		return Connection{}, ErrNotFound
	}

	if c.CaregiverUserID != caregiverUserID {
		return Connection{}, ErrForbidden
	}
	if c.Status == StatusRevoked {
		return Connection{}, ErrBadState
	}
	if c.Status == StatusActive {
		return c, nil
	}
	if c.Status != StatusInvited {
		return Connection{}, ErrBadState
	}

	c.Status = StatusActive
	c.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, c); err != nil {
		return Connection{}, err
	}
	return c, nil
}

// Revoke la ejecuta el elder dueño. Idempotente sobre revoked.
func (s *Service) Revoke(ctx context.Context, connectionID, elderUserID string) (Connection, error) {
	connectionID = strings.TrimSpace(connectionID)
	elderUserID = strings.TrimSpace(elderUserID)

	if connectionID == "" || elderUserID == "" {
		return Connection{}, ErrInvalidInput
	}

	c, err := s.repo.GetByID(ctx, connectionID)
	if err != nil {
		return Connection{}, ErrNotFound
	}

	if c.ElderUserID != elderUserID {
		return Connection{}, ErrForbidden
	}
	if c.Status == StatusRevoked {
		return c, nil
	}

	now := s.now()
	c.Status = StatusRevoked
	c.UpdatedAt = now
	c.RevokedAt = &now

	if err := s.repo.Update(ctx, c); err != nil {
		return Connection{}, err
	}
	return c, nil
}

func (s *Service) ListByElder(ctx context.Context, elderUserID string) ([]Connection, error) {
	elderUserID = strings.TrimSpace(elderUserID)
	if elderUserID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByElder(ctx, elderUserID)
}

func (s *Service) ListByCaregiver(ctx context.Context, caregiverUserID string) ([]Connection, error) {
	caregiverUserID = strings.TrimSpace(caregiverUserID)
	if caregiverUserID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByCaregiver(ctx, caregiverUserID)
}

func (s *Service) GetActive(ctx context.Context, elderUserID, caregiverUserID string) (Connection, error) {
	elderUserID = strings.TrimSpace(elderUserID)
	caregiverUserID = strings.TrimSpace(caregiverUserID)

	if elderUserID == "" || caregiverUserID == "" {
		return Connection{}, ErrInvalidInput
	}
	c, err := s.repo.GetActive(ctx, elderUserID, caregiverUserID)
	if err != nil {
		return Connection{}, ErrNotFound
	}
	return c, nil
}

// HasScope valida si la conexión incluye un scope.
func HasScope(c Connection, scope Scope) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

func (s *Service) findLatestMatch(ctx context.Context, elderID, caregiverID string) (Connection, []Connection, error) {
	items, err := s.repo.ListByElder(ctx, elderID)
	if err != nil {
		return Connection{}, nil, err
	}

	matches := make([]Connection, 0)
	var winner Connection
	hasWinner := false

	for _, c := range items {
		if c.ElderUserID != elderID || c.CaregiverUserID != caregiverID {
			continue
		}
		matches = append(matches, c)

		if !hasWinner || c.UpdatedAt.After(winner.UpdatedAt) {
			winner = c
			hasWinner = true
		}
	}

	if !hasWinner {
		return Connection{}, matches, ErrNotFound
	}
	return winner, matches, nil
}

func (s *Service) revokeOtherMatches(ctx context.Context, winnerID string, matches []Connection, now time.Time) error {
	for _, c := range matches {
		if c.ID == "" || c.ID == winnerID {
			continue
		}
		if c.Status == StatusRevoked {
			continue
		}
		c.Status = StatusRevoked
		c.UpdatedAt = now
		c.RevokedAt = &now
		_ = s.repo.Update(ctx, c) // best-effort
	}
	return nil
}

func normalizeScopesStrict(in []Scope) ([]Scope, error) {
	allowed := map[Scope]struct{}{
		ScopeScheduleRead:  {},
		ScopeScheduleWrite: {},
	}

	seen := map[Scope]struct{}{}
	out := make([]Scope, 0, len(in))

	for _, raw := range in {
		s := Scope(strings.TrimSpace(string(raw)))
		if s == "" {
			continue
		}
		if _, ok := allowed[s]; !ok {
			return nil, ErrInvalidInput
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out, nil
}
