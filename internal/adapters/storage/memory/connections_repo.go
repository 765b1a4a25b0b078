package memory

import (
	"context"
	"errors"
	"sync"

	"pillminder/internal/domain/connections"
)

type connectionRepo struct {
	mu   sync.RWMutex
	byID map[string]connections.Connection
}

func NewConnectionsRepo() connections.Repository {
	return &connectionRepo{
		byID: make(map[string]connections.Connection),
	}
}

func (r *connectionRepo) Create(ctx context.Context, c connections.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" {
		return errors.New("connection id required")
	}
	if _, exists := r.byID[c.ID]; exists {
		return errors.New("connection already exists")
	}
	r.byID[c.ID] = c
	return nil
}

func (r *connectionRepo) Update(ctx context.Context, c connections.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" {
		return errors.New("connection id required")
	}
	if _, exists := r.byID[c.ID]; !exists {
		return ErrNotFound
	}
	r.byID[c.ID] = c
	return nil
}

func (r *connectionRepo) GetByID(ctx context.Context, id string) (connections.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return connections.Connection{}, ErrNotFound
	}
	return c, nil
}

func (r *connectionRepo) ListByElder(ctx context.Context, elderUserID string) ([]connections.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]connections.Connection, 0)
	for _, c := range r.byID {
		if c.ElderUserID == elderUserID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *connectionRepo) ListByCaregiver(ctx context.Context, caregiverUserID string) ([]connections.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]connections.Connection, 0)
	for _, c := range r.byID {
		if c.CaregiverUserID == caregiverUserID {
			out = append(out, c)
		}
	}
	return out, nil
}

// Defensivo: si por data sucia existieran múltiples conexiones activas,
// devolvemos la más reciente por UpdatedAt (y en empate, por CreatedAt).
func (r *connectionRepo) GetActive(ctx context.Context, elderUserID, caregiverUserID string) (connections.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var winner connections.Connection
	has := false

	for _, c := range r.byID {
		if c.ElderUserID != elderUserID {
			continue
		}
		if c.CaregiverUserID != caregiverUserID {
			continue
		}
		if c.Status != connections.StatusActive {
			continue
		}

		if !has {
			winner = c
			has = true
			continue
		}

		if c.UpdatedAt.After(winner.UpdatedAt) {
			winner = c
			continue
		}
		if c.UpdatedAt.Equal(winner.UpdatedAt) && c.CreatedAt.After(winner.CreatedAt) {
			winner = c
		}
	}

	if !has {
		return connections.Connection{}, ErrNotFound
	}
	return winner, nil
}
