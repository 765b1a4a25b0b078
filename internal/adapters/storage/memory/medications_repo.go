package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pillminder/internal/domain/medications"
)

var (
	ErrNotFound = errors.New("not found")
)

type medicationRepo struct {
	mu   sync.RWMutex
	byID map[string]medications.Medication
}

func NewMedicationsRepo() medications.Repository {
	return &medicationRepo{
		byID: make(map[string]medications.Medication),
	}
}

func (r *medicationRepo) Create(ctx context.Context, m medications.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return errors.New("medication id required")
	}
	if _, exists := r.byID[m.ID]; exists {
		return errors.New("medication already exists")
	}
	r.byID[m.ID] = m
	return nil
}

func (r *medicationRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return medications.Medication{}, ErrNotFound
	}
	return m, nil
}

func (r *medicationRepo) GetByName(ctx context.Context, name string) (medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.byID {
		if m.Name == name {
			return m, nil
		}
	}
	return medications.Medication{}, ErrNotFound
}

func (r *medicationRepo) List(ctx context.Context) ([]medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medications.Medication, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, m)
	}

	// Orden estable por nombre (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	return out, nil
}
