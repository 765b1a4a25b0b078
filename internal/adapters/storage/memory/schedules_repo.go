package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pillminder/internal/domain/schedules"
)

type scheduleRepo struct {
	mu   sync.RWMutex
	byID map[string]schedules.ScheduleRecord
}

func NewSchedulesRepo() schedules.Repository {
	return &scheduleRepo{
		byID: make(map[string]schedules.ScheduleRecord),
	}
}

func (r *scheduleRepo) Create(ctx context.Context, rec schedules.ScheduleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("schedule record id required")
	}
	if _, exists := r.byID[rec.ID]; exists {
		return errors.New("schedule record already exists")
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *scheduleRepo) Update(ctx context.Context, rec schedules.ScheduleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("schedule record id required")
	}
	if _, exists := r.byID[rec.ID]; !exists {
		return ErrNotFound
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *scheduleRepo) GetByID(ctx context.Context, id string) (schedules.ScheduleRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return schedules.ScheduleRecord{}, ErrNotFound
	}
	return rec, nil
}

func (r *scheduleRepo) ListByUser(ctx context.Context, userID string) ([]schedules.ScheduleRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]schedules.ScheduleRecord, 0)
	for _, rec := range r.byID {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}

	// Orden estable por fecha+hora asc (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		ki := out[i].Date + " " + out[i].Time
		kj := out[j].Date + " " + out[j].Time
		if ki != kj {
			return ki < kj
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *scheduleRepo) ListUnalerted(ctx context.Context) ([]schedules.ScheduleRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]schedules.ScheduleRecord, 0)
	for _, rec := range r.byID {
		if rec.Status == schedules.StatusPending && !rec.AlertSent {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *scheduleRepo) MarkAlertSent(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	rec.AlertSent = true
	r.byID[id] = rec
	return nil
}
