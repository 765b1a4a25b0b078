package schedules

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
)

// Catalog es lo que el módulo necesita del catálogo de medicamentos.
// Definido acá para no importar medications y evitar ciclos.
type Catalog interface {
	NamesByID(ctx context.Context) (map[string]string, error)
	IDsByName(ctx context.Context) (map[string]string, error)
}

type Service struct {
	repo    Repository
	catalog Catalog
	loc     *time.Location
	now     func() time.Time
}

func NewService(repo Repository, catalog Catalog, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:    repo,
		catalog: catalog,
		loc:     loc,
		now:     time.Now,
	}
}

// ContainerViews reconcilia los registros del usuario en la vista de
// tres containers. Siempre se parte de una lectura fresca del store.
func (s *Service) ContainerViews(ctx context.Context, userID string) (map[int]ContainerView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}

	records, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	names, err := s.catalog.NamesByID(ctx)
	if err != nil {
		return nil, err
	}

	return Reconcile(records, names, s.loc), nil
}

func (s *Service) ListRecords(ctx context.Context, userID string) ([]ScheduleRecord, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID)
}

// ApplyResult resume lo que hizo Apply.
type ApplyResult struct {
	Created           int
	Updated           int
	SkippedContainers []int
}

// Apply persiste un estado deseado como batch de upserts.
// Las escrituras del plan salen concurrentes y se esperan juntas; el primer
// error es el error de la operación y no hay rollback de lo ya aplicado.
// El caller debe releer (ContainerViews) en vez de confiar en su estado local.
func (s *Service) Apply(ctx context.Context, userID string, desired DesiredState) (ApplyResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ApplyResult{}, ErrInvalidInput
	}
	if err := validateDesired(desired); err != nil {
		return ApplyResult{}, err
	}

	idsByName, err := s.catalog.IDsByName(ctx)
	if err != nil {
		return ApplyResult{}, err
	}
	existing, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return ApplyResult{}, err
	}

	plan := PlanWrites(desired, existing, idsByName, userID, s.now())

	g, gctx := errgroup.WithContext(ctx)
	for _, rec := range plan.Creates {
		rec := rec
		g.Go(func() error {
			return s.repo.Create(gctx, rec)
		})
	}
	for _, rec := range plan.Updates {
		rec := rec
		g.Go(func() error {
			return s.repo.Update(gctx, rec)
		})
	}
	if err := g.Wait(); err != nil {
		return ApplyResult{}, err
	}

	return ApplyResult{
		Created:           len(plan.Creates),
		Updated:           len(plan.Updates),
		SkippedContainers: plan.SkippedContainers,
	}, nil
}

// Cancel marca el registro como Cancelled (soft delete). Idempotente.
// Solo el dueño del registro puede cancelarlo.
func (s *Service) Cancel(ctx context.Context, userID, recordID string) (ScheduleRecord, error) {
	userID = strings.TrimSpace(userID)
	recordID = strings.TrimSpace(recordID)
	if userID == "" || recordID == "" {
		return ScheduleRecord{}, ErrInvalidInput
	}

	rec, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return ScheduleRecord{}, err
	}
	if rec.UserID != userID {
		return ScheduleRecord{}, ErrForbidden
	}
	if rec.Status == StatusCancelled {
		return rec, nil
	}

	rec.Status = StatusCancelled
	rec.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, rec); err != nil {
		return ScheduleRecord{}, err
	}
	return rec, nil
}

// validateDesired aplica la validación de frontera del store:
// containers 1..3 y date/time bien formados. Nada de defaults silenciosos.
func validateDesired(desired DesiredState) error {
	for c, a := range desired {
		if !ValidContainer(c) {
			return ErrInvalidInput
		}
		if a.Pill == "" && len(a.Alarms) == 0 {
			continue
		}
		for _, alarm := range a.Alarms {
			if _, err := time.Parse(DateLayout, alarm.Date); err != nil {
				return ErrInvalidInput
			}
			if _, err := time.Parse(TimeLayout, alarm.Time); err != nil {
				return ErrInvalidInput
			}
		}
	}
	return nil
}
