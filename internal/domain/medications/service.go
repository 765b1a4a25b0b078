package medications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("medication already exists")
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

type CreateInput struct {
	Name        string
	Dosage      string
	Form        string
	Description string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Medication, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Medication{}, ErrInvalidInput
	}

	form := Form(strings.TrimSpace(in.Form))
	if form == "" {
		form = FormOther
	}
	switch form {
	case FormTablet, FormCapsule, FormLiquid, FormInjection, FormOther:
	default:
		return Medication{}, ErrInvalidInput
	}

	// El nombre es la clave de resolución del writer; no admitimos duplicados.
	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return Medication{}, ErrDuplicate
	}

	now := s.now()
	m := Medication{
		ID:          uuid.NewString(),
		Name:        name,
		Dosage:      strings.TrimSpace(in.Dosage),
		Form:        form,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Medication{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Medication, error) {
	return s.repo.List(ctx)
}

// NamesByID devuelve la tabla id->nombre que consume el reconciler.
func (s *Service) NamesByID(ctx context.Context) (map[string]string, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(items))
	for _, m := range items {
		out[m.ID] = m.Name
	}
	return out, nil
}

// IDsByName devuelve la tabla nombre->id que consume el writer.
// La resolución es por nombre exacto.
func (s *Service) IDsByName(ctx context.Context) (map[string]string, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(items))
	for _, m := range items {
		out[m.Name] = m.ID
	}
	return out, nil
}
