package medications

import (
	"context"
	"errors"
	"sort"
	"testing"
)

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Medication
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Medication{}}
}

func (r *testRepo) Create(ctx context.Context, m Medication) error {
	if _, ok := r.byID[m.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[m.ID] = m
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Medication, error) {
	m, ok := r.byID[id]
	if !ok {
		return Medication{}, errRepoNotFound
	}
	return m, nil
}

func (r *testRepo) GetByName(ctx context.Context, name string) (Medication, error) {
	for _, m := range r.byID {
		if m.Name == name {
			return m, nil
		}
	}
	return Medication{}, errRepoNotFound
}

func (r *testRepo) List(ctx context.Context) ([]Medication, error) {
	out := make([]Medication, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func TestService_Create_Valid(t *testing.T) {
	svc := NewService(newTestRepo())

	m, err := svc.Create(context.Background(), CreateInput{
		Name:   "  Metformin ",
		Dosage: "500mg",
		Form:   "tablet",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if m.ID == "" {
		t.Fatalf("expected generated ID")
	}
	if m.Name != "Metformin" {
		t.Fatalf("expected trimmed name, got %q", m.Name)
	}
	if m.Form != FormTablet {
		t.Fatalf("expected form tablet, got %s", m.Form)
	}
}

func TestService_Create_DefaultsFormToOther(t *testing.T) {
	svc := NewService(newTestRepo())

	m, err := svc.Create(context.Background(), CreateInput{Name: "Insulin"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if m.Form != FormOther {
		t.Fatalf("expected form other, got %s", m.Form)
	}
}

func TestService_Create_Invalid(t *testing.T) {
	svc := NewService(newTestRepo())

	if _, err := svc.Create(context.Background(), CreateInput{Name: "   "}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for empty name, got %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateInput{Name: "X", Form: "gas"}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for unknown form, got %v", err)
	}
}

func TestService_Create_Duplicate(t *testing.T) {
	svc := NewService(newTestRepo())

	if _, err := svc.Create(context.Background(), CreateInput{Name: "Aspirin", Form: "tablet"}); err != nil {
		t.Fatalf("Create #1 error: %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateInput{Name: "Aspirin", Form: "tablet"}); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestService_NamesByID_And_IDsByName(t *testing.T) {
	svc := NewService(newTestRepo())

	a, err := svc.Create(context.Background(), CreateInput{Name: "Aspirin", Form: "tablet"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	b, err := svc.Create(context.Background(), CreateInput{Name: "Metformin", Form: "tablet"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	names, err := svc.NamesByID(context.Background())
	if err != nil {
		t.Fatalf("NamesByID error: %v", err)
	}
	if names[a.ID] != "Aspirin" || names[b.ID] != "Metformin" {
		t.Fatalf("unexpected NamesByID map: %#v", names)
	}

	ids, err := svc.IDsByName(context.Background())
	if err != nil {
		t.Fatalf("IDsByName error: %v", err)
	}
	if ids["Aspirin"] != a.ID || ids["Metformin"] != b.ID {
		t.Fatalf("unexpected IDsByName map: %#v", ids)
	}
}
