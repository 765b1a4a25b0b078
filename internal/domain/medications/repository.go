package medications

import "context"

type Repository interface {
	Create(ctx context.Context, m Medication) error
	GetByID(ctx context.Context, id string) (Medication, error)
	GetByName(ctx context.Context, name string) (Medication, error)
	List(ctx context.Context) ([]Medication, error)
}
