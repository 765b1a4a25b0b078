package connections

import "context"

type Repository interface {
	Create(ctx context.Context, c Connection) error
	Update(ctx context.Context, c Connection) error
	GetByID(ctx context.Context, id string) (Connection, error)
	ListByElder(ctx context.Context, elderUserID string) ([]Connection, error)
	ListByCaregiver(ctx context.Context, caregiverUserID string) ([]Connection, error)
	GetActive(ctx context.Context, elderUserID, caregiverUserID string) (Connection, error)
}
