package schedules

import "context"

type Repository interface {
	Create(ctx context.Context, r ScheduleRecord) error
	Update(ctx context.Context, r ScheduleRecord) error
	GetByID(ctx context.Context, id string) (ScheduleRecord, error)
	ListByUser(ctx context.Context, userID string) ([]ScheduleRecord, error)

	// ListUnalerted devuelve registros Pending con alertSent=false,
	// de todos los usuarios. Lo consume el dispatcher de alertas.
	ListUnalerted(ctx context.Context) ([]ScheduleRecord, error)
	MarkAlertSent(ctx context.Context, id string) error
}
