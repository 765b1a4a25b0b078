package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pillminder/internal/domain/schedules"
)

type SchedulesRepo struct {
	db *sql.DB
}

func NewSchedulesRepo(db *sql.DB) *SchedulesRepo {
	return &SchedulesRepo{db: db}
}

func (r *SchedulesRepo) Create(ctx context.Context, rec schedules.ScheduleRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO schedule_records (
			id, user_id, medication_id, container,
			date, time,
			status, alert_sent,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		rec.ID,
		rec.UserID,
		rec.MedicationID,
		rec.Container,
		rec.Date,
		rec.Time,
		string(rec.Status),
		rec.AlertSent,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	return err
}

func (r *SchedulesRepo) Update(ctx context.Context, rec schedules.ScheduleRecord) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE schedule_records
		SET
			medication_id = $2,
			container = $3,
			date = $4,
			time = $5,
			status = $6,
			alert_sent = $7,
			updated_at = $8
		WHERE id = $1
	`,
		rec.ID,
		rec.MedicationID,
		rec.Container,
		rec.Date,
		rec.Time,
		string(rec.Status),
		rec.AlertSent,
		rec.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SchedulesRepo) GetByID(ctx context.Context, id string) (schedules.ScheduleRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return schedules.ScheduleRecord{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, user_id, medication_id, container,
			date, time,
			status, alert_sent,
			created_at, updated_at
		FROM schedule_records
		WHERE id = $1
	`, id)

	var rec schedules.ScheduleRecord
	var status string
	if err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.MedicationID,
		&rec.Container,
		&rec.Date,
		&rec.Time,
		&status,
		&rec.AlertSent,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return schedules.ScheduleRecord{}, ErrNotFound
		}
		return schedules.ScheduleRecord{}, err
	}

	rec.Status = schedules.Status(status)
	return rec, nil
}

func (r *SchedulesRepo) ListByUser(ctx context.Context, userID string) ([]schedules.ScheduleRecord, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, user_id, medication_id, container,
			date, time,
			status, alert_sent,
			created_at, updated_at
		FROM schedule_records
		WHERE user_id = $1
		ORDER BY date ASC, time ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (r *SchedulesRepo) ListUnalerted(ctx context.Context) ([]schedules.ScheduleRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, user_id, medication_id, container,
			date, time,
			status, alert_sent,
			created_at, updated_at
		FROM schedule_records
		WHERE status = 'Pending'
		  AND alert_sent = FALSE
		ORDER BY date ASC, time ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (r *SchedulesRepo) MarkAlertSent(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE schedule_records
		SET alert_sent = TRUE
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRecords(rows *sql.Rows) ([]schedules.ScheduleRecord, error) {
	out := make([]schedules.ScheduleRecord, 0)
	for rows.Next() {
		var rec schedules.ScheduleRecord
		var status string

		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.MedicationID,
			&rec.Container,
			&rec.Date,
			&rec.Time,
			&status,
			&rec.AlertSent,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, err
		}

		rec.Status = schedules.Status(status)
		out = append(out, rec)
	}
	return out, rows.Err()
}
