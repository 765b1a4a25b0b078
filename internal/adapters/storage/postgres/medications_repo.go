package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pillminder/internal/domain/medications"
)

type MedicationsRepo struct {
	db *sql.DB
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medications (
			id, name, dosage, form, description,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		m.ID,
		m.Name,
		m.Dosage,
		string(m.Form),
		m.Description,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

func (r *MedicationsRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medications.Medication{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, dosage, form, description, created_at, updated_at
		FROM medications
		WHERE id = $1
	`, id)

	return scanMedication(row)
}

func (r *MedicationsRepo) GetByName(ctx context.Context, name string) (medications.Medication, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return medications.Medication{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, dosage, form, description, created_at, updated_at
		FROM medications
		WHERE name = $1
	`, name)

	return scanMedication(row)
}

func (r *MedicationsRepo) List(ctx context.Context) ([]medications.Medication, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, dosage, form, description, created_at, updated_at
		FROM medications
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.Medication, 0)
	for rows.Next() {
		var m medications.Medication
		var form string
		if err := rows.Scan(
			&m.ID,
			&m.Name,
			&m.Dosage,
			&form,
			&m.Description,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		m.Form = medications.Form(form)
		out = append(out, m)
	}

	return out, rows.Err()
}

func scanMedication(row *sql.Row) (medications.Medication, error) {
	var m medications.Medication
	var form string

	if err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Dosage,
		&form,
		&m.Description,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return medications.Medication{}, ErrNotFound
		}
		return medications.Medication{}, err
	}

	m.Form = medications.Form(form)
	return m, nil
}
