package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"pillminder/internal/domain/connections"
)

type ConnectionsRepo struct {
	db *sql.DB
}

func NewConnectionsRepo(db *sql.DB) *ConnectionsRepo {
	return &ConnectionsRepo{db: db}
}

func (r *ConnectionsRepo) Create(ctx context.Context, c connections.Connection) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO connections (
			id, elder_user_id, caregiver_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		c.ID,
		c.ElderUserID,
		c.CaregiverUserID,
		scopesToText(c.Scopes),
		string(c.Status),
		c.CreatedAt,
		c.UpdatedAt,
		toNullTime(c.RevokedAt),
	)
	return err
}

func (r *ConnectionsRepo) Update(ctx context.Context, c connections.Connection) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE connections
		SET
			scopes = $2,
			status = $3,
			updated_at = $4,
			revoked_at = $5
		WHERE id = $1
	`,
		c.ID,
		scopesToText(c.Scopes),
		string(c.Status),
		c.UpdatedAt,
		toNullTime(c.RevokedAt),
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

func (r *ConnectionsRepo) GetByID(ctx context.Context, id string) (connections.Connection, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return connections.Connection{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, elder_user_id, caregiver_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		FROM connections
		WHERE id = $1
	`, id)

	return scanConnectionRow(row)
}

func (r *ConnectionsRepo) ListByElder(ctx context.Context, elderUserID string) ([]connections.Connection, error) {
	elderUserID = strings.TrimSpace(elderUserID)
	if elderUserID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, elder_user_id, caregiver_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		FROM connections
		WHERE elder_user_id = $1
		ORDER BY created_at ASC
	`, elderUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanConnections(rows)
}

func (r *ConnectionsRepo) ListByCaregiver(ctx context.Context, caregiverUserID string) ([]connections.Connection, error) {
	caregiverUserID = strings.TrimSpace(caregiverUserID)
	if caregiverUserID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, elder_user_id, caregiver_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		FROM connections
		WHERE caregiver_user_id = $1
		ORDER BY updated_at DESC
	`, caregiverUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanConnections(rows)
}

func (r *ConnectionsRepo) GetActive(ctx context.Context, elderUserID, caregiverUserID string) (connections.Connection, error) {
	elderUserID = strings.TrimSpace(elderUserID)
	caregiverUserID = strings.TrimSpace(caregiverUserID)
	if elderUserID == "" || caregiverUserID == "" {
		return connections.Connection{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, elder_user_id, caregiver_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		FROM connections
		WHERE elder_user_id = $1
		  AND caregiver_user_id = $2
		  AND status = 'active'
		ORDER BY updated_at DESC
		LIMIT 1
	`, elderUserID, caregiverUserID)

	return scanConnectionRow(row)
}

func scanConnectionRow(row *sql.Row) (connections.Connection, error) {
	var c connections.Connection
	var status, scopes string
	var revokedAt sql.NullTime

	if err := row.Scan(
		&c.ID,
		&c.ElderUserID,
		&c.CaregiverUserID,
		&scopes,
		&status,
		&c.CreatedAt,
		&c.UpdatedAt,
		&revokedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return connections.Connection{}, ErrNotFound
		}
		return connections.Connection{}, err
	}

	c.Status = connections.Status(status)
	c.Scopes = textToScopes(scopes)
	if revokedAt.Valid {
		t := revokedAt.Time
		c.RevokedAt = &t
	}
	return c, nil
}

func scanConnections(rows *sql.Rows) ([]connections.Connection, error) {
	out := make([]connections.Connection, 0)
	for rows.Next() {
		var c connections.Connection
		var status, scopes string
		var revokedAt sql.NullTime

		if err := rows.Scan(
			&c.ID,
			&c.ElderUserID,
			&c.CaregiverUserID,
			&scopes,
			&status,
			&c.CreatedAt,
			&c.UpdatedAt,
			&revokedAt,
		); err != nil {
			return nil, err
		}

		c.Status = connections.Status(status)
		c.Scopes = textToScopes(scopes)
		if revokedAt.Valid {
			t := revokedAt.Time
			c.RevokedAt = &t
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// helpers

// Los scopes se guardan como texto separado por comas; son pocos y cerrados.
func scopesToText(in []connections.Scope) string {
	if len(in) == 0 {
		return ""
	}
	parts := make([]string, 0, len(in))
	for _, s := range in {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ",")
}

func textToScopes(in string) []connections.Scope {
	in = strings.TrimSpace(in)
	if in == "" {
		return []connections.Scope{}
	}
	parts := strings.Split(in, ",")
	out := make([]connections.Scope, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, connections.Scope(p))
	}
	return out
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
