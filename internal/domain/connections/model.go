package connections

import "time"

// Scope define qué puede hacer el caregiver sobre el elder conectado.
type Scope string

const (
	ScopeScheduleRead  Scope = "schedule:read"
	ScopeScheduleWrite Scope = "schedule:write"
)

type Status string

const (
	StatusInvited Status = "invited"
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Connection vincula a un elder con un caregiver.
// El elder invita y revoca; el caregiver acepta.
type Connection struct {
	ID string

	ElderUserID     string // quien comparte su schedule
	CaregiverUserID string

	Scopes []Scope
	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
