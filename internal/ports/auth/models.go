package auth

// Role es el rol numérico que viaja en el token.
// 1=admin, 2=elder, 3=caregiver.
type Role int

const (
	RoleAdmin     Role = 1
	RoleElder     Role = 2
	RoleCaregiver Role = 3
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleElder || r == RoleCaregiver
}

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Role   Role
	Email  string
}
