package user

import "time"

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// User is a stored account. Password holds a bcrypt hash, or a legacy
// plain-text value until migration has run.
type User struct {
	ID        string
	Username  string
	Password  string
	Role      Role
	CreatedAt time.Time
}
