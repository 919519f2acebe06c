package domain

import "time"

// Role enumerates operator roles. The set is closed; visibility rules
// dispatch on it exhaustively.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleTechnician   Role = "technician"
	RoleTechnicianN2 Role = "technician_n2"
	RoleUser         Role = "user"
	RoleFinancial    Role = "financial"
)

// User is the full account model for anyone who signs in: requesters,
// technicians, admins and financial staff alike.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRef is the lightweight reference embedded in snapshots and
// notifications.
type UserRef struct {
	ID   string
	Name string
}

// Ref returns the lightweight reference for the user.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name}
}
