package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// Privileged reports whether the role may check members in and read rosters.
func (r Role) Privileged() bool {
	return r == RoleStaff || r == RoleAdmin
}

type Profile struct {
	ID        string    `json:"id" validate:"required"`
	Name      string    `json:"name" validate:"max=120"`
	Email     string    `json:"email" validate:"omitempty,email"`
	Role      Role      `json:"role" validate:"oneof=user staff admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Profile) Validate() error {
	return validateStruct(p)
}
