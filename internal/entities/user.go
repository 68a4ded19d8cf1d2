package entities

import "time"

// Роли сотрудников
const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleCallCenter = "call_center"
	RoleMeasurer   = "measurer"
	RoleInstaller  = "installer"
)

// User - сотрудник компании.
type User struct {
	ID        uint64    `json:"id"`
	Fio       string    `json:"fio"`
	Email     *string   `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
