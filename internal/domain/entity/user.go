package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin      = "admin"
	RoleAlmoxarife = "almoxarife"
	RoleConsulta   = "consulta"
)

// User representa un operador del almacén. Su email queda como responsable de cada movimiento.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, almoxarife, consulta
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsValidRole indica si r es un rol conocido.
func IsValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleAlmoxarife, RoleConsulta:
		return true
	}
	return false
}
