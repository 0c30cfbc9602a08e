package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin       = "admin"
	RoleAlmacenista = "almacenista"
	RoleAuditor     = "auditor"
)

// User representa un usuario interno del sistema (operador del inventario).
// La contraparte que firma actas no tiene cuenta: usa el token de firma.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, almacenista, auditor
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
