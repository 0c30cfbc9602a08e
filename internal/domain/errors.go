package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrUserNotFound        = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists  = errors.New("el email ya está registrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrItemNotAvailable    = errors.New("el activo no está disponible")
	ErrInvalidTransition   = errors.New("transición de estado inválida")
	ErrLineNotFound        = errors.New("línea del acta no encontrada")
	ErrLineAlreadyReturned = errors.New("la línea ya fue devuelta")
	ErrTokenUsed           = errors.New("el token de firma ya fue utilizado")
	ErrTokenExpired        = errors.New("el token de firma expiró")
)
