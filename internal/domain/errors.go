package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
// Los errores específicos envuelven un tipo base con %w para que errors.Is funcione con ambos.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrNotAssigned       = errors.New("producto no asignado a la tienda")

	ErrRegisterAlreadyOpen   = fmt.Errorf("%w: la tienda ya tiene una caja abierta", ErrConflict)
	ErrRegisterAlreadyClosed = fmt.Errorf("%w: la caja ya está cerrada", ErrConflict)
	ErrRegisterClosed        = fmt.Errorf("%w: la caja no está abierta", ErrConflict)
	ErrSaleAlreadyCancelled  = fmt.Errorf("%w: la venta ya fue anulada", ErrConflict)
	ErrSourceNotAssigned     = fmt.Errorf("%w: sin stock registrado en la tienda origen", ErrNotAssigned)
	ErrProductNotAssigned    = fmt.Errorf("%w: sin stock registrado en la tienda", ErrNotAssigned)
)

// FieldError error de validación asociado a un campo concreto de la entrada.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap permite errors.Is(err, ErrInvalidInput).
func (e *FieldError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un FieldError.
func Invalid(field, message string) error {
	return &FieldError{Field: field, Message: message}
}
