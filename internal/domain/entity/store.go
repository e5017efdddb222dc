package entity

import "time"

// Store representa una tienda (sucursal) con su propio stock y sus cajas.
type Store struct {
	ID        string
	Name      string
	Code      string // único
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
