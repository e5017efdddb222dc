// Package memory implementa los puertos de repositorio en memoria.
// Lo usan las pruebas de casos de uso y el modo demo (sin DATABASE_URL).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
	"github.com/jhoicas/Multitienda-api/internal/domain/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

type stockKey struct {
	storeID   string
	productID string
}

type state struct {
	stores    map[string]entity.Store
	products  map[string]entity.Product
	users     map[string]entity.User
	stock     map[stockKey]entity.StockLevel
	registers map[string]entity.CashRegister
	movements []entity.CashMovement
	sales     map[string]entity.Sale
	items     []entity.SaleItem
	transfers []entity.StockTransfer
}

func newState() *state {
	return &state{
		stores:    make(map[string]entity.Store),
		products:  make(map[string]entity.Product),
		users:     make(map[string]entity.User),
		stock:     make(map[stockKey]entity.StockLevel),
		registers: make(map[string]entity.CashRegister),
		sales:     make(map[string]entity.Sale),
	}
}

// clone copia el estado completo. Los valores se guardan sin Items ni punteros compartidos mutables.
func (st *state) clone() *state {
	c := newState()
	for k, v := range st.stores {
		c.stores[k] = v
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.stock {
		c.stock[k] = v
	}
	for k, v := range st.registers {
		c.registers[k] = v
	}
	for k, v := range st.sales {
		c.sales[k] = v
	}
	c.movements = append([]entity.CashMovement(nil), st.movements...)
	c.items = append([]entity.SaleItem(nil), st.items...)
	c.transfers = append([]entity.StockTransfer(nil), st.transfers...)
	return c
}

// DB base de datos en memoria. Un solo mutex serializa todo: una transacción lo retiene completo.
type DB struct {
	mu      sync.Mutex
	data    *state
	saleSeq int64 // como una secuencia de BD: no retrocede con el rollback
}

// NewDB crea una base vacía.
func NewDB() *DB {
	return &DB{data: newState()}
}

// conn da acceso al estado; inTx indica que el llamador ya tiene el mutex.
type conn struct {
	db   *DB
	inTx bool
}

func (c conn) do(fn func(st *state) error) error {
	if !c.inTx {
		c.db.mu.Lock()
		defer c.db.mu.Unlock()
	}
	return fn(c.db.data)
}

func (db *DB) pool() conn { return conn{db: db} }

// Stores repositorio de tiendas fuera de transacción.
func (db *DB) Stores() *StoreRepo { return &StoreRepo{c: db.pool()} }

// Users repositorio de usuarios fuera de transacción.
func (db *DB) Users() *UserRepo { return &UserRepo{c: db.pool()} }

// Products repositorio de productos fuera de transacción.
func (db *DB) Products() *ProductRepo { return &ProductRepo{c: db.pool()} }

// Stock repositorio de stock fuera de transacción.
func (db *DB) Stock() *StockRepo { return &StockRepo{c: db.pool()} }

// Sales repositorio de ventas fuera de transacción.
func (db *DB) Sales() *SaleRepo { return &SaleRepo{c: db.pool()} }

// CashRegisters repositorio de sesiones de caja fuera de transacción.
func (db *DB) CashRegisters() *CashRegisterRepo { return &CashRegisterRepo{c: db.pool()} }

// CashMovements repositorio de movimientos de caja fuera de transacción.
func (db *DB) CashMovements() *CashMovementRepo { return &CashMovementRepo{c: db.pool()} }

// Transfers repositorio de traslados fuera de transacción.
func (db *DB) Transfers() *StockTransferRepo { return &StockTransferRepo{c: db.pool()} }

// TxRunner devuelve el ejecutor de transacciones sobre esta base.
func (db *DB) TxRunner() *TxRunner { return &TxRunner{db: db} }

// TxRunner ejecuta fn con el mutex tomado y restaura la copia previa si fn falla.
type TxRunner struct {
	db *DB
}

// Run implementa repository.TxRunner.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	snapshot := r.db.data.clone()
	c := conn{db: r.db, inTx: true}
	repos := repository.TxRepos{
		Stock:         &StockRepo{c: c},
		Products:      &ProductRepo{c: c},
		Sales:         &SaleRepo{c: c},
		CashRegisters: &CashRegisterRepo{c: c},
		CashMovements: &CashMovementRepo{c: c},
		Transfers:     &StockTransferRepo{c: c},
	}
	if err := fn(repos); err != nil {
		r.db.data = snapshot
		return err
	}
	return nil
}
