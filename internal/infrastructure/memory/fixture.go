package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
)

// Fixture datos base: un usuario por rol, dos tiendas y dos productos sin stock asignado.
type Fixture struct {
	DB        *DB
	Admin     *entity.User
	Vendedor  *entity.User
	Bodeguero *entity.User
	Inactivo  *entity.User
	StoreA    *entity.Store
	StoreB    *entity.Store
	P1        *entity.Product
	P2        *entity.Product
}

// NewFixture crea una base con los datos de Fixture. passwordHash puede ir vacío.
func NewFixture(ctx context.Context, passwordHash string) (*Fixture, error) {
	db := NewDB()
	now := time.Now()
	user := func(id, email, role, status string) *entity.User {
		return &entity.User{ID: id, Email: email, Name: id, PasswordHash: passwordHash, Role: role, Status: status, CreatedAt: now, UpdatedAt: now}
	}
	f := &Fixture{
		DB:        db,
		Admin:     user("admin-1", "admin@multitienda.co", entity.RoleAdmin, entity.UserStatusActive),
		Vendedor:  user("vendedor-1", "vendedor@multitienda.co", entity.RoleVendedor, entity.UserStatusActive),
		Bodeguero: user("bodeguero-1", "bodega@multitienda.co", entity.RoleBodeguero, entity.UserStatusActive),
		Inactivo:  user("inactivo-1", "inactivo@multitienda.co", entity.RoleAdmin, entity.UserStatusInactive),
		StoreA:    &entity.Store{ID: "store-a", Name: "Tienda Centro", Code: "CEN", Active: true, CreatedAt: now, UpdatedAt: now},
		StoreB:    &entity.Store{ID: "store-b", Name: "Tienda Norte", Code: "NOR", Active: true, CreatedAt: now, UpdatedAt: now},
		P1: &entity.Product{ID: "p1", SKU: "SKU-001", Name: "Arroz 1kg",
			CostPrice: decimal.NewFromInt(3000), SalePrice: decimal.NewFromInt(4200), CreatedAt: now, UpdatedAt: now},
		P2: &entity.Product{ID: "p2", SKU: "SKU-002", Name: "Aceite 1L",
			CostPrice: decimal.NewFromInt(9000), SalePrice: decimal.NewFromInt(12500), CreatedAt: now, UpdatedAt: now},
	}
	for _, u := range []*entity.User{f.Admin, f.Vendedor, f.Bodeguero, f.Inactivo} {
		if err := db.Users().Create(ctx, u); err != nil {
			return nil, err
		}
	}
	for _, s := range []*entity.Store{f.StoreA, f.StoreB} {
		if err := db.Stores().Create(ctx, s); err != nil {
			return nil, err
		}
	}
	for _, p := range []*entity.Product{f.P1, f.P2} {
		if err := db.Products().Create(ctx, p); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// SetStock crea la fila de stock directamente y marca el producto activo si qty > 0.
func (f *Fixture) SetStock(ctx context.Context, storeID, productID string, qty, minStock int) error {
	err := f.DB.Stock().Create(ctx, &entity.StockLevel{
		StoreID: storeID, ProductID: productID, Quantity: qty, MinStock: minStock, UpdatedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	if qty > 0 {
		return f.DB.Products().SetActive(ctx, productID, true)
	}
	return nil
}

// NewDemo base en memoria para correr la API sin PostgreSQL. Todos los usuarios comparten password.
func NewDemo(ctx context.Context, password string) (*Fixture, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	f, err := NewFixture(ctx, string(hash))
	if err != nil {
		return nil, err
	}
	for _, s := range []struct {
		store, product string
		qty, min       int
	}{
		{f.StoreA.ID, f.P1.ID, 100, 10},
		{f.StoreA.ID, f.P2.ID, 40, 5},
		{f.StoreB.ID, f.P1.ID, 20, 10},
	} {
		if err := f.SetStock(ctx, s.store, s.product, s.qty, s.min); err != nil {
			return nil, err
		}
	}
	return f, nil
}
