package main

import (
	"context"

	"github.com/jhoicas/Multitienda-api/internal/domain/repository"
	"github.com/jhoicas/Multitienda-api/internal/infrastructure/memory"
	"github.com/jhoicas/Multitienda-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Multitienda-api/pkg/config"
	"github.com/jhoicas/Multitienda-api/pkg/logger"
)

// storage agrupa los repositorios de un mismo backend (PostgreSQL o memoria).
type storage struct {
	kind      string
	users     repository.UserRepository
	stores    repository.StoreRepository
	products  repository.ProductRepository
	stock     repository.StockRepository
	sales     repository.SaleRepository
	registers repository.CashRegisterRepository
	movements repository.CashMovementRepository
	transfers repository.StockTransferRepository
	txRunner  repository.TxRunner
	ping      func(ctx context.Context) error
	close     func()
}

// openStorage usa PostgreSQL si hay DB configurada; si no, la base en memoria con datos demo.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.DB.Enabled() {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		log.Info().Msg("almacenamiento PostgreSQL")
		return &storage{
			kind:      "postgres",
			users:     postgres.NewUserRepository(pool),
			stores:    postgres.NewStoreRepository(pool),
			products:  postgres.NewProductRepository(pool),
			stock:     postgres.NewStockRepository(pool),
			sales:     postgres.NewSaleRepository(pool),
			registers: postgres.NewCashRegisterRepository(pool),
			movements: postgres.NewCashMovementRepository(pool),
			transfers: postgres.NewStockTransferRepository(pool),
			txRunner:  postgres.NewTxRunner(pool),
			ping:      pool.Ping,
			close:     pool.Close,
		}, nil
	}

	fx, err := memory.NewDemo(ctx, cfg.App.DemoPassword)
	if err != nil {
		return nil, err
	}
	log.Warn().
		Str("admin", fx.Admin.Email).
		Str("vendedor", fx.Vendedor.Email).
		Str("bodeguero", fx.Bodeguero.Email).
		Msg("sin base de datos configurada: almacenamiento en memoria con datos demo")
	db := fx.DB
	return &storage{
		kind:      "memory",
		users:     db.Users(),
		stores:    db.Stores(),
		products:  db.Products(),
		stock:     db.Stock(),
		sales:     db.Sales(),
		registers: db.CashRegisters(),
		movements: db.CashMovements(),
		transfers: db.Transfers(),
		txRunner:  db.TxRunner(),
		ping:      func(context.Context) error { return nil },
		close:     func() {},
	}, nil
}
