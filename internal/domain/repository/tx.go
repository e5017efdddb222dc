package repository

import "context"

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Stock         StockRepository
	Products      ProductRepository
	Sales         SaleRepository
	CashRegisters CashRegisterRepository
	CashMovements CashMovementRepository
	Transfers     StockTransferRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn devuelve nil, Rollback en otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}
