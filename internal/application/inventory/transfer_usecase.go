package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jhoicas/Multitienda-api/internal/application/access"
	"github.com/jhoicas/Multitienda-api/internal/application/dto"
	"github.com/jhoicas/Multitienda-api/internal/domain"
	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
	"github.com/jhoicas/Multitienda-api/internal/domain/repository"
)

// TransferUseCase traslada stock de un producto entre dos tiendas en una sola transacción.
type TransferUseCase struct {
	txRunner  repository.TxRunner
	stores    repository.StoreRepository
	products  repository.ProductRepository
	users     repository.UserRepository
	transfers repository.StockTransferRepository
	ledger    *Ledger

	transferred metric.Int64Counter
	rejected    metric.Int64Counter
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(
	txRunner repository.TxRunner,
	stores repository.StoreRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	transfers repository.StockTransferRepository,
	ledger *Ledger,
) *TransferUseCase {
	meter := otel.Meter("multitienda/inventory")
	transferred, _ := meter.Int64Counter("stock.transfers",
		metric.WithDescription("Traslados de stock confirmados"))
	rejected, _ := meter.Int64Counter("stock.rejections",
		metric.WithDescription("Operaciones rechazadas por stock insuficiente"))
	return &TransferUseCase{
		txRunner:    txRunner,
		stores:      stores,
		products:    products,
		users:       users,
		transfers:   transfers,
		ledger:      ledger,
		transferred: transferred,
		rejected:    rejected,
	}
}

// TransferStock valida origen != destino y cantidad >= 1, bloquea ambas filas en orden de tienda,
// descuenta el origen, suma (o crea copiando min_stock) en el destino y guarda la auditoría.
// Luego recalcula is_active del producto dentro de la misma transacción.
func (uc *TransferUseCase) TransferStock(ctx context.Context, userID string, in dto.TransferStockRequest) (_ *dto.TransferResponse, err error) {
	ctx, span := tracer.Start(ctx, "inventory.TransferStock")
	defer span.End()
	defer func() { _ = spanError(span, err) }()

	if _, err := access.Authorize(ctx, uc.users, userID, access.TransferStock); err != nil {
		return nil, err
	}
	if in.FromStoreID != "" && in.FromStoreID == in.ToStoreID {
		return nil, domain.Invalid("to_store_id", "la tienda destino debe ser distinta del origen")
	}
	if in.Quantity < 1 {
		return nil, domain.Invalid("quantity", "debe ser al menos 1")
	}
	if err := requireStore(ctx, uc.stores, "from_store_id", in.FromStoreID); err != nil {
		return nil, err
	}
	if err := requireStore(ctx, uc.stores, "to_store_id", in.ToStoreID); err != nil {
		return nil, err
	}
	if err := requireProduct(ctx, uc.products, in.ProductID); err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("from_store_id", in.FromStoreID),
		attribute.String("to_store_id", in.ToStoreID),
		attribute.String("product_id", in.ProductID),
		attribute.Int("quantity", in.Quantity),
	)

	now := time.Now()
	transfer := &entity.StockTransfer{
		ID:          uuid.New().String(),
		FromStoreID: in.FromStoreID,
		ToStoreID:   in.ToStoreID,
		ProductID:   in.ProductID,
		Quantity:    in.Quantity,
		Notes:       in.Notes,
		CreatedBy:   userID,
		CreatedAt:   now,
	}

	err = uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		// Bloqueo en orden de id de tienda: A->B y B->A concurrentes no se cruzan.
		first, second := in.FromStoreID, in.ToStoreID
		if second < first {
			first, second = second, first
		}
		locked := make(map[string]*entity.StockLevel, 2)
		for _, sid := range []string{first, second} {
			level, err := repos.Stock.GetForUpdate(ctx, sid, in.ProductID)
			if err != nil {
				return fmt.Errorf("lock stock: %w", err)
			}
			locked[sid] = level
		}

		source := locked[in.FromStoreID]
		if source == nil {
			return fmt.Errorf("%w: producto %s en tienda %s", domain.ErrSourceNotAssigned, in.ProductID, in.FromStoreID)
		}
		if source.Quantity < in.Quantity {
			return fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, source.Quantity, in.Quantity)
		}
		ok, err := repos.Stock.Decrement(ctx, in.FromStoreID, in.ProductID, in.Quantity)
		if err != nil {
			return fmt.Errorf("decrement source: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, source.Quantity, in.Quantity)
		}
		if err := repos.Stock.AddOrCreate(ctx, in.ToStoreID, in.ProductID, in.Quantity, source.MinStock); err != nil {
			return fmt.Errorf("credit destination: %w", err)
		}
		if err := repos.Transfers.Create(ctx, transfer); err != nil {
			return fmt.Errorf("create transfer: %w", err)
		}
		return uc.ledger.RefreshProductActive(ctx, repos, in.ProductID)
	})
	log := zerolog.Ctx(ctx)
	if err != nil {
		if isStockRejection(err) {
			uc.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "transfer")))
			log.Warn().Err(err).Str("product_id", in.ProductID).Msg("traslado rechazado")
		}
		return nil, err
	}
	uc.ledger.Invalidate(ctx, in.FromStoreID, in.ProductID)
	uc.ledger.Invalidate(ctx, in.ToStoreID, in.ProductID)
	uc.transferred.Add(ctx, 1)
	log.Info().
		Str("transfer_id", transfer.ID).
		Str("from_store_id", in.FromStoreID).
		Str("to_store_id", in.ToStoreID).
		Str("product_id", in.ProductID).
		Int("quantity", in.Quantity).
		Msg("traslado de stock registrado")
	return toTransferResponse(transfer), nil
}

// ListTransfers historial de traslados de un producto, más recientes primero.
func (uc *TransferUseCase) ListTransfers(ctx context.Context, productID string, page dto.PageRequest) ([]dto.TransferResponse, error) {
	if productID == "" {
		return nil, domain.Invalid("product_id", "requerido")
	}
	page.DefaultPage()
	list, err := uc.transfers.ListByProduct(ctx, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		out = append(out, *toTransferResponse(t))
	}
	return out, nil
}

func isStockRejection(err error) bool {
	return errorsIsAny(err, domain.ErrInsufficientStock, domain.ErrNotAssigned)
}

func toTransferResponse(t *entity.StockTransfer) *dto.TransferResponse {
	return &dto.TransferResponse{
		ID:          t.ID,
		FromStoreID: t.FromStoreID,
		ToStoreID:   t.ToStoreID,
		ProductID:   t.ProductID,
		Quantity:    t.Quantity,
		Notes:       t.Notes,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
	}
}
