package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jhoicas/Multitienda-api/internal/application/access"
	"github.com/jhoicas/Multitienda-api/internal/application/dto"
	"github.com/jhoicas/Multitienda-api/internal/application/inventory"
	"github.com/jhoicas/Multitienda-api/internal/domain"
	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
	"github.com/jhoicas/Multitienda-api/internal/domain/repository"
)

// SaleUseCase registra y anula ventas. Venta, líneas y débitos de stock van en una sola transacción.
type SaleUseCase struct {
	txRunner repository.TxRunner
	sales    repository.SaleRepository
	stores   repository.StoreRepository
	products repository.ProductRepository
	users    repository.UserRepository
	ledger   *inventory.Ledger

	created   metric.Int64Counter
	cancelled metric.Int64Counter
	rejected  metric.Int64Counter
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(
	txRunner repository.TxRunner,
	sales repository.SaleRepository,
	stores repository.StoreRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	ledger *inventory.Ledger,
) *SaleUseCase {
	meter := otel.Meter("multitienda/sales")
	created, _ := meter.Int64Counter("sales.created", metric.WithDescription("Ventas registradas"))
	cancelled, _ := meter.Int64Counter("sales.cancelled", metric.WithDescription("Ventas anuladas"))
	rejected, _ := meter.Int64Counter("stock.rejections",
		metric.WithDescription("Operaciones rechazadas por stock insuficiente"))
	return &SaleUseCase{
		txRunner:  txRunner,
		sales:     sales,
		stores:    stores,
		products:  products,
		users:     users,
		ledger:    ledger,
		created:   created,
		cancelled: cancelled,
		rejected:  rejected,
	}
}

// CreateSale registra la venta contra una sesión abierta de la tienda.
// subtotal = Σ cantidad × precio; total = subtotal + impuesto - descuento.
// Si alguna línea no tiene stock suficiente se revierte todo (venta, líneas y débitos).
// Con IdempotencyKey, un reenvío devuelve la venta original sin volver a descontar stock.
func (uc *SaleUseCase) CreateSale(ctx context.Context, userID string, in dto.CreateSaleRequest) (_ *dto.SaleResponse, err error) {
	ctx, span := tracer.Start(ctx, "sales.CreateSale")
	defer span.End()
	defer func() { spanError(span, err) }()

	if _, err := access.Authorize(ctx, uc.users, userID, access.CreateSale); err != nil {
		return nil, err
	}
	tax, discount, err := uc.validateCreate(ctx, in)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("store_id", in.StoreID),
		attribute.String("cash_register_id", in.CashRegisterID),
		attribute.Int("items", len(in.Items)),
	)

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		existing, err := uc.sales.GetByIdempotencyKey(ctx, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return uc.replay(ctx, existing, in)
		}
	}

	now := time.Now()
	sale := &entity.Sale{
		ID:             uuid.New().String(),
		StoreID:        in.StoreID,
		CashRegisterID: in.CashRegisterID,
		UserID:         userID,
		Tax:            tax,
		Discount:       discount,
		PaymentMethod:  in.PaymentMethod,
		Status:         entity.SaleStatusCompleted,
		IdempotencyKey: key,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	lines := make([]inventory.Line, 0, len(in.Items))
	for _, it := range in.Items {
		sale.Items = append(sale.Items, &entity.SaleItem{
			ID:        uuid.New().String(),
			SaleID:    sale.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			CreatedAt: now,
		})
		lines = append(lines, inventory.Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	sale.ComputeTotals()
	if sale.Total.IsNegative() {
		return nil, domain.Invalid("discount", "el descuento no puede superar subtotal más impuesto")
	}

	err = uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		// FOR SHARE: varias ventas a la vez, pero ninguna mientras se cierra la caja.
		reg, err := repos.CashRegisters.GetForShare(ctx, in.CashRegisterID)
		if err != nil {
			return fmt.Errorf("get cash register: %w", err)
		}
		if reg == nil {
			return domain.Invalid("cash_register_id", "la sesión de caja no existe")
		}
		if reg.StoreID != in.StoreID {
			return domain.Invalid("cash_register_id", "la sesión de caja pertenece a otra tienda")
		}
		if !reg.IsOpen() {
			return domain.ErrRegisterClosed
		}

		seq, err := repos.Sales.NextNumber(ctx)
		if err != nil {
			return fmt.Errorf("next sale number: %w", err)
		}
		sale.Number = entity.FormatSaleNumber(seq)
		if err := repos.Sales.Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		for _, item := range sale.Items {
			if err := repos.Sales.CreateItem(ctx, item); err != nil {
				return fmt.Errorf("create sale item: %w", err)
			}
		}
		return uc.ledger.DebitInTx(ctx, repos, in.StoreID, lines)
	})
	log := zerolog.Ctx(ctx)
	if err != nil {
		if key != "" && errors.Is(err, domain.ErrDuplicate) {
			// Otro request con la misma llave ganó la carrera.
			if existing, gerr := uc.sales.GetByIdempotencyKey(ctx, key); gerr == nil && existing != nil {
				return uc.replay(ctx, existing, in)
			}
		}
		if errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrNotAssigned) {
			uc.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "sale")))
		}
		log.Warn().Err(err).Str("store_id", in.StoreID).Msg("venta rechazada")
		return nil, err
	}

	uc.ledger.Invalidate(ctx, in.StoreID, inventory.LinesProductIDs(lines)...)
	uc.created.Add(ctx, 1, metric.WithAttributes(attribute.String("payment_method", sale.PaymentMethod)))
	log.Info().
		Str("sale_id", sale.ID).
		Str("number", sale.Number).
		Str("store_id", sale.StoreID).
		Str("total", sale.Total.String()).
		Str("payment_method", sale.PaymentMethod).
		Msg("venta registrada")
	return toSaleResponse(sale), nil
}

// replay devuelve la venta ya registrada con la misma llave. Una llave reutilizada en otra tienda es un conflicto.
func (uc *SaleUseCase) replay(ctx context.Context, existing *entity.Sale, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if existing.StoreID != in.StoreID || existing.CashRegisterID != in.CashRegisterID {
		return nil, fmt.Errorf("%w: la llave de idempotencia ya se usó en otra venta", domain.ErrConflict)
	}
	zerolog.Ctx(ctx).Info().Str("sale_id", existing.ID).Msg("venta reenviada, se devuelve la original")
	return uc.load(ctx, existing)
}

func (uc *SaleUseCase) validateCreate(ctx context.Context, in dto.CreateSaleRequest) (tax, discount decimal.Decimal, err error) {
	if in.StoreID == "" {
		return tax, discount, domain.Invalid("store_id", "requerido")
	}
	if in.CashRegisterID == "" {
		return tax, discount, domain.Invalid("cash_register_id", "requerido")
	}
	if !entity.ValidPaymentMethod(in.PaymentMethod) {
		return tax, discount, domain.Invalid("payment_method", "debe ser cash, card, transfer o mixed")
	}
	if len(in.Items) == 0 {
		return tax, discount, domain.Invalid("items", "la venta debe tener al menos un producto")
	}
	if in.Tax != nil {
		tax = *in.Tax
	}
	if in.Discount != nil {
		discount = *in.Discount
	}
	if tax.IsNegative() {
		return tax, discount, domain.Invalid("tax", "no puede ser negativo")
	}
	if discount.IsNegative() {
		return tax, discount, domain.Invalid("discount", "no puede ser negativo")
	}
	if !entity.HasMoneyScale(tax) {
		return tax, discount, domain.Invalid("tax", "máximo 2 decimales")
	}
	if !entity.HasMoneyScale(discount) {
		return tax, discount, domain.Invalid("discount", "máximo 2 decimales")
	}

	store, err := uc.stores.GetByID(ctx, in.StoreID)
	if err != nil {
		return tax, discount, err
	}
	if store == nil {
		return tax, discount, domain.Invalid("store_id", "la tienda no existe")
	}
	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		if it.ProductID == "" {
			return tax, discount, domain.Invalid(field+".product_id", "requerido")
		}
		if it.Quantity < 1 {
			return tax, discount, domain.Invalid(field+".quantity", "debe ser al menos 1")
		}
		if it.UnitPrice.IsNegative() {
			return tax, discount, domain.Invalid(field+".unit_price", "no puede ser negativo")
		}
		if !entity.HasMoneyScale(it.UnitPrice) {
			return tax, discount, domain.Invalid(field+".unit_price", "máximo 2 decimales")
		}
		product, err := uc.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return tax, discount, err
		}
		if product == nil {
			return tax, discount, domain.Invalid(field+".product_id", "el producto no existe")
		}
	}
	return tax, discount, nil
}

// CancelSale pasa la venta a cancelled y devuelve al stock cada línea, en una transacción.
// Se permite aunque la sesión de caja ya esté cerrada; las cifras del cierre no se reescriben.
func (uc *SaleUseCase) CancelSale(ctx context.Context, userID, saleID, reason string) (_ *dto.SaleResponse, err error) {
	ctx, span := tracer.Start(ctx, "sales.CancelSale")
	defer span.End()
	defer func() { spanError(span, err) }()

	if _, err := access.Authorize(ctx, uc.users, userID, access.CancelSale); err != nil {
		return nil, err
	}
	if saleID == "" {
		return nil, domain.Invalid("sale_id", "requerido")
	}
	span.SetAttributes(attribute.String("sale_id", saleID))

	var sale *entity.Sale
	err = uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		s, err := repos.Sales.GetForUpdate(ctx, saleID)
		if err != nil {
			return fmt.Errorf("get sale: %w", err)
		}
		if s == nil {
			return domain.ErrNotFound
		}
		if err := s.Cancel(userID, strings.TrimSpace(reason), time.Now()); err != nil {
			return err
		}
		items, err := repos.Sales.GetItems(ctx, saleID)
		if err != nil {
			return fmt.Errorf("get sale items: %w", err)
		}
		s.Items = items
		if err := repos.Sales.MarkCancelled(ctx, s); err != nil {
			return fmt.Errorf("cancel sale: %w", err)
		}
		lines := make([]inventory.Line, 0, len(items))
		for _, it := range items {
			lines = append(lines, inventory.Line{ProductID: it.ProductID, Quantity: it.Quantity})
		}
		if err := uc.ledger.CreditInTx(ctx, repos, s.StoreID, lines); err != nil {
			return err
		}
		sale = s
		return nil
	})
	log := zerolog.Ctx(ctx)
	if err != nil {
		log.Warn().Err(err).Str("sale_id", saleID).Msg("anulación rechazada")
		return nil, err
	}

	productIDs := make([]string, 0, len(sale.Items))
	for _, it := range sale.Items {
		productIDs = append(productIDs, it.ProductID)
	}
	uc.ledger.Invalidate(ctx, sale.StoreID, productIDs...)
	uc.cancelled.Add(ctx, 1)
	log.Info().
		Str("sale_id", sale.ID).
		Str("number", sale.Number).
		Str("reason", sale.CancellationReason).
		Msg("venta anulada")
	return toSaleResponse(sale), nil
}

// GetSale devuelve la venta con sus líneas.
func (uc *SaleUseCase) GetSale(ctx context.Context, saleID string) (*dto.SaleResponse, error) {
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return uc.load(ctx, sale)
}

func (uc *SaleUseCase) load(ctx context.Context, sale *entity.Sale) (*dto.SaleResponse, error) {
	items, err := uc.sales.GetItems(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return toSaleResponse(sale), nil
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	out := &dto.SaleResponse{
		ID:                 s.ID,
		Number:             s.Number,
		StoreID:            s.StoreID,
		CashRegisterID:     s.CashRegisterID,
		UserID:             s.UserID,
		Subtotal:           s.Subtotal,
		Tax:                s.Tax,
		Discount:           s.Discount,
		Total:              s.Total,
		PaymentMethod:      s.PaymentMethod,
		Status:             s.Status,
		CancelledBy:        s.CancelledBy,
		CancelledAt:        s.CancelledAt,
		CancellationReason: s.CancellationReason,
		CreatedAt:          s.CreatedAt,
		Items:              make([]dto.SaleItemResponse, 0, len(s.Items)),
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, dto.SaleItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		})
	}
	return out
}
