package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Multitienda-api/internal/application/auth"
	"github.com/jhoicas/Multitienda-api/internal/application/dto"
	"github.com/jhoicas/Multitienda-api/internal/application/inventory"
	"github.com/jhoicas/Multitienda-api/internal/application/register"
	"github.com/jhoicas/Multitienda-api/internal/application/sales"
	"github.com/jhoicas/Multitienda-api/internal/domain/cashier"
	"github.com/jhoicas/Multitienda-api/internal/infrastructure/cache"
	"github.com/jhoicas/Multitienda-api/internal/infrastructure/memory"
	"github.com/jhoicas/Multitienda-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Multitienda-api/internal/interfaces/http"
	"github.com/jhoicas/Multitienda-api/pkg/logger"
)

const demoPassword = "secreto123"

type api struct {
	app *fiber.App
	fx  *memory.Fixture
}

// newAPI arma la app completa sobre la base en memoria de demo.
func newAPI(t *testing.T) *api {
	t.Helper()
	ctx := context.Background()
	fx, err := memory.NewDemo(ctx, demoPassword)
	require.NoError(t, err)
	db := fx.DB

	ledger := inventory.NewLedger(cache.NoopStockCache{})
	app := fiber.New()
	app.Use(apphttp.RequestContext(logger.New(logger.Config{Env: "test", Level: "error", Output: io.Discard})))
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:     auth.NewAuthUseCase(db.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 10, Issuer: testIssuer}),
		StockUC:    inventory.NewStockUseCase(db.Stock(), db.Products(), db.Stores(), db.Users(), db.TxRunner(), ledger, cache.NoopStockCache{}),
		TransferUC: inventory.NewTransferUseCase(db.TxRunner(), db.Stores(), db.Products(), db.Users(), db.Transfers(), ledger),
		SaleUC:     sales.NewSaleUseCase(db.TxRunner(), db.Sales(), db.Stores(), db.Products(), db.Users(), ledger),
		RegisterUC: register.NewRegisterUseCase(db.TxRunner(), db.CashRegisters(), db.CashMovements(), db.Sales(),
			db.Stores(), db.Users(), cashier.Policy{}, pdf.NewClosingReportGenerator()),
		JWTSecret: testJWTSecret,
	})
	return &api{app: app, fx: fx}
}

func (a *api) login(t *testing.T, email string) string {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: email, Password: demoPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	decode(t, resp, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func (a *api) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func errorCode(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	decode(t, resp, &e)
	return e
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	a := newAPI(t)
	resp := a.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "admin@multitienda.co", Password: "otra"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = a.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "inactivo@multitienda.co", Password: demoPassword})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRutasProtegidas_SinToken(t *testing.T) {
	a := newAPI(t)
	resp := a.do(t, http.MethodGet, "/api/stores/store-a/stock/p1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFlujoCompleto_VentaAnulacionYCierre(t *testing.T) {
	a := newAPI(t)
	vendedor := a.login(t, "vendedor@multitienda.co")
	admin := a.login(t, "admin@multitienda.co")

	// Apertura
	resp := a.do(t, http.MethodPost, "/api/registers", vendedor, dto.OpenRegisterRequest{StoreID: "store-a", OpeningBalance: decimal.NewFromInt(100)})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var session dto.CashRegisterResponse
	decode(t, resp, &session)
	assert.Equal(t, "open", session.Status)

	resp = a.do(t, http.MethodPost, "/api/registers", vendedor, dto.OpenRegisterRequest{StoreID: "store-a"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/api/stores/store-a/register", vendedor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Venta
	sale := dto.CreateSaleRequest{
		StoreID: "store-a", CashRegisterID: session.ID, PaymentMethod: "cash",
		Items: []dto.SaleItemRequest{{ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(4200)}},
	}
	resp = a.do(t, http.MethodPost, "/api/sales", vendedor, sale)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created dto.SaleResponse
	decode(t, resp, &created)
	assert.Equal(t, "V-00000001", created.Number)
	assert.True(t, created.Total.Equal(decimal.NewFromInt(8400)))

	var stock dto.StockResponse
	resp = a.do(t, http.MethodGet, "/api/stores/store-a/stock/p1", vendedor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &stock)
	assert.Equal(t, 98, stock.Quantity)

	// Stock insuficiente
	sale.Items[0].Quantity = 1000
	resp = a.do(t, http.MethodPost, "/api/sales", vendedor, sale)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, resp).Code)

	// Anulación: solo admin
	resp = a.do(t, http.MethodPost, "/api/sales/"+created.ID+"/cancel", vendedor, dto.CancelSaleRequest{Reason: "error"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = a.do(t, http.MethodPost, "/api/sales/"+created.ID+"/cancel", admin, dto.CancelSaleRequest{Reason: "error de digitación"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = a.do(t, http.MethodPost, "/api/sales/"+created.ID+"/cancel", admin, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/api/stores/store-a/stock/p1", vendedor, nil)
	decode(t, resp, &stock)
	assert.Equal(t, 100, stock.Quantity)

	// Retiro de efectivo
	resp = a.do(t, http.MethodPost, "/api/registers/"+session.ID+"/movements", vendedor,
		dto.CashMovementRequest{Type: "withdrawal", Amount: decimal.NewFromInt(30), Reason: "pago domicilio"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Cierre: solo admin
	closeReq := dto.CloseRegisterRequest{ClosingBalance: decimal.NewFromInt(90)}
	resp = a.do(t, http.MethodPost, "/api/registers/"+session.ID+"/close", vendedor, closeReq)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = a.do(t, http.MethodPost, "/api/registers/"+session.ID+"/close", admin, closeReq)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var closed dto.CashRegisterResponse
	decode(t, resp, &closed)
	require.NotNil(t, closed.ExpectedBalance)
	require.NotNil(t, closed.Difference)
	assert.True(t, closed.ExpectedBalance.Equal(decimal.NewFromInt(100)))
	assert.True(t, closed.Difference.Equal(decimal.NewFromInt(-10)))

	resp = a.do(t, http.MethodGet, "/api/registers/"+session.ID+"/summary", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary dto.SessionSummaryResponse
	decode(t, resp, &summary)
	assert.True(t, summary.CashSales.IsZero())
	assert.True(t, summary.Withdrawals.Equal(decimal.NewFromInt(30)))

	resp = a.do(t, http.MethodGet, "/api/registers/"+session.ID+"/report.pdf", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	resp = a.do(t, http.MethodPost, "/api/sales", vendedor, sale)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCrearVenta_IdempotencyKeyEnHeader(t *testing.T) {
	a := newAPI(t)
	vendedor := a.login(t, "vendedor@multitienda.co")

	resp := a.do(t, http.MethodPost, "/api/registers", vendedor, dto.OpenRegisterRequest{StoreID: "store-a"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var session dto.CashRegisterResponse
	decode(t, resp, &session)

	send := func() dto.SaleResponse {
		raw, _ := json.Marshal(dto.CreateSaleRequest{
			StoreID: "store-a", CashRegisterID: session.ID, PaymentMethod: "card",
			Items: []dto.SaleItemRequest{{ProductID: "p2", Quantity: 1, UnitPrice: decimal.NewFromInt(12500)}},
		})
		req := httptest.NewRequest(http.MethodPost, "/api/sales", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+vendedor)
		req.Header.Set("Idempotency-Key", "caja1-ticket-77")
		r, err := a.app.Test(req, -1)
		require.NoError(t, err)
		defer r.Body.Close()
		require.Equal(t, http.StatusCreated, r.StatusCode)
		var out dto.SaleResponse
		require.NoError(t, json.NewDecoder(r.Body).Decode(&out))
		return out
	}
	first, second := send(), send()
	assert.Equal(t, first.ID, second.ID)

	var stock dto.StockResponse
	resp = a.do(t, http.MethodGet, "/api/stores/store-a/stock/p2", vendedor, nil)
	decode(t, resp, &stock)
	assert.Equal(t, 39, stock.Quantity)
}

func TestTraslados_RolesYErrores(t *testing.T) {
	a := newAPI(t)
	vendedor := a.login(t, "vendedor@multitienda.co")
	bodega := a.login(t, "bodega@multitienda.co")

	req := dto.TransferStockRequest{FromStoreID: "store-a", ToStoreID: "store-b", ProductID: "p2", Quantity: 5}
	resp := a.do(t, http.MethodPost, "/api/transfers", vendedor, req)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = a.do(t, http.MethodPost, "/api/transfers", bodega, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var stock dto.StockResponse
	resp = a.do(t, http.MethodGet, "/api/stores/store-b/stock/p2", bodega, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &stock)
	assert.Equal(t, 5, stock.Quantity)
	assert.Equal(t, 5, stock.MinStock)

	// p2 no tenía fila en store-b antes del traslado; store-b -> store-a con más de lo que hay
	resp = a.do(t, http.MethodPost, "/api/transfers", bodega, dto.TransferStockRequest{FromStoreID: "store-b", ToStoreID: "store-a", ProductID: "p2", Quantity: 6})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, resp).Code)

	resp = a.do(t, http.MethodPost, "/api/transfers", bodega, dto.TransferStockRequest{FromStoreID: "store-a", ToStoreID: "store-a", ProductID: "p1", Quantity: 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/api/products/p2/transfers?limit=10", bodega, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []dto.TransferResponse
	decode(t, resp, &list)
	assert.Len(t, list, 1)
}

func TestTraslado_OrigenSinAsignar(t *testing.T) {
	a := newAPI(t)
	bodega := a.login(t, "bodega@multitienda.co")
	resp := a.do(t, http.MethodPost, "/api/transfers", bodega, dto.TransferStockRequest{FromStoreID: "store-b", ToStoreID: "store-a", ProductID: "p2", Quantity: 1})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "NOT_ASSIGNED", errorCode(t, resp).Code)
}

func TestValidacion_CampoEnRespuesta(t *testing.T) {
	a := newAPI(t)
	vendedor := a.login(t, "vendedor@multitienda.co")
	resp := a.do(t, http.MethodPost, "/api/registers", vendedor, dto.OpenRegisterRequest{OpeningBalance: decimal.NewFromInt(10)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	e := errorCode(t, resp)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Equal(t, "store_id", e.Field)

	resp = a.do(t, http.MethodGet, "/api/registers/no-existe", vendedor, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStockBajo(t *testing.T) {
	a := newAPI(t)
	bodega := a.login(t, "bodega@multitienda.co")
	resp := a.do(t, http.MethodPost, "/api/stock/assign", bodega, dto.AssignProductRequest{StoreID: "store-b", ProductID: "p2", Quantity: 2, MinStock: 3})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = a.do(t, http.MethodPost, "/api/stock/assign", bodega, dto.AssignProductRequest{StoreID: "store-b", ProductID: "p2", Quantity: 2, MinStock: 3})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/api/stores/store-b/stock/low", bodega, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var low []dto.StockResponse
	decode(t, resp, &low)
	require.Len(t, low, 1)
	assert.Equal(t, "p2", low[0].ProductID)
	assert.True(t, low[0].IsLow)
}
