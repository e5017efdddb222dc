package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Multitienda-api/internal/application/auth"
	"github.com/jhoicas/Multitienda-api/internal/application/inventory"
	"github.com/jhoicas/Multitienda-api/internal/application/register"
	"github.com/jhoicas/Multitienda-api/internal/application/sales"
	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	StockUC    *inventory.StockUseCase
	TransferUC *inventory.TransferUseCase
	SaleUC     *sales.SaleUseCase
	RegisterUC *register.RegisterUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	admin := RequireRole(entity.RoleAdmin)
	cashier := RequireRole(entity.RoleAdmin, entity.RoleVendedor)
	warehouse := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)

	// Inventario
	inventoryHandler := NewInventoryHandler(deps.StockUC, deps.TransferUC)
	protected.Get("/stores/:storeId/stock/low", inventoryHandler.ListLowStock)
	protected.Get("/stores/:storeId/stock/:productId", inventoryHandler.GetStock)
	protected.Post("/stock/assign", warehouse, inventoryHandler.AssignProduct)
	protected.Post("/transfers", warehouse, inventoryHandler.TransferStock)
	protected.Get("/products/:productId/transfers", inventoryHandler.ListTransfers)

	// Caja
	registerHandler := NewRegisterHandler(deps.RegisterUC)
	protected.Get("/stores/:storeId/register", registerHandler.GetOpenByStore)
	registers := protected.Group("/registers")
	registers.Post("/", cashier, registerHandler.Open)
	registers.Get("/:id", registerHandler.GetByID)
	registers.Post("/:id/close", admin, registerHandler.Close)
	registers.Get("/:id/summary", registerHandler.Summary)
	registers.Get("/:id/report.pdf", registerHandler.ClosingReport)
	registers.Post("/:id/movements", cashier, registerHandler.RecordMovement)
	registers.Get("/:id/movements", registerHandler.ListMovements)

	// Ventas
	saleHandler := NewSaleHandler(deps.SaleUC)
	salesGroup := protected.Group("/sales")
	salesGroup.Post("/", cashier, saleHandler.Create)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Post("/:id/cancel", admin, saleHandler.Cancel)
}
