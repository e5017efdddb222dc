package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Multitienda-api/internal/application/dto"
	"github.com/jhoicas/Multitienda-api/internal/application/inventory"
)

// InventoryHandler stock por tienda y traslados.
type InventoryHandler struct {
	stock     *inventory.StockUseCase
	transfers *inventory.TransferUseCase
}

// NewInventoryHandler construye el handler de inventario.
func NewInventoryHandler(stock *inventory.StockUseCase, transfers *inventory.TransferUseCase) *InventoryHandler {
	return &InventoryHandler{stock: stock, transfers: transfers}
}

// GetStock godoc
// @Summary      Stock de un producto en una tienda
// @Tags         inventory
// @Produce      json
// @Param        storeId    path  string  true  "Tienda"
// @Param        productId  path  string  true  "Producto"
// @Success      200  {object}  dto.StockResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/stores/{storeId}/stock/{productId} [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	out, err := h.stock.GetStock(c.UserContext(), c.Params("storeId"), c.Params("productId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListLowStock godoc
// @Summary      Productos en o bajo el mínimo
// @Tags         inventory
// @Produce      json
// @Param        storeId  path  string  true  "Tienda"
// @Success      200  {array}  dto.StockResponse
// @Security     BearerAuth
// @Router       /api/stores/{storeId}/stock/low [get]
func (h *InventoryHandler) ListLowStock(c *fiber.Ctx) error {
	out, err := h.stock.ListLowStock(c.UserContext(), c.Params("storeId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AssignProduct godoc
// @Summary      Asignar producto a tienda
// @Description  Crea la fila de stock con cantidad y mínimo iniciales. Solo admin o bodeguero.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AssignProductRequest  true  "store_id, product_id, quantity, min_stock"
// @Success      201  {object}  dto.StockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/stock/assign [post]
func (h *InventoryHandler) AssignProduct(c *fiber.Ctx) error {
	var in dto.AssignProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.stock.AssignProduct(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// TransferStock godoc
// @Summary      Trasladar stock entre tiendas
// @Description  Débito en origen y crédito en destino en una sola transacción.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferStockRequest  true  "from_store_id, to_store_id, product_id, quantity"
// @Success      201  {object}  dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/transfers [post]
func (h *InventoryHandler) TransferStock(c *fiber.Ctx) error {
	var in dto.TransferStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.transfers.TransferStock(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListTransfers godoc
// @Summary      Historial de traslados de un producto
// @Tags         inventory
// @Produce      json
// @Param        productId  path   string  true   "Producto"
// @Param        limit      query  int     false  "Límite (max 100)"
// @Param        offset     query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.TransferResponse
// @Security     BearerAuth
// @Router       /api/products/{productId}/transfers [get]
func (h *InventoryHandler) ListTransfers(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()
	out, err := h.transfers.ListTransfers(c.UserContext(), c.Params("productId"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
