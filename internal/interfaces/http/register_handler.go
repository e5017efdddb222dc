package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Multitienda-api/internal/application/dto"
	"github.com/jhoicas/Multitienda-api/internal/application/register"
)

// RegisterHandler sesiones de caja y movimientos de efectivo.
type RegisterHandler struct {
	uc *register.RegisterUseCase
}

// NewRegisterHandler construye el handler de caja.
func NewRegisterHandler(uc *register.RegisterUseCase) *RegisterHandler {
	return &RegisterHandler{uc: uc}
}

// Open godoc
// @Summary      Abrir caja
// @Tags         registers
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenRegisterRequest  true  "store_id, opening_balance"
// @Success      201  {object}  dto.CashRegisterResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/registers [post]
func (h *RegisterHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenRegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.OpenCashRegister(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Close godoc
// @Summary      Cerrar caja
// @Description  Calcula saldo esperado y diferencia. Solo admin.
// @Tags         registers
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "Sesión"
// @Param        body  body  dto.CloseRegisterRequest  true  "closing_balance"
// @Success      200  {object}  dto.CashRegisterResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/registers/{id}/close [post]
func (h *RegisterHandler) Close(c *fiber.Ctx) error {
	var in dto.CloseRegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CloseCashRegister(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener sesión de caja
// @Tags         registers
// @Produce      json
// @Param        id  path  string  true  "Sesión"
// @Success      200  {object}  dto.CashRegisterResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/registers/{id} [get]
func (h *RegisterHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetSession(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetOpenByStore godoc
// @Summary      Sesión abierta de una tienda
// @Tags         registers
// @Produce      json
// @Param        storeId  path  string  true  "Tienda"
// @Success      200  {object}  dto.CashRegisterResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/stores/{storeId}/register [get]
func (h *RegisterHandler) GetOpenByStore(c *fiber.Ctx) error {
	out, err := h.uc.GetOpenSession(c.UserContext(), c.Params("storeId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Resumen de arqueo
// @Tags         registers
// @Produce      json
// @Param        id  path  string  true  "Sesión"
// @Success      200  {object}  dto.SessionSummaryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/registers/{id}/summary [get]
func (h *RegisterHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.SessionSummary(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ClosingReport godoc
// @Summary      PDF del arqueo de una sesión cerrada
// @Tags         registers
// @Produce      application/pdf
// @Param        id  path  string  true  "Sesión"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/registers/{id}/report.pdf [get]
func (h *RegisterHandler) ClosingReport(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, err := h.uc.ClosingReportPDF(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="arqueo-`+id+`.pdf"`)
	return c.Send(pdf)
}

// RecordMovement godoc
// @Summary      Registrar ingreso o retiro de efectivo
// @Tags         registers
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "Sesión"
// @Param        body  body  dto.CashMovementRequest  true  "type, amount, reason"
// @Success      201  {object}  dto.CashMovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/registers/{id}/movements [post]
func (h *RegisterHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.CashMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.RecordCashMovement(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Movimientos de efectivo de la sesión
// @Tags         registers
// @Produce      json
// @Param        id  path  string  true  "Sesión"
// @Success      200  {array}  dto.CashMovementResponse
// @Security     BearerAuth
// @Router       /api/registers/{id}/movements [get]
func (h *RegisterHandler) ListMovements(c *fiber.Ctx) error {
	out, err := h.uc.ListMovements(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
