package register

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/Multitienda-api/internal/application/access"
	"github.com/jhoicas/Multitienda-api/internal/application/dto"
	"github.com/jhoicas/Multitienda-api/internal/domain"
	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
	"github.com/jhoicas/Multitienda-api/internal/domain/repository"
)

// RecordCashMovement registra un ingreso o retiro manual sobre una sesión abierta.
func (uc *RegisterUseCase) RecordCashMovement(ctx context.Context, userID, sessionID string, in dto.CashMovementRequest) (_ *dto.CashMovementResponse, err error) {
	ctx, span := tracer.Start(ctx, "register.RecordCashMovement")
	defer span.End()
	defer func() { spanError(span, err) }()

	if _, err := access.Authorize(ctx, uc.users, userID, access.CashMovement); err != nil {
		return nil, err
	}
	if sessionID == "" {
		return nil, domain.Invalid("session_id", "requerido")
	}
	if !entity.ValidCashMovementType(in.Type) {
		return nil, domain.Invalid("type", "debe ser deposit o withdrawal")
	}
	if !in.Amount.IsPositive() {
		return nil, domain.Invalid("amount", "debe ser mayor que cero")
	}
	if !entity.HasMoneyScale(in.Amount) {
		return nil, domain.Invalid("amount", "máximo 2 decimales")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, domain.Invalid("reason", "requerido")
	}
	span.SetAttributes(attribute.String("register_id", sessionID), attribute.String("type", in.Type))

	mov := &entity.CashMovement{
		ID:             uuid.New().String(),
		CashRegisterID: sessionID,
		UserID:         userID,
		Type:           in.Type,
		Amount:         in.Amount,
		Reason:         reason,
		CreatedAt:      time.Now(),
	}
	err = uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		reg, err := repos.CashRegisters.GetForShare(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("get register: %w", err)
		}
		if reg == nil {
			return domain.ErrNotFound
		}
		if !reg.IsOpen() {
			return domain.ErrRegisterClosed
		}
		return repos.CashMovements.Create(ctx, mov)
	})
	log := zerolog.Ctx(ctx)
	if err != nil {
		log.Warn().Err(err).Str("register_id", sessionID).Msg("movimiento de caja rechazado")
		return nil, err
	}
	log.Info().
		Str("movement_id", mov.ID).
		Str("register_id", sessionID).
		Str("type", mov.Type).
		Str("amount", mov.Amount.String()).
		Msg("movimiento de caja registrado")
	return toMovementResponse(mov), nil
}

// ListMovements movimientos de la sesión en orden de registro.
func (uc *RegisterUseCase) ListMovements(ctx context.Context, sessionID string) ([]dto.CashMovementResponse, error) {
	if _, err := uc.getSession(ctx, sessionID); err != nil {
		return nil, err
	}
	list, err := uc.movements.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CashMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, *toMovementResponse(m))
	}
	return out, nil
}

func toMovementResponse(m *entity.CashMovement) *dto.CashMovementResponse {
	return &dto.CashMovementResponse{
		ID:             m.ID,
		CashRegisterID: m.CashRegisterID,
		UserID:         m.UserID,
		Type:           m.Type,
		Amount:         m.Amount,
		Reason:         m.Reason,
		CreatedAt:      m.CreatedAt,
	}
}
