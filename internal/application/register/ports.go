package register

import (
	"context"
	"time"

	"github.com/jhoicas/Multitienda-api/internal/application/dto"
	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
)

// ClosingReport datos del arqueo de una sesión cerrada.
type ClosingReport struct {
	Store       *entity.Store
	Session     *entity.CashRegister
	Summary     dto.SessionSummaryResponse
	Movements   []*entity.CashMovement
	GeneratedAt time.Time
}

// ClosingReportRenderer puerto de salida para generar el PDF del arqueo (maroto en infraestructura).
type ClosingReportRenderer interface {
	RenderClosingReport(ctx context.Context, report ClosingReport) ([]byte, error)
}
