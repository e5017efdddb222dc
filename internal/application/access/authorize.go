// Package access valida, dentro del núcleo, quién puede ejecutar cada operación.
package access

import (
	"context"
	"fmt"

	"github.com/jhoicas/Multitienda-api/internal/domain"
	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
	"github.com/jhoicas/Multitienda-api/internal/domain/repository"
)

// Roles por operación.
var (
	CloseRegister = []string{entity.RoleAdmin}
	CancelSale    = []string{entity.RoleAdmin}
	CreateSale    = []string{entity.RoleAdmin, entity.RoleVendedor}
	OpenRegister  = []string{entity.RoleAdmin, entity.RoleVendedor}
	CashMovement  = []string{entity.RoleAdmin, entity.RoleVendedor}
	TransferStock = []string{entity.RoleAdmin, entity.RoleBodeguero}
	AssignProduct = []string{entity.RoleAdmin, entity.RoleBodeguero}
)

// Authorize carga el usuario y verifica que esté activo y tenga uno de los roles.
func Authorize(ctx context.Context, users repository.UserRepository, userID string, roles []string) (*entity.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive() {
		return nil, fmt.Errorf("%w: usuario inactivo", domain.ErrForbidden)
	}
	if !user.HasRole(roles...) {
		return nil, fmt.Errorf("%w: el rol %s no puede realizar esta operación", domain.ErrForbidden, user.Role)
	}
	return user, nil
}
