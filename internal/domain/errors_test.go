package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Multitienda-api/internal/domain"
)

func TestErroresEspecificosEnvuelvenSuTipo(t *testing.T) {
	assert.ErrorIs(t, domain.ErrRegisterAlreadyOpen, domain.ErrConflict)
	assert.ErrorIs(t, domain.ErrRegisterAlreadyClosed, domain.ErrConflict)
	assert.ErrorIs(t, domain.ErrRegisterClosed, domain.ErrConflict)
	assert.ErrorIs(t, domain.ErrSaleAlreadyCancelled, domain.ErrConflict)
	assert.ErrorIs(t, domain.ErrSourceNotAssigned, domain.ErrNotAssigned)
	assert.ErrorIs(t, domain.ErrProductNotAssigned, domain.ErrNotAssigned)
	assert.False(t, errors.Is(domain.ErrRegisterClosed, domain.ErrInsufficientStock))
}

func TestFieldError(t *testing.T) {
	err := domain.Invalid("quantity", "debe ser mayor o igual a 1")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "quantity: debe ser mayor o igual a 1", err.Error())

	var fe *domain.FieldError
	assert.True(t, errors.As(err, &fe))
	assert.Equal(t, "quantity", fe.Field)
}
