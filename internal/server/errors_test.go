package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	bootstrapdomain "github.com/praxislegal/praxis/internal/bootstrap/domain"
	"github.com/praxislegal/praxis/internal/recovery"
	tenantdomain "github.com/praxislegal/praxis/internal/tenant/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorProvisioningTaxonomy(t *testing.T) {
	status, payload := mapError(bootstrapdomain.ErrInvalidAdminEmail)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", payload.Type)

	status, payload = mapError(bootstrapdomain.ErrEmailInUse)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "conflict", payload.Type)

	status, payload = mapError(bootstrapdomain.ErrProvisioningDisabled)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "provisioning_disabled", payload.Type)
}

func TestMapErrorCarriesFailureStep(t *testing.T) {
	err := &bootstrapdomain.TransactionError{
		Step: bootstrapdomain.StepClientInsert,
		Err:  errors.New("insert failed"),
	}

	status, payload := mapError(err)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "provisioning_failed", payload.Type)
	assert.Equal(t, "client_insert", payload.FailureStep)
}

func TestMapErrorRecoveryPrecondition(t *testing.T) {
	err := fmt.Errorf("%w: tenant FIRM001 has no administrator to attach", recovery.ErrPrecondition)

	status, payload := mapError(err)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "recovery_precondition", payload.Type)
}

func TestMapErrorNotFound(t *testing.T) {
	status, payload := mapError(tenantdomain.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", payload.Type)
}
