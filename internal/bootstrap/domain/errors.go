package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProvisioningDisabled = errors.New("provisioning_disabled")
	ErrEmailInUse           = errors.New("admin_email_in_use")

	ErrInvalidTenantName = errors.New("invalid_tenant_name")
	ErrInvalidAdminName  = errors.New("invalid_admin_name")
	ErrInvalidAdminEmail = errors.New("invalid_admin_email")
)

// Step identifies which part of the provisioning transaction failed. Each
// step wraps its own failure, so no guessing from error text is needed.
type Step string

const (
	StepTenantCode        Step = "tenant_code"
	StepSlug              Step = "slug"
	StepTenantInsert      Step = "tenant_insert"
	StepAdminInsert       Step = "admin_insert"
	StepClientLookup      Step = "client_lookup"
	StepClientInsert      Step = "client_insert"
	StepTenantLink        Step = "tenant_link"
	StepAdminLink         Step = "admin_link"
	StepBootstrapComplete Step = "bootstrap_complete"
)

// TransactionError carries the failed step alongside the underlying cause.
type TransactionError struct {
	Step Step
	Err  error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("provisioning failed at step %s: %v", e.Step, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// FailedStep extracts the step tag from err, if it is a TransactionError.
func FailedStep(err error) (Step, bool) {
	var txErr *TransactionError
	if errors.As(err, &txErr) {
		return txErr.Step, true
	}
	return "", false
}
