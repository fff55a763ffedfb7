// Package integrity detects tenant-hierarchy violations without mutating
// data. Findings feed the operator notification and the recovery tooling;
// the scan itself never heals anything.
package integrity

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TenantFinding identifies a tenant implicated in a violation.
type TenantFinding struct {
	TenantID snowflake.ID `json:"tenant_id"`
	Code     string       `json:"code"`
	Name     string       `json:"name"`
}

// ClientFinding identifies a client with no owning tenant.
type ClientFinding struct {
	ClientID snowflake.ID `json:"client_id"`
	TenantID snowflake.ID `json:"tenant_id"`
	Code     string       `json:"code"`
}

// AccountFinding identifies an account missing hierarchy references.
type AccountFinding struct {
	AccountID        snowflake.ID `json:"account_id"`
	Email            string       `json:"email"`
	Role             string       `json:"role"`
	MissingTenant    bool         `json:"missing_tenant"`
	MissingDefClient bool         `json:"missing_default_client"`
}

// Report is the outcome of one integrity scan.
type Report struct {
	ScannedAt time.Time `json:"scanned_at"`

	// Blocking violation categories.
	PendingTenants              []TenantFinding  `json:"pending_tenants"`
	TenantsMissingDefaultClient []TenantFinding  `json:"tenants_missing_default_client"`
	OrphanedClients             []ClientFinding  `json:"orphaned_clients"`
	AccountsMissingRefs         []AccountFinding `json:"accounts_missing_refs"`

	// Informational only: platform operators are exempt from the
	// hierarchy requirement.
	OperatorInfo []AccountFinding `json:"operator_info"`
}

// HasBlockingViolations reports whether any blocking category is non-empty.
// Operator findings never count.
func (r *Report) HasBlockingViolations() bool {
	return len(r.PendingTenants) > 0 ||
		len(r.TenantsMissingDefaultClient) > 0 ||
		len(r.OrphanedClients) > 0 ||
		len(r.AccountsMissingRefs) > 0
}

// CategoryCounts summarizes the report for metrics and notifications.
func (r *Report) CategoryCounts() map[string]int {
	return map[string]int{
		"pending_tenants":                len(r.PendingTenants),
		"tenants_missing_default_client": len(r.TenantsMissingDefaultClient),
		"orphaned_clients":               len(r.OrphanedClients),
		"accounts_missing_refs":          len(r.AccountsMissingRefs),
		"operator_info":                  len(r.OperatorInfo),
	}
}
