// Package domain defines the tenant provisioning contract.
package domain

import "context"

type Service interface {
	// Provision creates a tenant, its internal client, and its initial
	// administrator as one all-or-nothing operation.
	Provision(ctx context.Context, req Request) (*Result, error)
}

type Request struct {
	TenantName string `json:"tenant_name"`
	AdminName  string `json:"admin_name"`
	AdminEmail string `json:"admin_email"`
}

type TenantSummary struct {
	ID              string `json:"id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	BootstrapStatus string `json:"bootstrap_status"`
}

type ClientSummary struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

type AdminSummary struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

type Result struct {
	Tenant TenantSummary `json:"tenant"`
	Client ClientSummary `json:"client"`
	Admin  AdminSummary  `json:"admin"`
}
