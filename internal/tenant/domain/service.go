package domain

import (
	"context"
	"errors"
)

type Service interface {
	GetByID(ctx context.Context, id string) (*TenantResponse, error)
}

type TenantResponse struct {
	ID              string `json:"id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	Status          string `json:"status"`
	BootstrapStatus string `json:"bootstrap_status"`
	DefaultClientID string `json:"default_client_id,omitempty"`
}

var (
	ErrInvalidTenant = errors.New("invalid_tenant")
	ErrNotFound      = errors.New("tenant_not_found")
)
