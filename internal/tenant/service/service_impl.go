package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/praxislegal/praxis/internal/tenant/domain"
)

type service struct {
	repo domain.Repository
}

func NewService(repo domain.Repository) domain.Service {
	return &service{repo: repo}
}

func (s *service) GetByID(ctx context.Context, id string) (*domain.TenantResponse, error) {
	raw := strings.TrimSpace(id)
	if raw == "" {
		return nil, domain.ErrInvalidTenant
	}
	tenantID, err := snowflake.ParseString(raw)
	if err != nil {
		return nil, domain.ErrInvalidTenant
	}

	tenant, err := s.repo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	resp := &domain.TenantResponse{
		ID:              tenant.ID.String(),
		Code:            tenant.Code,
		Name:            tenant.Name,
		Slug:            tenant.Slug,
		Status:          tenant.Status,
		BootstrapStatus: tenant.BootstrapStatus,
	}
	if tenant.DefaultClientID != nil {
		resp.DefaultClientID = tenant.DefaultClientID.String()
	}
	return resp, nil
}
