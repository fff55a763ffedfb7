package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/praxislegal/praxis/internal/client/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, client domain.Client) error {
	return r.db.WithContext(ctx).Create(&client).Error
}

func (r *repository) GetByID(ctx context.Context, id snowflake.ID) (*domain.Client, error) {
	var client domain.Client
	err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (r *repository) FindInternalByTenant(ctx context.Context, tenantID snowflake.ID) (*domain.Client, error) {
	var client domain.Client
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_internal = ?", tenantID, true).
		Order("created_at ASC").
		First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

func (r *repository) ListByTenant(ctx context.Context, tenantID snowflake.ID) ([]domain.Client, error) {
	var clients []domain.Client
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}
