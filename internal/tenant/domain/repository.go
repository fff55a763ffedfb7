package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, tenant Tenant) error
	GetByID(ctx context.Context, id snowflake.ID) (*Tenant, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	SetDefaultClient(ctx context.Context, id snowflake.ID, clientID snowflake.ID) error
	SetBootstrapStatus(ctx context.Context, id snowflake.ID, status string) error
}
