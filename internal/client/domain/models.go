// Package domain contains persistence models for the client service.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Client is a record the firm keeps cases against. Every tenant owns
// exactly one internal, system-owned client representing the firm itself;
// that client is never deleted or reassigned.
type Client struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID      snowflake.ID `gorm:"not null;index;uniqueIndex:ux_clients_tenant_code,priority:1" json:"tenant_id"`
	Code          string       `gorm:"type:text;not null;uniqueIndex:ux_clients_tenant_code,priority:2" json:"code"`
	Name          string       `gorm:"type:text;not null" json:"name"`
	IsInternal    bool         `gorm:"column:is_internal;not null;default:false" json:"is_internal"`
	IsSystemOwned bool         `gorm:"column:is_system_owned;not null;default:false" json:"is_system_owned"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Client) TableName() string { return "clients" }

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, client Client) error
	GetByID(ctx context.Context, id snowflake.ID) (*Client, error)
	// FindInternalByTenant returns the tenant's internal client, or nil
	// when none exists yet.
	FindInternalByTenant(ctx context.Context, tenantID snowflake.ID) (*Client, error)
	ListByTenant(ctx context.Context, tenantID snowflake.ID) ([]Client, error)
}

var ErrNotFound = errors.New("client_not_found")
