// Package domain contains persistence models for the tenant service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Lifecycle status of a tenant.
const (
	StatusActive    = "ACTIVE"
	StatusSuspended = "SUSPENDED"
	StatusInactive  = "INACTIVE"
)

// Bootstrap status of a tenant. A tenant is observable to its own users
// only once provisioning reached COMPLETED.
const (
	BootstrapPending   = "PENDING"
	BootstrapCompleted = "COMPLETED"
	BootstrapFailed    = "FAILED"
)

// Tenant represents a firm. Code, Name and Slug are immutable after
// creation; DefaultClientID is set exactly once during bootstrap.
type Tenant struct {
	ID              snowflake.ID      `gorm:"primaryKey" json:"id"`
	Code            string            `gorm:"type:text;not null;uniqueIndex:ux_tenants_code" json:"code"`
	Name            string            `gorm:"type:text;not null" json:"name"`
	Slug            string            `gorm:"type:text;not null;uniqueIndex:ux_tenants_slug" json:"slug"`
	Status          string            `gorm:"type:text;not null" json:"status"`
	BootstrapStatus string            `gorm:"type:text;not null;default:''" json:"bootstrap_status"`
	DefaultClientID *snowflake.ID     `gorm:"column:default_client_id" json:"default_client_id"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`
	CreatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }
