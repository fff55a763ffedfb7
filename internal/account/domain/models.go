// Package domain contains persistence models for accounts. An account is
// either a tenant administrator or a platform operator; operators sit above
// the tenant layer and carry no tenant or default-client references.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const (
	RoleAdmin    = "ADMIN"
	RoleOperator = "OPERATOR"
)

const (
	StatusInvited = "INVITED"
	StatusActive  = "ACTIVE"
)

type Account struct {
	ID              snowflake.ID  `gorm:"primaryKey" json:"id"`
	TenantID        *snowflake.ID `gorm:"index" json:"tenant_id"`
	DefaultClientID *snowflake.ID `gorm:"column:default_client_id" json:"default_client_id"`
	Code            string        `gorm:"type:text;not null" json:"code"`
	Name            string        `gorm:"type:text;not null" json:"name"`
	Email           string        `gorm:"type:text;not null;uniqueIndex:ux_accounts_email" json:"email"`
	Role            string        `gorm:"type:text;not null" json:"role"`
	Status          string        `gorm:"type:text;not null" json:"status"`
	// SetupTokenHash holds the argon2id hash of the single-use password
	// setup token. The plaintext exists only in memory for the invite.
	SetupTokenHash string    `gorm:"type:text;column:setup_token_hash" json:"-"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Account) TableName() string { return "accounts" }

// TenantExempt reports whether the account is exempt from the
// tenant/default-client hierarchy requirement.
func (a Account) TenantExempt() bool { return a.Role == RoleOperator }

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, account Account) error
	GetByID(ctx context.Context, id snowflake.ID) (*Account, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	ListByTenant(ctx context.Context, tenantID snowflake.ID) ([]Account, error)
	SetDefaultClient(ctx context.Context, id snowflake.ID, clientID snowflake.ID) error
}

var ErrNotFound = errors.New("account_not_found")
