// Package domain contains the per-key sequence counter model.
package domain

import "github.com/bwmarrin/snowflake"

// Sequence names used by provisioning.
const (
	TenantSequence  = "tenants"
	ClientSequence  = "clients"
	AccountSequence = "accounts"
)

// GlobalScope is the tenant key for sequences not owned by any tenant,
// such as firm codes.
const GlobalScope snowflake.ID = 0

// Counter is a monotonically increasing integer scoped by (name, tenant).
// Rows are created at 1 on first use and never decremented or reused.
type Counter struct {
	SequenceName string       `gorm:"primaryKey;type:text" json:"sequence_name"`
	TenantID     snowflake.ID `gorm:"primaryKey" json:"tenant_id"`
	Value        int64        `gorm:"not null" json:"value"`
}

// TableName sets the database table name.
func (Counter) TableName() string { return "sequence_counters" }
