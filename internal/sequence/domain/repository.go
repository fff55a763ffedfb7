package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// Next atomically increments the counter for (name, tenantID) and
	// returns the new value, creating the row at 1 when absent. Concurrent
	// callers on the same key receive gap-free consecutive values.
	Next(ctx context.Context, name string, tenantID snowflake.ID) (int64, error)
}
