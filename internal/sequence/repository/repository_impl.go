package repository

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/praxislegal/praxis/internal/sequence/domain"
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

// Next is a single upsert statement so no client-side locking is needed.
// The RETURNING clause is supported by both postgres and sqlite.
func (r *repository) Next(ctx context.Context, name string, tenantID snowflake.ID) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Raw(
		`INSERT INTO sequence_counters (sequence_name, tenant_id, value)
		 VALUES (?, ?, 1)
		 ON CONFLICT (sequence_name, tenant_id)
		 DO UPDATE SET value = sequence_counters.value + 1
		 RETURNING value`,
		name,
		tenantID,
	).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	if value <= 0 {
		return 0, fmt.Errorf("sequence %s returned non-positive value %d", name, value)
	}
	return value, nil
}
