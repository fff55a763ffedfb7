package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	seqdomain "github.com/praxislegal/praxis/internal/sequence/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	// SQLite allows one writer; a single connection serializes the upserts
	// the way row locking does on postgres.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&seqdomain.Counter{}))
	return db
}

func TestNextStartsAtOneAndIncrements(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := repo.Next(ctx, seqdomain.ClientSequence, 42)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestNextScopesByKey(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	v1, err := repo.Next(ctx, seqdomain.ClientSequence, 1)
	require.NoError(t, err)
	v2, err := repo.Next(ctx, seqdomain.ClientSequence, 2)
	require.NoError(t, err)
	v3, err := repo.Next(ctx, seqdomain.AccountSequence, 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), v1)
	assert.Equal(t, int64(1), v2)
	assert.Equal(t, int64(1), v3)

	v4, err := repo.Next(ctx, seqdomain.ClientSequence, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v4)
}

func TestNextConcurrentCallersGetGapFreeValues(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	const n = 32
	values := make(chan int64, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := repo.Next(ctx, seqdomain.TenantSequence, seqdomain.GlobalScope)
			assert.NoError(t, err)
			values <- v
		}()
	}
	wg.Wait()
	close(values)

	seen := make(map[int64]bool, n)
	for v := range values {
		assert.False(t, seen[v], "duplicate sequence value %d", v)
		seen[v] = true
	}
	for want := int64(1); want <= n; want++ {
		assert.True(t, seen[want], "missing sequence value %d", want)
	}
}
