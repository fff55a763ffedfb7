package migration

import (
	accountdomain "github.com/praxislegal/praxis/internal/account/domain"
	clientdomain "github.com/praxislegal/praxis/internal/client/domain"
	"github.com/praxislegal/praxis/internal/config"
	sequencedomain "github.com/praxislegal/praxis/internal/sequence/domain"
	tenantdomain "github.com/praxislegal/praxis/internal/tenant/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// Non-postgres deployments (local sqlite, mysql) fall back to
			// schema sync; the SQL migrations target postgres.
			return conn.AutoMigrate(
				&tenantdomain.Tenant{},
				&clientdomain.Client{},
				&accountdomain.Account{},
				&sequencedomain.Counter{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
