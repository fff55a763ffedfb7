// Package uow bundles the provisioning repositories behind a transactional
// unit-of-work boundary so orchestration logic never handles a driver
// transaction type directly.
package uow

import (
	"context"

	accountdomain "github.com/praxislegal/praxis/internal/account/domain"
	clientdomain "github.com/praxislegal/praxis/internal/client/domain"
	sequencedomain "github.com/praxislegal/praxis/internal/sequence/domain"
	tenantdomain "github.com/praxislegal/praxis/internal/tenant/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Repos is the set of repositories visible inside one transaction.
type Repos struct {
	Tenants   tenantdomain.Repository
	Clients   clientdomain.Repository
	Accounts  accountdomain.Repository
	Sequences sequencedomain.Repository
}

// UnitOfWork runs fn inside a single atomic transaction. Any error from fn
// aborts the whole transaction; no partial writes become visible.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}

type gormUnitOfWork struct {
	db    *gorm.DB
	repos Repos
}

func New(
	db *gorm.DB,
	tenants tenantdomain.Repository,
	clients clientdomain.Repository,
	accounts accountdomain.Repository,
	sequences sequencedomain.Repository,
) UnitOfWork {
	return &gormUnitOfWork{
		db: db,
		repos: Repos{
			Tenants:   tenants,
			Clients:   clients,
			Accounts:  accounts,
			Sequences: sequences,
		},
	}
}

func (u *gormUnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bound := Repos{
			Tenants:   u.repos.Tenants.WithTx(tx),
			Clients:   u.repos.Clients.WithTx(tx),
			Accounts:  u.repos.Accounts.WithTx(tx),
			Sequences: u.repos.Sequences.WithTx(tx),
		}
		return fn(ctx, bound)
	})
}

// Module wires the gorm-backed unit of work.
var Module = fx.Module("uow",
	fx.Provide(New),
)
