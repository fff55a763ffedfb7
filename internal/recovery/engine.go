// Package recovery repairs a tenant whose bootstrap never completed. All
// repairs are idempotent and targeted; the engine never fabricates an
// administrator it cannot notify.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/praxislegal/praxis/internal/account/domain"
	clientdomain "github.com/praxislegal/praxis/internal/client/domain"
	"github.com/praxislegal/praxis/internal/identifier"
	obsmetrics "github.com/praxislegal/praxis/internal/observability/metrics"
	sequencedomain "github.com/praxislegal/praxis/internal/sequence/domain"
	tenantdomain "github.com/praxislegal/praxis/internal/tenant/domain"
	"github.com/praxislegal/praxis/internal/uow"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrPrecondition means recovery cannot proceed safely and the tenant was
// left untouched.
var ErrPrecondition = errors.New("recovery_precondition")

type Engine struct {
	db      *gorm.DB
	uow     uow.UnitOfWork
	genID   *snowflake.Node
	metrics *obsmetrics.Metrics
	log     *zap.Logger
}

func NewEngine(db *gorm.DB, unit uow.UnitOfWork, genID *snowflake.Node, metrics *obsmetrics.Metrics, log *zap.Logger) *Engine {
	return &Engine{
		db:      db,
		uow:     unit,
		genID:   genID,
		metrics: metrics,
		log:     log,
	}
}

// Recover completes the bootstrap of a single tenant. A tenant already
// COMPLETED is a no-op; a tenant with no administrator at all fails with
// ErrPrecondition and remains unchanged.
func (e *Engine) Recover(ctx context.Context, tenantID snowflake.ID) error {
	err := e.uow.Within(ctx, func(ctx context.Context, repos uow.Repos) error {
		tenant, err := repos.Tenants.GetByID(ctx, tenantID)
		if err != nil {
			return err
		}
		if tenant.BootstrapStatus == tenantdomain.BootstrapCompleted {
			return nil
		}

		admins, err := tenantAdmins(ctx, repos, tenantID)
		if err != nil {
			return err
		}
		if len(admins) == 0 {
			return fmt.Errorf("%w: tenant %s has no administrator to attach", ErrPrecondition, tenant.Code)
		}

		clientID, err := resolveInternalClient(ctx, repos, e.genID, tenant)
		if err != nil {
			return err
		}
		if tenant.DefaultClientID == nil || *tenant.DefaultClientID != clientID {
			if err := repos.Tenants.SetDefaultClient(ctx, tenantID, clientID); err != nil {
				return err
			}
		}

		for _, admin := range admins {
			if admin.DefaultClientID != nil {
				continue
			}
			if err := repos.Accounts.SetDefaultClient(ctx, admin.ID, clientID); err != nil {
				return err
			}
		}

		return repos.Tenants.SetBootstrapStatus(ctx, tenantID, tenantdomain.BootstrapCompleted)
	})
	if err != nil {
		if errors.Is(err, ErrPrecondition) {
			e.metrics.RecordRecovery("precondition_failed")
		} else {
			e.metrics.RecordRecovery("error")
		}
		return err
	}

	e.metrics.RecordRecovery("ok")
	return nil
}

// BackfillDefaultClients applies the recovery resolution rule to every
// non-exempt administrator missing a default-client reference. Returns the
// number of accounts updated.
func (e *Engine) BackfillDefaultClients(ctx context.Context) (int, error) {
	type pendingAccount struct {
		ID       snowflake.ID
		TenantID snowflake.ID
	}

	var pending []pendingAccount
	err := e.db.WithContext(ctx).Raw(
		`SELECT id, tenant_id
		 FROM accounts
		 WHERE role <> ? AND default_client_id IS NULL AND tenant_id IS NOT NULL
		 ORDER BY created_at ASC`,
		accountdomain.RoleOperator,
	).Scan(&pending).Error
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, account := range pending {
		err := e.uow.Within(ctx, func(ctx context.Context, repos uow.Repos) error {
			tenant, err := repos.Tenants.GetByID(ctx, account.TenantID)
			if err != nil {
				return err
			}

			var clientID snowflake.ID
			if tenant.DefaultClientID != nil {
				clientID = *tenant.DefaultClientID
			} else {
				existing, err := repos.Clients.FindInternalByTenant(ctx, tenant.ID)
				if err != nil {
					return err
				}
				if existing == nil {
					// Nothing discoverable to attach; leave for per-tenant
					// recovery rather than invent a client here.
					e.log.Warn("backfill skipped account with no resolvable client",
						zap.String("account_id", account.ID.String()),
						zap.String("tenant_id", tenant.ID.String()),
					)
					return nil
				}
				clientID = existing.ID
			}

			if err := repos.Accounts.SetDefaultClient(ctx, account.ID, clientID); err != nil {
				return err
			}
			updated++
			return nil
		})
		if err != nil {
			return updated, err
		}
	}

	return updated, nil
}

func tenantAdmins(ctx context.Context, repos uow.Repos, tenantID snowflake.ID) ([]accountdomain.Account, error) {
	accounts, err := repos.Accounts.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	admins := accounts[:0]
	for _, account := range accounts {
		if account.TenantExempt() {
			continue
		}
		admins = append(admins, account)
	}
	return admins, nil
}

// resolveInternalClient returns the tenant's internal client, discovering
// one left behind by a partial bootstrap before creating anything new.
func resolveInternalClient(ctx context.Context, repos uow.Repos, genID *snowflake.Node, tenant *tenantdomain.Tenant) (snowflake.ID, error) {
	if tenant.DefaultClientID != nil {
		return *tenant.DefaultClientID, nil
	}

	existing, err := repos.Clients.FindInternalByTenant(ctx, tenant.ID)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	seq, err := repos.Sequences.Next(ctx, sequencedomain.ClientSequence, tenant.ID)
	if err != nil {
		return 0, err
	}
	code, err := identifier.Format(identifier.ClassClient, seq)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	created := clientdomain.Client{
		ID:            genID.Generate(),
		TenantID:      tenant.ID,
		Code:          code,
		Name:          tenant.Name,
		IsInternal:    true,
		IsSystemOwned: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repos.Clients.Create(ctx, created); err != nil {
		return 0, err
	}
	return created.ID, nil
}
