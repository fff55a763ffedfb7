package bootstrap

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	accountdomain "github.com/praxislegal/praxis/internal/account/domain"
	"github.com/praxislegal/praxis/internal/account/token"
	"github.com/praxislegal/praxis/internal/bootstrap/domain"
	clientdomain "github.com/praxislegal/praxis/internal/client/domain"
	"github.com/praxislegal/praxis/internal/config"
	"github.com/praxislegal/praxis/internal/identifier"
	"github.com/praxislegal/praxis/internal/providers/email"
	slackprovider "github.com/praxislegal/praxis/internal/providers/slack"
	sequencedomain "github.com/praxislegal/praxis/internal/sequence/domain"
	tenantdomain "github.com/praxislegal/praxis/internal/tenant/domain"
	"github.com/praxislegal/praxis/internal/uow"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type service struct {
	uow       uow.UnitOfWork
	accounts  accountdomain.Repository
	cfg       config.Config
	cfgHolder *config.ProvisioningConfigHolder
	genID     *snowflake.Node
	email     email.Provider
	slack     slackprovider.Provider
}

func NewService(
	unit uow.UnitOfWork,
	accounts accountdomain.Repository,
	cfg config.Config,
	cfgHolder *config.ProvisioningConfigHolder,
	genID *snowflake.Node,
	emailProvider email.Provider,
	slackProvider slackprovider.Provider,
) domain.Service {
	return &service{
		uow:       unit,
		accounts:  accounts,
		cfg:       cfg,
		cfgHolder: cfgHolder,
		genID:     genID,
		email:     emailProvider,
		slack:     slackProvider,
	}
}

func (s *service) Provision(ctx context.Context, req domain.Request) (*domain.Result, error) {
	if !s.cfgHolder.Get().Enabled {
		return nil, domain.ErrProvisioningDisabled
	}

	tenantName := strings.TrimSpace(req.TenantName)
	if tenantName == "" {
		return nil, domain.ErrInvalidTenantName
	}
	adminName := strings.TrimSpace(req.AdminName)
	if adminName == "" {
		return nil, domain.ErrInvalidAdminName
	}
	adminEmail := strings.TrimSpace(req.AdminEmail)
	if adminEmail == "" {
		return nil, domain.ErrInvalidAdminEmail
	}
	if _, err := mail.ParseAddress(adminEmail); err != nil {
		return nil, domain.ErrInvalidAdminEmail
	}

	// Check-then-act relative to the insert; the unique index on email is
	// the backstop and a mid-transaction collision surfaces as a conflict
	// the caller retries.
	exists, err := s.accounts.EmailExists(ctx, adminEmail)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailInUse
	}

	rawToken := token.Generate()
	tokenHash, err := token.Hash(rawToken)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tenantID := s.genID.Generate()
	adminID := s.genID.Generate()

	var tenant tenantdomain.Tenant
	var internalClient clientdomain.Client
	var admin accountdomain.Account

	err = s.uow.Within(ctx, func(ctx context.Context, repos uow.Repos) error {
		tenantSeq, err := repos.Sequences.Next(ctx, sequencedomain.TenantSequence, sequencedomain.GlobalScope)
		if err != nil {
			return step(domain.StepTenantCode, err)
		}
		tenantCode, err := identifier.Format(identifier.ClassTenant, tenantSeq)
		if err != nil {
			return step(domain.StepTenantCode, err)
		}

		tenantSlug, err := s.resolveSlug(ctx, repos.Tenants, tenantName)
		if err != nil {
			return step(domain.StepSlug, err)
		}

		tenant = tenantdomain.Tenant{
			ID:              tenantID,
			Code:            tenantCode,
			Name:            tenantName,
			Slug:            tenantSlug,
			Status:          tenantdomain.StatusActive,
			BootstrapStatus: tenantdomain.BootstrapPending,
			Metadata:        datatypes.JSONMap{},
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := repos.Tenants.Create(ctx, tenant); err != nil {
			return step(domain.StepTenantInsert, err)
		}

		adminSeq, err := repos.Sequences.Next(ctx, sequencedomain.AccountSequence, tenantID)
		if err != nil {
			return step(domain.StepAdminInsert, err)
		}
		adminCode, err := identifier.Format(identifier.ClassAccount, adminSeq)
		if err != nil {
			return step(domain.StepAdminInsert, err)
		}

		admin = accountdomain.Account{
			ID:             adminID,
			TenantID:       &tenantID,
			Code:           adminCode,
			Name:           adminName,
			Email:          adminEmail,
			Role:           accountdomain.RoleAdmin,
			Status:         accountdomain.StatusInvited,
			SetupTokenHash: tokenHash,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := repos.Accounts.Create(ctx, admin); err != nil {
			return step(domain.StepAdminInsert, err)
		}

		// A retried partially-applied attempt could have left an internal
		// client behind; the transaction should prevent that, but reuse it
		// rather than create a duplicate.
		existing, err := repos.Clients.FindInternalByTenant(ctx, tenantID)
		if err != nil {
			return step(domain.StepClientLookup, err)
		}
		if existing != nil {
			internalClient = *existing
		} else {
			clientSeq, err := repos.Sequences.Next(ctx, sequencedomain.ClientSequence, tenantID)
			if err != nil {
				return step(domain.StepClientInsert, err)
			}
			clientCode, err := identifier.Format(identifier.ClassClient, clientSeq)
			if err != nil {
				return step(domain.StepClientInsert, err)
			}
			internalClient = clientdomain.Client{
				ID:            s.genID.Generate(),
				TenantID:      tenantID,
				Code:          clientCode,
				Name:          tenantName,
				IsInternal:    true,
				IsSystemOwned: true,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := repos.Clients.Create(ctx, internalClient); err != nil {
				return step(domain.StepClientInsert, err)
			}
		}

		if err := repos.Tenants.SetDefaultClient(ctx, tenantID, internalClient.ID); err != nil {
			return step(domain.StepTenantLink, err)
		}
		if err := repos.Accounts.SetDefaultClient(ctx, adminID, internalClient.ID); err != nil {
			return step(domain.StepAdminLink, err)
		}
		if err := repos.Tenants.SetBootstrapStatus(ctx, tenantID, tenantdomain.BootstrapCompleted); err != nil {
			return step(domain.StepBootstrapComplete, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Notifications run after commit and never unwind the tenant.
	s.sendInvite(ctx, admin, tenant, rawToken)
	s.notifyOperators(ctx, tenant)

	return &domain.Result{
		Tenant: domain.TenantSummary{
			ID:              tenant.ID.String(),
			Code:            tenant.Code,
			Name:            tenant.Name,
			Slug:            tenant.Slug,
			BootstrapStatus: tenantdomain.BootstrapCompleted,
		},
		Client: domain.ClientSummary{
			ID:   internalClient.ID.String(),
			Code: internalClient.Code,
		},
		Admin: domain.AdminSummary{
			ID:     admin.ID.String(),
			Code:   admin.Code,
			Email:  admin.Email,
			Status: admin.Status,
		},
	}, nil
}

// resolveSlug derives a URL-safe slug and appends the smallest unused
// numeric suffix on collision.
func (s *service) resolveSlug(ctx context.Context, tenants tenantdomain.Repository, name string) (string, error) {
	base := slug.Make(name)
	candidate := base
	for n := 2; ; n++ {
		exists, err := tenants.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

func (s *service) sendInvite(ctx context.Context, admin accountdomain.Account, tenant tenantdomain.Tenant, rawToken string) {
	if s.email == nil {
		return
	}

	setupURL := fmt.Sprintf("%s/setup-password?token=%s", strings.TrimRight(s.cfg.InviteBaseURL, "/"), rawToken)
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your firm <strong>%s</strong> (%s) is ready. Set your password to get started:</p><p><a href=%q>%s</a></p>",
		admin.Name, tenant.Name, tenant.Code, setupURL, setupURL,
	)
	if err := s.email.Send(ctx, []string{admin.Email}, "Welcome to Praxis", body); err != nil {
		zap.L().Warn("failed to send admin invite",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("admin_id", admin.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *service) notifyOperators(ctx context.Context, tenant tenantdomain.Tenant) {
	if s.slack == nil {
		return
	}

	channel := s.cfgHolder.Get().OpsChannel
	message := fmt.Sprintf("Tenant provisioned: %s (%s, slug %s)", tenant.Name, tenant.Code, tenant.Slug)
	if err := s.slack.PostMessage(ctx, channel, message); err != nil {
		zap.L().Warn("failed to notify operators of provisioning",
			zap.String("tenant_id", tenant.ID.String()),
			zap.Error(err),
		)
	}
}

func step(tag domain.Step, err error) error {
	return &domain.TransactionError{Step: tag, Err: err}
}
