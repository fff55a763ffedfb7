package bootstrap

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	accountdomain "github.com/praxislegal/praxis/internal/account/domain"
	accountrepo "github.com/praxislegal/praxis/internal/account/repository"
	"github.com/praxislegal/praxis/internal/account/token"
	"github.com/praxislegal/praxis/internal/bootstrap/domain"
	clientdomain "github.com/praxislegal/praxis/internal/client/domain"
	clientrepo "github.com/praxislegal/praxis/internal/client/repository"
	"github.com/praxislegal/praxis/internal/config"
	seqdomain "github.com/praxislegal/praxis/internal/sequence/domain"
	seqrepo "github.com/praxislegal/praxis/internal/sequence/repository"
	tenantdomain "github.com/praxislegal/praxis/internal/tenant/domain"
	tenantrepo "github.com/praxislegal/praxis/internal/tenant/repository"
	"github.com/praxislegal/praxis/internal/uow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type capturingEmail struct {
	to      []string
	subject string
	body    string
}

func (p *capturingEmail) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	p.to = to
	p.subject = subject
	p.body = htmlBody
	return nil
}

type capturingSlack struct {
	messages []string
}

func (p *capturingSlack) PostMessage(ctx context.Context, channelID string, message string) error {
	p.messages = append(p.messages, message)
	return nil
}

// failingClients wraps a client repository and fails every Create.
type failingClients struct {
	inner clientdomain.Repository
	err   error
}

func (f *failingClients) WithTx(tx *gorm.DB) clientdomain.Repository {
	return &failingClients{inner: f.inner.WithTx(tx), err: f.err}
}

func (f *failingClients) Create(ctx context.Context, client clientdomain.Client) error {
	return f.err
}

func (f *failingClients) GetByID(ctx context.Context, id snowflake.ID) (*clientdomain.Client, error) {
	return f.inner.GetByID(ctx, id)
}

func (f *failingClients) FindInternalByTenant(ctx context.Context, tenantID snowflake.ID) (*clientdomain.Client, error) {
	return f.inner.FindInternalByTenant(ctx, tenantID)
}

func (f *failingClients) ListByTenant(ctx context.Context, tenantID snowflake.ID) ([]clientdomain.Client, error) {
	return f.inner.ListByTenant(ctx, tenantID)
}

type fixture struct {
	db      *gorm.DB
	service domain.Service
	email   *capturingEmail
	slack   *capturingSlack
	holder  *config.ProvisioningConfigHolder
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&tenantdomain.Tenant{},
		&clientdomain.Client{},
		&accountdomain.Account{},
		&seqdomain.Counter{},
	))
	return db
}

func newFixture(t *testing.T, wrapClients func(clientdomain.Repository) clientdomain.Repository) *fixture {
	t.Helper()

	db := newTestDB(t)

	tenants := tenantrepo.NewRepository(db)
	clients := clientrepo.NewRepository(db)
	if wrapClients != nil {
		clients = wrapClients(clients)
	}
	accounts := accountrepo.NewRepository(db)
	sequences := seqrepo.NewRepository(db)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	holder := config.NewStaticProvisioningConfigHolder(config.ProvisioningConfig{
		Enabled:    true,
		OpsChannel: "#ops",
	})
	emailProvider := &capturingEmail{}
	slackProvider := &capturingSlack{}

	svc := NewService(
		uow.New(db, tenants, clients, accounts, sequences),
		accounts,
		config.Config{InviteBaseURL: "https://app.praxis.test"},
		holder,
		node,
		emailProvider,
		slackProvider,
	)

	return &fixture{
		db:      db,
		service: svc,
		email:   emailProvider,
		slack:   slackProvider,
		holder:  holder,
	}
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestProvisionCreatesFullHierarchy(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	result, err := f.service.Provision(ctx, domain.Request{
		TenantName: "Acme Legal",
		AdminName:  "Dana Moreau",
		AdminEmail: "dana@acme.test",
	})
	require.NoError(t, err)

	assert.Equal(t, "FIRM001", result.Tenant.Code)
	assert.Equal(t, "acme-legal", result.Tenant.Slug)
	assert.Equal(t, tenantdomain.BootstrapCompleted, result.Tenant.BootstrapStatus)
	assert.Equal(t, "CLI0001", result.Client.Code)
	assert.Equal(t, "ADM0001", result.Admin.Code)
	assert.Equal(t, accountdomain.StatusInvited, result.Admin.Status)

	var tenant tenantdomain.Tenant
	require.NoError(t, f.db.First(&tenant, "code = ?", "FIRM001").Error)
	assert.Equal(t, tenantdomain.BootstrapCompleted, tenant.BootstrapStatus)
	require.NotNil(t, tenant.DefaultClientID)

	var client clientdomain.Client
	require.NoError(t, f.db.First(&client, "id = ?", *tenant.DefaultClientID).Error)
	assert.True(t, client.IsInternal)
	assert.True(t, client.IsSystemOwned)
	assert.Equal(t, tenant.ID, client.TenantID)
	assert.Equal(t, tenant.Name, client.Name)

	var admin accountdomain.Account
	require.NoError(t, f.db.First(&admin, "email = ?", "dana@acme.test").Error)
	require.NotNil(t, admin.TenantID)
	assert.Equal(t, tenant.ID, *admin.TenantID)
	require.NotNil(t, admin.DefaultClientID)
	assert.Equal(t, client.ID, *admin.DefaultClientID)
	assert.Equal(t, accountdomain.RoleAdmin, admin.Role)
	assert.Equal(t, accountdomain.StatusInvited, admin.Status)
	assert.True(t, strings.HasPrefix(admin.SetupTokenHash, "$argon2id$"))

	// Invite carries the raw token, never the hash.
	assert.Equal(t, []string{"dana@acme.test"}, f.email.to)
	start := strings.Index(f.email.body, "token=")
	require.GreaterOrEqual(t, start, 0)
	rawToken := f.email.body[start+len("token="):]
	rawToken = rawToken[:strings.IndexAny(rawToken, `"<&`)]
	assert.True(t, token.Verify(rawToken, admin.SetupTokenHash))

	require.Len(t, f.slack.messages, 1)
	assert.Contains(t, f.slack.messages[0], "FIRM001")
}

func TestProvisionRejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.service.Provision(ctx, domain.Request{
		TenantName: "Acme Legal",
		AdminName:  "Dana Moreau",
		AdminEmail: "dana@acme.test",
	})
	require.NoError(t, err)

	_, err = f.service.Provision(ctx, domain.Request{
		TenantName: "Borealis LLP",
		AdminName:  "Sam Chen",
		AdminEmail: "Dana@Acme.test",
	})
	require.ErrorIs(t, err, domain.ErrEmailInUse)

	assert.Equal(t, int64(1), countRows(t, f.db, &tenantdomain.Tenant{}))
	assert.Equal(t, int64(1), countRows(t, f.db, &clientdomain.Client{}))
	assert.Equal(t, int64(1), countRows(t, f.db, &accountdomain.Account{}))
}

func TestProvisionMidTransactionFailureLeavesNothing(t *testing.T) {
	boom := errors.New("client insert rejected")
	f := newFixture(t, func(inner clientdomain.Repository) clientdomain.Repository {
		return &failingClients{inner: inner, err: boom}
	})
	ctx := context.Background()

	_, err := f.service.Provision(ctx, domain.Request{
		TenantName: "Acme Legal",
		AdminName:  "Dana Moreau",
		AdminEmail: "dana@acme.test",
	})
	require.Error(t, err)
	require.ErrorIs(t, err, boom)

	failedStep, ok := domain.FailedStep(err)
	require.True(t, ok)
	assert.Equal(t, domain.StepClientInsert, failedStep)

	assert.Equal(t, int64(0), countRows(t, f.db, &tenantdomain.Tenant{}))
	assert.Equal(t, int64(0), countRows(t, f.db, &clientdomain.Client{}))
	assert.Equal(t, int64(0), countRows(t, f.db, &accountdomain.Account{}))

	assert.Nil(t, f.email.to)
	assert.Empty(t, f.slack.messages)
}

func TestProvisionDisabledByConfig(t *testing.T) {
	f := newFixture(t, nil)
	f.holder.Set(config.ProvisioningConfig{Enabled: false})

	_, err := f.service.Provision(context.Background(), domain.Request{
		TenantName: "Acme Legal",
		AdminName:  "Dana Moreau",
		AdminEmail: "dana@acme.test",
	})
	require.ErrorIs(t, err, domain.ErrProvisioningDisabled)
	assert.Equal(t, int64(0), countRows(t, f.db, &tenantdomain.Tenant{}))
}

func TestProvisionValidatesInput(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.service.Provision(ctx, domain.Request{TenantName: "  ", AdminName: "Dana", AdminEmail: "dana@acme.test"})
	assert.ErrorIs(t, err, domain.ErrInvalidTenantName)

	_, err = f.service.Provision(ctx, domain.Request{TenantName: "Acme", AdminName: "", AdminEmail: "dana@acme.test"})
	assert.ErrorIs(t, err, domain.ErrInvalidAdminName)

	_, err = f.service.Provision(ctx, domain.Request{TenantName: "Acme", AdminName: "Dana", AdminEmail: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidAdminEmail)
}

func TestProvisionResolvesSlugCollisions(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.service.Provision(ctx, domain.Request{
		TenantName: "Acme Legal",
		AdminName:  "Dana Moreau",
		AdminEmail: "dana@acme.test",
	})
	require.NoError(t, err)

	second, err := f.service.Provision(ctx, domain.Request{
		TenantName: "Acme Legal",
		AdminName:  "Sam Chen",
		AdminEmail: "sam@acme.test",
	})
	require.NoError(t, err)

	assert.Equal(t, "acme-legal", first.Tenant.Slug)
	assert.Equal(t, "acme-legal-2", second.Tenant.Slug)
	assert.Equal(t, "FIRM001", first.Tenant.Code)
	assert.Equal(t, "FIRM002", second.Tenant.Code)
}
