package integrity

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	accountdomain "github.com/praxislegal/praxis/internal/account/domain"
	clientdomain "github.com/praxislegal/praxis/internal/client/domain"
	"github.com/praxislegal/praxis/internal/config"
	tenantdomain "github.com/praxislegal/praxis/internal/tenant/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type countingSlack struct {
	calls    int
	messages []string
}

func (p *countingSlack) PostMessage(ctx context.Context, channelID string, message string) error {
	p.calls++
	p.messages = append(p.messages, message)
	return nil
}

func newTestAuditor(t *testing.T) (*Auditor, *gorm.DB, *countingSlack) {
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
	))

	slack := &countingSlack{}
	holder := config.NewStaticProvisioningConfigHolder(config.ProvisioningConfig{OpsChannel: "#ops"})
	notifier := NewNotifier(slack, holder)

	return NewAuditor(db, notifier, nil, zap.NewNop()), db, slack
}

func addTenant(t *testing.T, db *gorm.DB, id snowflake.ID, status string, defaultClientID *snowflake.ID) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, db.Create(&tenantdomain.Tenant{
		ID:              id,
		Code:            "FIRM" + id.String(),
		Name:            "Firm " + id.String(),
		Slug:            "firm-" + id.String(),
		Status:          tenantdomain.StatusActive,
		BootstrapStatus: status,
		DefaultClientID: defaultClientID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}).Error)
}

func TestScanClassifiesLegacyTenants(t *testing.T) {
	auditor, db, _ := newTestAuditor(t)
	ctx := context.Background()

	linked := snowflake.ID(900)
	addTenant(t, db, 1, "", &linked)
	addTenant(t, db, 2, "", nil)

	report, err := auditor.Scan(ctx)
	require.NoError(t, err)

	var completed, pending tenantdomain.Tenant
	require.NoError(t, db.First(&completed, "id = ?", 1).Error)
	require.NoError(t, db.First(&pending, "id = ?", 2).Error)
	assert.Equal(t, tenantdomain.BootstrapCompleted, completed.BootstrapStatus)
	assert.Equal(t, tenantdomain.BootstrapPending, pending.BootstrapStatus)

	require.Len(t, report.PendingTenants, 1)
	assert.Equal(t, snowflake.ID(2), report.PendingTenants[0].TenantID)
}

func TestScanFindsStructuralViolations(t *testing.T) {
	auditor, db, _ := newTestAuditor(t)
	ctx := context.Background()

	addTenant(t, db, 10, tenantdomain.BootstrapCompleted, nil)

	require.NoError(t, db.Create(&clientdomain.Client{
		ID:       500,
		TenantID: 9999,
		Code:     "CLI0001",
		Name:     "Orphan",
	}).Error)

	tenantID := snowflake.ID(10)
	require.NoError(t, db.Create(&accountdomain.Account{
		ID:       600,
		TenantID: &tenantID,
		Code:     "ADM0001",
		Name:     "No Client",
		Email:    "noclient@firm.test",
		Role:     accountdomain.RoleAdmin,
		Status:   accountdomain.StatusActive,
	}).Error)

	report, err := auditor.Scan(ctx)
	require.NoError(t, err)

	assert.True(t, report.HasBlockingViolations())
	require.Len(t, report.TenantsMissingDefaultClient, 1)
	require.Len(t, report.OrphanedClients, 1)
	assert.Equal(t, snowflake.ID(500), report.OrphanedClients[0].ClientID)
	require.Len(t, report.AccountsMissingRefs, 1)
	assert.True(t, report.AccountsMissingRefs[0].MissingDefClient)
}

func TestScanTreatsOperatorsAsInformational(t *testing.T) {
	auditor, db, slack := newTestAuditor(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&accountdomain.Account{
		ID:     700,
		Code:   "ADM0001",
		Name:   "Platform Operator",
		Email:  "ops@praxis.test",
		Role:   accountdomain.RoleOperator,
		Status: accountdomain.StatusActive,
	}).Error)

	report, err := auditor.Scan(ctx)
	require.NoError(t, err)

	assert.False(t, report.HasBlockingViolations())
	assert.Empty(t, report.AccountsMissingRefs)
	require.Len(t, report.OperatorInfo, 1)
	assert.True(t, report.OperatorInfo[0].MissingTenant)

	// Informational findings alone never page anyone.
	assert.Equal(t, 0, slack.calls)
}

func TestScanNotifiesOncePerProcess(t *testing.T) {
	auditor, db, slack := newTestAuditor(t)
	ctx := context.Background()

	addTenant(t, db, 20, tenantdomain.BootstrapPending, nil)

	_, err := auditor.Scan(ctx)
	require.NoError(t, err)
	_, err = auditor.Scan(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, slack.calls)
	assert.Contains(t, slack.messages[0], "pending_tenants=1")

	auditor.notifier.Reset()
	_, err = auditor.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, slack.calls)
}

func TestLastReportReflectsMostRecentScan(t *testing.T) {
	auditor, db, _ := newTestAuditor(t)
	ctx := context.Background()

	assert.Nil(t, auditor.LastReport())

	addTenant(t, db, 30, tenantdomain.BootstrapPending, nil)
	_, err := auditor.Scan(ctx)
	require.NoError(t, err)

	report := auditor.LastReport()
	require.NotNil(t, report)
	assert.Len(t, report.PendingTenants, 1)
}
