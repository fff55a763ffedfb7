package integrity

import (
	"context"
	"sync"
	"time"

	accountdomain "github.com/praxislegal/praxis/internal/account/domain"
	obsmetrics "github.com/praxislegal/praxis/internal/observability/metrics"
	tenantdomain "github.com/praxislegal/praxis/internal/tenant/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Auditor scans the tenant hierarchy for consistency violations.
type Auditor struct {
	db       *gorm.DB
	notifier *Notifier
	metrics  *obsmetrics.Metrics
	log      *zap.Logger

	mu   sync.RWMutex
	last *Report
}

func NewAuditor(db *gorm.DB, notifier *Notifier, metrics *obsmetrics.Metrics, log *zap.Logger) *Auditor {
	return &Auditor{
		db:       db,
		notifier: notifier,
		metrics:  metrics,
		log:      log,
	}
}

// Scan classifies legacy tenants, collects violations, and notifies
// operators once per process lifetime when anything blocking is found.
func (a *Auditor) Scan(ctx context.Context) (*Report, error) {
	if err := a.classifyLegacyTenants(ctx); err != nil {
		return nil, err
	}

	report := &Report{ScannedAt: time.Now().UTC()}

	if err := a.db.WithContext(ctx).Raw(
		`SELECT id AS tenant_id, code, name
		 FROM tenants
		 WHERE bootstrap_status = ?
		 ORDER BY created_at ASC`,
		tenantdomain.BootstrapPending,
	).Scan(&report.PendingTenants).Error; err != nil {
		return nil, err
	}

	if err := a.db.WithContext(ctx).Raw(
		`SELECT id AS tenant_id, code, name
		 FROM tenants
		 WHERE bootstrap_status <> ? AND default_client_id IS NULL
		 ORDER BY created_at ASC`,
		tenantdomain.BootstrapPending,
	).Scan(&report.TenantsMissingDefaultClient).Error; err != nil {
		return nil, err
	}

	if err := a.db.WithContext(ctx).Raw(
		`SELECT c.id AS client_id, c.tenant_id, c.code
		 FROM clients c
		 LEFT JOIN tenants t ON t.id = c.tenant_id
		 WHERE t.id IS NULL
		 ORDER BY c.created_at ASC`,
	).Scan(&report.OrphanedClients).Error; err != nil {
		return nil, err
	}

	var accounts []accountdomain.Account
	if err := a.db.WithContext(ctx).
		Where("tenant_id IS NULL OR default_client_id IS NULL").
		Order("created_at ASC").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	for _, account := range accounts {
		finding := AccountFinding{
			AccountID:        account.ID,
			Email:            account.Email,
			Role:             account.Role,
			MissingTenant:    account.TenantID == nil,
			MissingDefClient: account.DefaultClientID == nil,
		}
		if account.TenantExempt() {
			report.OperatorInfo = append(report.OperatorInfo, finding)
			continue
		}
		report.AccountsMissingRefs = append(report.AccountsMissingRefs, finding)
	}

	a.mu.Lock()
	a.last = report
	a.mu.Unlock()

	a.metrics.RecordIntegrityScan(report.CategoryCounts())

	if report.HasBlockingViolations() {
		a.log.Warn("integrity scan found violations",
			zap.Int("pending_tenants", len(report.PendingTenants)),
			zap.Int("tenants_missing_default_client", len(report.TenantsMissingDefaultClient)),
			zap.Int("orphaned_clients", len(report.OrphanedClients)),
			zap.Int("accounts_missing_refs", len(report.AccountsMissingRefs)),
		)
		a.notifier.NotifyOnce(ctx, report)
	}

	return report, nil
}

// LastReport returns the most recent scan outcome, or nil before the
// first scan.
func (a *Auditor) LastReport() *Report {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

// classifyLegacyTenants assigns a bootstrap status to tenants created
// before the status existed: COMPLETED when a default client is already
// linked, PENDING otherwise.
func (a *Auditor) classifyLegacyTenants(ctx context.Context) error {
	if err := a.db.WithContext(ctx).Exec(
		`UPDATE tenants SET bootstrap_status = ?
		 WHERE (bootstrap_status IS NULL OR bootstrap_status = '')
		   AND default_client_id IS NOT NULL`,
		tenantdomain.BootstrapCompleted,
	).Error; err != nil {
		return err
	}

	return a.db.WithContext(ctx).Exec(
		`UPDATE tenants SET bootstrap_status = ?
		 WHERE (bootstrap_status IS NULL OR bootstrap_status = '')
		   AND default_client_id IS NULL`,
		tenantdomain.BootstrapPending,
	).Error
}
