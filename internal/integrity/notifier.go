package integrity

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/praxislegal/praxis/internal/config"
	slackprovider "github.com/praxislegal/praxis/internal/providers/slack"
	"go.uber.org/zap"
)

// Notifier sends at most one batched integrity notification per process
// lifetime. It is explicit state with a reset, not a package-level flag,
// so tests can exercise the limit.
type Notifier struct {
	mu   sync.Mutex
	sent bool

	slack     slackprovider.Provider
	cfgHolder *config.ProvisioningConfigHolder
}

func NewNotifier(slack slackprovider.Provider, cfgHolder *config.ProvisioningConfigHolder) *Notifier {
	return &Notifier{
		slack:     slack,
		cfgHolder: cfgHolder,
	}
}

// NotifyOnce sends one summary covering all violation categories together.
// Subsequent calls are no-ops until Reset. Delivery failure is logged and
// does not re-arm the notifier.
func (n *Notifier) NotifyOnce(ctx context.Context, report *Report) {
	n.mu.Lock()
	if n.sent {
		n.mu.Unlock()
		return
	}
	n.sent = true
	n.mu.Unlock()

	if n.slack == nil || report == nil {
		return
	}

	channel := n.cfgHolder.Get().OpsChannel
	if err := n.slack.PostMessage(ctx, channel, summarize(report)); err != nil {
		zap.L().Warn("failed to send integrity notification", zap.Error(err))
	}
}

// Reset re-arms the notifier.
func (n *Notifier) Reset() {
	n.mu.Lock()
	n.sent = false
	n.mu.Unlock()
}

func summarize(report *Report) string {
	counts := report.CategoryCounts()
	categories := make([]string, 0, len(counts))
	for category := range counts {
		if category == "operator_info" {
			continue
		}
		categories = append(categories, category)
	}
	sort.Strings(categories)

	parts := make([]string, 0, len(categories))
	for _, category := range categories {
		parts = append(parts, fmt.Sprintf("%s=%d", category, counts[category]))
	}
	return fmt.Sprintf("Integrity scan found violations: %s", strings.Join(parts, ", "))
}
