package integrity

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("integrity",
	fx.Provide(NewNotifier),
	fx.Provide(NewAuditor),
	fx.Invoke(runStartupScan),
)

// runStartupScan kicks off one scan in the background. A scan failure is
// logged and never blocks process startup.
func runStartupScan(lc fx.Lifecycle, auditor *Auditor, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = ctx
			go func() {
				if _, err := auditor.Scan(context.Background()); err != nil {
					log.Error("startup integrity scan failed", zap.Error(err))
				}
			}()
			return nil
		},
	})
}
