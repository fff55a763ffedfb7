package tenant

import (
	"github.com/praxislegal/praxis/internal/tenant/repository"
	"github.com/praxislegal/praxis/internal/tenant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
