package account

import (
	"github.com/praxislegal/praxis/internal/account/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("account.service",
	fx.Provide(repository.NewRepository),
)
