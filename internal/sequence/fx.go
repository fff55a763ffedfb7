package sequence

import (
	"github.com/praxislegal/praxis/internal/sequence/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("sequence",
	fx.Provide(repository.NewRepository),
)
