package billing

import (
	"github.com/warelane/warelane/internal/billing/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("billing",
	fx.Provide(repository.NewRepository),
)
