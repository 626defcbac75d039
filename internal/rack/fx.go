package rack

import (
	"github.com/warelane/warelane/internal/rack/repository"
	"github.com/warelane/warelane/internal/rack/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rack",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
