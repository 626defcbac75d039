package shipment

import (
	"github.com/warelane/warelane/internal/shipment/repository"
	"github.com/warelane/warelane/internal/shipment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("shipment",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
