package assignment

import (
	"github.com/warelane/warelane/internal/assignment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("assignment",
	fx.Provide(service.NewService),
)
