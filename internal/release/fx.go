package release

import (
	"github.com/warelane/warelane/internal/release/service"
	"go.uber.org/fx"
)

var Module = fx.Module("release",
	fx.Provide(service.NewService),
)
