package export

import (
	"github.com/warelane/warelane/internal/export/service"
	"go.uber.org/fx"
)

var Module = fx.Module("export",
	fx.Provide(service.NewExportService),
)
