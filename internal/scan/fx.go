package scan

import (
	"time"

	"github.com/warelane/warelane/internal/config"
	"github.com/warelane/warelane/internal/scan/service"
	"go.uber.org/fx"
)

var Module = fx.Module("scan",
	fx.Provide(
		fx.Annotate(
			func(cfg config.Config) time.Duration { return cfg.Redis.ScanCacheTTL },
			fx.ResultTags(`name:"scan_cache_ttl"`),
		),
	),
	fx.Provide(service.NewService),
)
