package clock

import (
	"context"
	"time"

	"go.uber.org/fx"
)

// Clock abstracts business time so storage-day arithmetic is testable.
type Clock interface {
	Now(ctx context.Context) time.Time
}

var Module = fx.Module("clock",
	fx.Provide(func() Clock { return SystemClock{} }),
)
