// Package server exposes the HTTP API for intake, rack assignment, release
// and scanning.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	assignmentdomain "github.com/warelane/warelane/internal/assignment/domain"
	"github.com/warelane/warelane/internal/bootstrap"
	"github.com/warelane/warelane/internal/config"
	exportdomain "github.com/warelane/warelane/internal/export/domain"
	"github.com/warelane/warelane/internal/metrics"
	rackdomain "github.com/warelane/warelane/internal/rack/domain"
	"github.com/warelane/warelane/internal/receipt"
	releasedomain "github.com/warelane/warelane/internal/release/domain"
	scandomain "github.com/warelane/warelane/internal/scan/domain"
	shipmentdomain "github.com/warelane/warelane/internal/shipment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	log     *zap.Logger
	cfg     config.Config
	db      *gorm.DB
	redis   *redis.Client
	metrics *metrics.Metrics
	orgGate bootstrap.OrgGate

	shipmentSvc shipmentdomain.Service
	rackSvc     rackdomain.Service
	assignSvc   assignmentdomain.Service
	releaseSvc  releasedomain.Service
	scanSvc     scandomain.Service
	exportSvc   exportdomain.Service
	receiptSvc  receipt.Service
}

type Params struct {
	fx.In

	Log     *zap.Logger
	Cfg     config.Config
	DB      *gorm.DB
	Redis   *redis.Client     `optional:"true"`
	Metrics *metrics.Metrics
	OrgGate bootstrap.OrgGate `optional:"true"`

	ShipmentSvc shipmentdomain.Service
	RackSvc     rackdomain.Service
	AssignSvc   assignmentdomain.Service
	ReleaseSvc  releasedomain.Service
	ScanSvc     scandomain.Service
	ExportSvc   exportdomain.Service
	ReceiptSvc  receipt.Service
}

func NewServer(p Params) *Server {
	return &Server{
		log:     p.Log.Named("server"),
		cfg:     p.Cfg,
		db:      p.DB,
		redis:   p.Redis,
		metrics: p.Metrics,
		orgGate: p.OrgGate,

		shipmentSvc: p.ShipmentSvc,
		rackSvc:     p.RackSvc,
		assignSvc:   p.AssignSvc,
		releaseSvc:  p.ReleaseSvc,
		scanSvc:     p.ScanSvc,
		exportSvc:   p.ExportSvc,
		receiptSvc:  p.ReceiptSvc,
	}
}

func (s *Server) Engine() *gin.Engine {
	if s.cfg.Server.Mode != "" {
		gin.SetMode(s.cfg.Server.Mode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestIDMiddleware(), s.accessLogMiddleware(), s.metricsMiddleware())

	engine.GET("/healthz", s.Healthz)
	engine.GET("/readyz", s.Readyz)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))

	v1 := engine.Group("/v1")
	v1.Use(s.orgContextMiddleware())

	v1.POST("/shipments", s.CreateShipment)
	v1.GET("/shipments", s.ListShipments)
	v1.GET("/shipments/:id", s.GetShipment)
	v1.GET("/shipments/:id/boxes", s.ListShipmentBoxes)
	v1.POST("/shipments/:id/assign-boxes", s.AssignBoxes)
	v1.POST("/shipments/:id/release-boxes", s.ReleaseBoxes)
	v1.GET("/shipments/:id/charges/preview", s.PreviewCharges)
	v1.GET("/shipments/:id/receipt", s.ReleaseReceipt)

	v1.POST("/racks", s.CreateRack)
	v1.GET("/racks", s.ListRacks)
	v1.GET("/racks/:id", s.GetRack)
	v1.GET("/racks/:id/activity", s.ListRackActivity)
	v1.GET("/racks/:id/activity/export", s.ExportRackActivity)

	v1.POST("/scan", s.Scan)

	return engine
}

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(registerHooks),
)

func registerHooks(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Engine(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				s.log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
