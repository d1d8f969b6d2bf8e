// Package server exposes the back-office HTTP API.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	batchdomain "github.com/condovialabs/condovia/internal/batch/domain"
	chargedomain "github.com/condovialabs/condovia/internal/charge/domain"
	"github.com/condovialabs/condovia/internal/config"
	feetemplatedomain "github.com/condovialabs/condovia/internal/feetemplate/domain"
	"github.com/condovialabs/condovia/internal/observability"
	reportingdomain "github.com/condovialabs/condovia/internal/reporting/domain"
	residentdomain "github.com/condovialabs/condovia/internal/resident/domain"
)

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(registerHTTPServer),
)

type Params struct {
	fx.In

	Log          *zap.Logger
	Config       config.Config
	Metrics      *observability.Metrics
	TemplateSvc  feetemplatedomain.Service
	ChargeSvc    chargedomain.Service
	BatchSvc     batchdomain.Service
	ReportingSvc reportingdomain.Service
	ResidentSvc  residentdomain.Service
}

type Server struct {
	log          *zap.Logger
	cfg          config.Config
	metrics      *observability.Metrics
	templateSvc  feetemplatedomain.Service
	chargeSvc    chargedomain.Service
	batchSvc     batchdomain.Service
	reportingSvc reportingdomain.Service
	residentSvc  residentdomain.Service
}

func NewServer(p Params) *Server {
	return &Server{
		log:          p.Log.Named("server"),
		cfg:          p.Config,
		metrics:      p.Metrics,
		templateSvc:  p.TemplateSvc,
		chargeSvc:    p.ChargeSvc,
		batchSvc:     p.BatchSvc,
		reportingSvc: p.ReportingSvc,
		residentSvc:  p.ResidentSvc,
	}
}

func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
		s.metrics.Registry,
		promhttp.HandlerOpts{},
	)))

	v1 := router.Group("/v1")
	{
		v1.POST("/fee-templates", s.CreateFeeTemplate)
		v1.GET("/fee-templates", s.ListFeeTemplates)
		v1.GET("/fee-templates/:id", s.GetFeeTemplate)
		v1.PATCH("/fee-templates/:id", s.UpdateFeeTemplate)
		v1.POST("/fee-templates/:id/deactivate", s.DeactivateFeeTemplate)
		v1.DELETE("/fee-templates/:id", s.DeleteFeeTemplate)

		v1.POST("/charges", s.CreateAdHocCharge)
		v1.GET("/charges", s.ListCharges)
		v1.GET("/charges/:id", s.GetCharge)
		v1.POST("/charges/:id/payments", s.RecordPayment)
		v1.POST("/charges/:id/cancel", s.CancelCharge)

		v1.POST("/batches", s.GenerateBatch)

		v1.GET("/stats", s.GetStats)

		v1.POST("/residents", s.CreateResident)
		v1.GET("/residents", s.ListResidents)
		v1.GET("/residents/:id", s.GetResident)
		v1.POST("/residents/:id/deactivate", s.DeactivateResident)
	}

	return router
}

func registerHTTPServer(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s.Router(),
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			s.log.Info("http server listening", zap.String("addr", s.cfg.Server.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
