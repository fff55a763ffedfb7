package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/praxislegal/praxis/internal/account"
	"github.com/praxislegal/praxis/internal/bootstrap"
	bootstrapdomain "github.com/praxislegal/praxis/internal/bootstrap/domain"
	"github.com/praxislegal/praxis/internal/client"
	clientdomain "github.com/praxislegal/praxis/internal/client/domain"
	"github.com/praxislegal/praxis/internal/config"
	"github.com/praxislegal/praxis/internal/integrity"
	"github.com/praxislegal/praxis/internal/logger"
	obsmetrics "github.com/praxislegal/praxis/internal/observability/metrics"
	obstracing "github.com/praxislegal/praxis/internal/observability/tracing"
	"github.com/praxislegal/praxis/internal/providers/email"
	slackprovider "github.com/praxislegal/praxis/internal/providers/slack"
	"github.com/praxislegal/praxis/internal/recovery"
	"github.com/praxislegal/praxis/internal/sequence"
	"github.com/praxislegal/praxis/internal/tenant"
	tenantdomain "github.com/praxislegal/praxis/internal/tenant/domain"
	"github.com/praxislegal/praxis/internal/uow"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	tenant.Module,
	client.Module,
	account.Module,
	sequence.Module,
	uow.Module,
	email.Module,
	slackprovider.Module,
	bootstrap.Module,
	recovery.Module,
	integrity.Module,
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics, registry *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(log))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	bootstrapsvc bootstrapdomain.Service
	tenantsvc    tenantdomain.Service
	clients      clientdomain.Repository
	auditor      *integrity.Auditor
	recoverysvc  *recovery.Engine
	metrics      *obsmetrics.Metrics
	log          *zap.Logger
}

type ServerParams struct {
	fx.In

	Engine       *gin.Engine
	Bootstrapsvc bootstrapdomain.Service
	Tenantsvc    tenantdomain.Service
	Clients      clientdomain.Repository
	Auditor      *integrity.Auditor
	Recoverysvc  *recovery.Engine
	Metrics      *obsmetrics.Metrics
	Log          *zap.Logger
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:       p.Engine,
		bootstrapsvc: p.Bootstrapsvc,
		tenantsvc:    p.Tenantsvc,
		clients:      p.Clients,
		auditor:      p.Auditor,
		recoverysvc:  p.Recoverysvc,
		metrics:      p.Metrics,
		log:          p.Log,
	}
}

func registerRoutes(s *Server) {
	api := s.engine.Group("/api/v1")
	api.Use(s.ActorContext())

	api.POST("/provision", s.Provision)

	// Tenant-scoped routes sit behind the bootstrap gate.
	gated := api.Group("")
	gated.Use(s.BootstrapGate())
	gated.GET("/clients", s.ListClients)
	gated.GET("/clients/:id", s.GetClient)

	ops := api.Group("/ops")
	ops.Use(s.RequireOperator())
	ops.GET("/integrity", s.IntegrityReport)
	ops.POST("/integrity/scan", s.RunIntegrityScan)
	ops.POST("/tenants/:id/recover", s.RecoverTenant)
	ops.POST("/accounts/backfill-default-clients", s.BackfillDefaultClients)
}
