package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/harborworks/chandlery/internal/attribute"
	attributedomain "github.com/harborworks/chandlery/internal/attribute/domain"
	"github.com/harborworks/chandlery/internal/config"
	"github.com/harborworks/chandlery/internal/observability"
	obsmiddleware "github.com/harborworks/chandlery/internal/observability/logger"
	obsmetrics "github.com/harborworks/chandlery/internal/observability/metrics"
	obstracing "github.com/harborworks/chandlery/internal/observability/tracing"
	"github.com/harborworks/chandlery/internal/order"
	orderdomain "github.com/harborworks/chandlery/internal/order/domain"
	"github.com/harborworks/chandlery/internal/quota"
	quotadomain "github.com/harborworks/chandlery/internal/quota/domain"
	"github.com/harborworks/chandlery/internal/ratelimit"
	"github.com/harborworks/chandlery/internal/tariff"
	tariffdomain "github.com/harborworks/chandlery/internal/tariff/domain"
	"github.com/harborworks/chandlery/internal/user"
	userdomain "github.com/harborworks/chandlery/internal/user/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	user.Module,
	attribute.Module,
	tariff.Module,
	quota.Module,
	order.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
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
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node

	userSvc      userdomain.Service
	attributeSvc attributedomain.Service
	tariffSvc    tariffdomain.Service
	quotaSvc     quotadomain.Service
	orderSvc     orderdomain.Service
	orderLimiter *ratelimit.OrderSubmitLimiter
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node

	UserSvc      userdomain.Service
	AttributeSvc attributedomain.Service
	TariffSvc    tariffdomain.Service
	QuotaSvc     quotadomain.Service
	OrderSvc     orderdomain.Service
	OrderLimiter *ratelimit.OrderSubmitLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine: p.Gin,
		cfg:    p.Cfg,
		db:     p.DB,
		log:    p.Log.Named("http.server"),
		genID:  p.GenID,

		userSvc:      p.UserSvc,
		attributeSvc: p.AttributeSvc,
		tariffSvc:    p.TariffSvc,
		quotaSvc:     p.QuotaSvc,
		orderSvc:     p.OrderSvc,
		orderLimiter: p.OrderLimiter,
	}

	svc.registerAPIRoutes()

	return svc
}

// Engine exposes the underlying router, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")
	v1.Use(s.ActorMiddleware())

	v1.POST("/users", s.CreateUser)
	v1.GET("/users/:id", s.GetUser)

	v1.POST("/users/:id/attributes", s.AppendSnapshot)
	v1.GET("/users/:id/attributes", s.ListSnapshots)
	v1.GET("/users/:id/attributes/pending", s.RequireAdmin(), s.ListPendingSnapshots)
	v1.POST("/users/:id/attributes/:snapshot_id/approve", s.RequireAdmin(), s.ApproveSnapshot)

	v1.POST("/tariffs", s.RequireAdmin(), s.CreateTariff)
	v1.GET("/tariffs", s.ListTariffs)
	v1.GET("/tariffs/:id", s.GetTariff)

	v1.POST("/subscriptions", s.Subscribe)
	v1.GET("/subscriptions/active", s.ActiveSubscription)

	v1.POST("/orders", s.OrderSubmitRateLimit(), s.CreateOrder)
	v1.GET("/orders", s.ListOrders)
	v1.GET("/orders/:id", s.GetOrder)
	v1.POST("/orders/:id/responses", s.RespondToOrder)
	v1.POST("/orders/:id/status", s.RequireAdmin(), s.TransitionOrder)
}
