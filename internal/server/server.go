package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/greenleaf/internal/booking/domain"
	"github.com/smallbiznis/greenleaf/internal/clock"
	"github.com/smallbiznis/greenleaf/internal/config"
	"github.com/smallbiznis/greenleaf/internal/maintenance"
	"github.com/smallbiznis/greenleaf/internal/observability"
	obsmiddleware "github.com/smallbiznis/greenleaf/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/greenleaf/internal/observability/metrics"
	obstracing "github.com/smallbiznis/greenleaf/internal/observability/tracing"
	"github.com/smallbiznis/greenleaf/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, cfg config.Config) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
		ClientIP:        clientIP,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r, nil
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, cfg config.Config) (*gin.Engine, error) {
	return NewEngine(obsCfg, httpMetrics, cfg)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger, _ *Server) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log = log.Named("http.server")

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
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
	engine      *gin.Engine
	cfg         config.Config
	clock       clock.Clock
	bookingSvc  domain.Service
	maintenance *maintenance.Service
	guard       *ratelimit.Guard
	obsMetrics  *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Clock       clock.Clock
	BookingSvc  domain.Service
	Maintenance *maintenance.Service
	Guard       *ratelimit.Guard    `optional:"true"`
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		clock:       p.Clock,
		bookingSvc:  p.BookingSvc,
		maintenance: p.Maintenance,
		guard:       p.Guard,
		obsMetrics:  p.ObsMetrics,
	}

	svc.registerBookingRoutes()
	svc.registerAdminRoutes()
	svc.registerLegacyRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerBookingRoutes() {
	api := s.engine.Group("/api", NoStore())

	api.POST("/bookings", s.RateLimit(config.PolicySave), s.SaveBooking)
	api.GET("/bookings/export.csv", s.RateLimit(config.PolicyRead), s.ExportBookingsCSV)
	api.GET("/bookings/:ref", s.RateLimit(config.PolicyRead), s.GetBooking)
	api.GET("/bookings/:ref/job", s.RateLimit(config.PolicyRead), s.GetJob)
	api.GET("/bookings/:ref/print", s.RateLimit(config.PolicyPrint), s.PrintBooking)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/api/admin", NoStore())

	admin.OPTIONS("/bookings/stage", adminPreflight("POST, OPTIONS"))
	admin.OPTIONS("/blobs/cleanup", adminPreflight("POST, OPTIONS"))

	admin.Use(s.RateLimit(config.PolicyAdmin), s.AdminRequired())
	admin.GET("/bookings", s.ListBookings)
	admin.POST("/bookings/lock", s.SetBookingLock)
	admin.POST("/bookings/stage", s.SetBookingStage)
	admin.POST("/index/rebuild", s.RebuildIndex)
	admin.POST("/blobs/migrate", s.MigrateBlobs)
	admin.POST("/blobs/cleanup", s.CleanupBlobs)
}

// registerLegacyRoutes keeps the function-style paths older clients call.
func (s *Server) registerLegacyRoutes() {
	api := s.engine.Group("/api", NoStore())
	admin := []gin.HandlerFunc{s.RateLimit(config.PolicyAdmin), s.AdminRequired()}

	api.POST("/save-booking", s.RateLimit(config.PolicySave), s.SaveBooking)
	api.GET("/get-booking", s.RateLimit(config.PolicyRead), s.GetBooking)
	api.GET("/job", s.RateLimit(config.PolicyRead), s.GetJob)
	api.GET("/booking-export-csv", s.RateLimit(config.PolicyRead), s.ExportBookingsCSV)
	api.GET("/booking-print", s.RateLimit(config.PolicyPrint), s.PrintBooking)

	api.OPTIONS("/job-update", adminPreflight("POST, OPTIONS"))
	api.OPTIONS("/cleanup-blobs", adminPreflight("POST, OPTIONS"))
	api.POST("/booking-admin", append(admin, s.SetBookingLock)...)
	api.POST("/job-update", append(admin, s.SetBookingStage)...)
	api.GET("/booking-index", append(admin, s.ListBookings)...)
	api.POST("/rebuild-index", append(admin, s.RebuildIndex)...)
	api.POST("/migrate-blobs", append(admin, s.MigrateBlobs)...)
	api.POST("/cleanup-blobs", append(admin, s.CleanupBlobs)...)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
	s.engine.HandleMethodNotAllowed = true
	s.engine.NoMethod(func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusMethodNotAllowed, errorResponse{Error: errorPayload{
			Type:    "method_not_allowed",
			Message: "method not allowed",
		}})
	})
}
