package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"inoutboard/internal/auditlog"
	"inoutboard/internal/config"
	"inoutboard/internal/handler"
	"inoutboard/internal/httpmiddleware"
	"inoutboard/internal/logging"
	"inoutboard/internal/presence"
	"inoutboard/internal/roster"
	"inoutboard/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	lg, err := logging.New(cfg.LogLevel, cfg.LogFormat, "inoutboard")
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	if err := runHTTP(cfg, lg); err != nil {
		lg.Fatal("http server failed", zap.Error(err))
	}
}

func runHTTP(cfg config.App, lg *zap.Logger) error {
	db, err := store.NewDB(cfg.DatabaseURL, store.PoolLimits{
		MaxOpen:     cfg.DBMaxOpenConns,
		MaxIdle:     cfg.DBMaxIdleConns,
		MaxLifetime: cfg.DBConnMaxLife,
	})
	if err != nil {
		lg.Warn("db not reachable, falling back to in-memory roster", zap.Error(err))
		db = nil
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	var personStore roster.Store
	if db != nil {
		personStore = roster.NewPostgresStore(db.Client, lg)
	} else {
		personStore = roster.NewMemoryStore()
	}

	var redisClient *store.Redis
	var cache *presence.SnapshotCache
	if !cfg.RedisDisabled {
		redisClient = store.NewRedis(cfg.RedisAddr, cfg.RedisTimeout)
		cache = presence.NewSnapshotCache(redisClient.Client, cfg.SnapshotTTL, lg)
	}

	var audit auditlog.Logger
	if sinks, err := auditlog.NewFileSinks(cfg.AuditLogDir); err != nil {
		// Audit logging is best-effort; a broken sink must not keep the
		// service from starting.
		lg.Warn("audit sinks unavailable", zap.Error(err))
		audit = auditlog.Nop{}
	} else {
		audit = sinks
	}
	defer func() { _ = audit.Close() }()

	engine := presence.NewEngine(personStore, audit, lg)
	reconciler := roster.NewReconciler(personStore, audit, lg)
	h := handler.New(personStore, engine, reconciler, cache, lg)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	r.Use(cors.New(corsCfg))

	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := cfg.RedisDisabled || redisClient.Healthy(c.Request.Context())
		dbHealthy := db != nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	r.GET("/api/status_update", h.StatusUpdate)
	r.GET("/api/status_view", h.StatusView)
	r.GET("/api/admin", h.Admin)

	// Admin console and viewer board are plain static pages.
	r.StaticFile("/admin/", filepath.Join(cfg.WebDir, "admin.html"))
	r.StaticFile("/view/", filepath.Join(cfg.WebDir, "view.html"))
	r.Static("/static", filepath.Join(cfg.WebDir, "static"))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	lg.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Warn("server forced shutdown", zap.Error(err))
	}

	lg.Info("server exited")
	return nil
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
