package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/techno-flashi/techno-flashi-sub000/internal/cache"
	"github.com/techno-flashi/techno-flashi-sub000/internal/config"
	"github.com/techno-flashi/techno-flashi-sub000/internal/handler"
	"github.com/techno-flashi/techno-flashi-sub000/internal/logger"
	"github.com/techno-flashi/techno-flashi-sub000/internal/metrics"
	"github.com/techno-flashi/techno-flashi-sub000/internal/middleware"
	"github.com/techno-flashi/techno-flashi-sub000/internal/render"
	"github.com/techno-flashi/techno-flashi-sub000/internal/repository/postgres"
	redisRepo "github.com/techno-flashi/techno-flashi-sub000/internal/repository/redis"
	"github.com/techno-flashi/techno-flashi-sub000/internal/service"
)

var version = "dev"

type options struct {
	EnvFile string `long:"env" default:".env" description:"Path to the env file"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		log.Fatal(err)
	}

	if err := logger.Initialize(cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	log := logger.Get()
	log.Info("Starting ad engine",
		"port", cfg.Server.Port,
		"log_level", cfg.Log.Level,
		"redis_enabled", cfg.Redis.Enabled,
		"version", version,
	)

	dbPool, err := setupDatabase(cfg)
	if err != nil {
		log.Error("Failed to setup database", "error", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = setupRedis(cfg)
		if err != nil {
			log.Error("Failed to setup redis", "error", err)
			os.Exit(1)
		}
	}

	m := metrics.New()
	localCache := cache.New(cfg.Cache.SweepInterval)
	if err := m.ObserveCache("local", localCache.Stats); err != nil {
		log.Error("Failed to register cache metrics", "error", err)
		os.Exit(1)
	}

	adRepo := postgres.NewAdRepository(dbPool)
	perfRepo := postgres.NewPerformanceRepository(dbPool)

	// a nil *AdCache must not become a non-nil interface
	var sharedCache service.SharedAdCache
	if redisClient != nil {
		sharedCache = redisRepo.NewAdCache(redisClient, cfg.Redis.Prefix)
	}

	selector := service.NewAdSelector(adRepo, localCache, sharedCache, m, service.SelectorConfig{
		CacheTTL:      cfg.Cache.TTL,
		DefaultMaxAds: cfg.Ads.DefaultMaxAds,
		MaxAdsLimit:   cfg.Ads.MaxAdsLimit,
		Location:      cfg.Ads.Location,
	})

	recorder := service.NewPerformanceRecorder(perfRepo, m, service.RecorderConfig{
		QueueSize:    cfg.Recorder.QueueSize,
		Workers:      cfg.Recorder.Workers,
		WriteTimeout: cfg.Recorder.WriteTimeout,
	})

	trackingService := service.NewTrackingService(adRepo, localCache, recorder, cfg.Cache.TTL)
	analyticsService := service.NewAnalyticsService(perfRepo)

	adHandler := handler.NewAdHandler(selector, render.New(cfg.Server.BaseURL), trackingService, cfg.Ads.RecordImpressionsOnRender)
	trackingHandler := handler.NewTrackingHandler(trackingService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)

	checks := map[string]handler.CheckFunc{"database": dbPool.Ping}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	healthHandler := handler.NewHealthHandler(version, checks)

	router := setupRouter(cfg, m, adHandler, trackingHandler, analyticsHandler, healthHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("Server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	gracefulShutdown(srv, cfg.Server.ShutdownTimeout, recorder, localCache, dbPool, redisClient, log)
}

func setupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	dbConfig := cfg.Database
	poolConfig, err := pgxpool.ParseConfig(dbConfig.URL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = dbConfig.MaxConns
	poolConfig.MinConns = dbConfig.MinConns

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return dbPool, nil
}

func setupRedis(cfg *config.Config) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return redisClient, nil
}

func setupRouter(
	cfg *config.Config,
	m *metrics.Metrics,
	adHandler *handler.AdHandler,
	trackingHandler *handler.TrackingHandler,
	analyticsHandler *handler.AnalyticsHandler,
	healthHandler *handler.HealthHandler,
) *gin.Engine {
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics(m))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	// health check
	router.GET("/healthz", healthHandler.Healthz)
	router.GET("/readyz", healthHandler.Readyz)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Gatherer(), promhttp.HandlerOpts{})))

	api := router.Group("/api")
	{
		api.GET("/placements/:position", adHandler.ListAds)
		api.GET("/placements/:position/render", adHandler.RenderAds)

		api.POST("/ads/:id/events", trackingHandler.TrackEvent)
		api.GET("/ads/:id/click", trackingHandler.Click)

		api.GET("/ads/:id/performance", analyticsHandler.GetPerformance)
		api.GET("/ads/:id/events", analyticsHandler.GetEventHistory)
	}

	return router
}

func gracefulShutdown(
	srv *http.Server,
	timeout time.Duration,
	recorder *service.PerformanceRecorder,
	localCache *cache.Cache,
	dbPool *pgxpool.Pool,
	redisClient *redis.Client,
	log *slog.Logger,
) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("Shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", "error", err)
	}

	// queued events still need the database
	if err := recorder.Close(ctx); err != nil {
		log.Error("Recorder did not drain before timeout", "error", err)
	}

	localCache.Close()

	dbPool.Close()
	log.Info("Database connection closed")

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis", "error", err)
		}
	}

	log.Info("Graceful shutdown completed")
}
