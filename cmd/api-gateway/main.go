package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/Likhith025/timetablegen/api/swagger"
	"github.com/Likhith025/timetablegen/internal/engine"
	"github.com/Likhith025/timetablegen/internal/handler"
	"github.com/Likhith025/timetablegen/internal/middleware"
	"github.com/Likhith025/timetablegen/internal/repository"
	"github.com/Likhith025/timetablegen/internal/service"
	"github.com/Likhith025/timetablegen/pkg/cache"
	"github.com/Likhith025/timetablegen/pkg/config"
	"github.com/Likhith025/timetablegen/pkg/database"
	"github.com/Likhith025/timetablegen/pkg/jobs"
	"github.com/Likhith025/timetablegen/pkg/logger"
	corsmiddleware "github.com/Likhith025/timetablegen/pkg/middleware/cors"
	reqidmiddleware "github.com/Likhith025/timetablegen/pkg/middleware/requestid"
)

// @title Timetable Generation API
// @version 1.0.0
// @description Constraint-based weekly timetable generation service
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Generator.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
			redisClient = nil
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	timetableRepo := repository.NewTimetableRepository(db)
	roomBlockRepo := repository.NewRoomBlockRepository(db)
	changeRequestRepo := repository.NewChangeRequestRepository(db)

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	gen := engine.New(engine.Config{Seed: cfg.Generator.Seed, Version: cfg.Generator.Version}, logr)

	timetableSvc := service.NewTimetableService(gen, timetableRepo, cacheRepo, nil, metricsSvc, validate, logr, service.TimetableServiceConfig{CacheTTL: cfg.Generator.CacheTTL})

	var queue *jobs.Queue
	if cfg.Jobs.Enabled {
		queue = jobs.NewQueue("generation", timetableSvc.HandleGenerationJob, jobs.QueueConfig{
			Workers:    cfg.Jobs.Workers,
			BufferSize: cfg.Jobs.BufferSize,
			MaxRetries: cfg.Jobs.MaxRetries,
			RetryDelay: cfg.Jobs.RetryDelay,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()
		timetableSvc.AttachQueue(queue)
	}

	roomBlockSvc := service.NewRoomBlockService(roomBlockRepo, timetableSvc, validate, logr)
	changeRequestSvc := service.NewChangeRequestService(changeRequestRepo, timetableRepo, cacheRepo, validate, logr)
	authSvc := service.NewAuthService(service.AuthConfig{Secret: cfg.JWT.Secret, Expiry: cfg.JWT.Expiration}, logr)

	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	roomBlockHandler := handler.NewRoomBlockHandler(roomBlockSvc)
	changeRequestHandler := handler.NewChangeRequestHandler(changeRequestSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	guard := middleware.JWT(authSvc)

	api.POST("/timetables/generate", guard, timetableHandler.Generate)
	api.GET("/timetables/:id", timetableHandler.Latest)
	api.GET("/timetables/:id/history", timetableHandler.History)

	api.POST("/timetables/:id/room-blocks", guard, roomBlockHandler.Create)
	api.GET("/timetables/:id/room-availability", roomBlockHandler.Availability)
	api.GET("/room-blocks", roomBlockHandler.List)
	api.DELETE("/room-blocks/:id", guard, roomBlockHandler.Delete)

	api.POST("/change-requests", guard, changeRequestHandler.Create)
	api.GET("/timetables/:id/change-requests", changeRequestHandler.List)
	api.POST("/change-requests/:id/decision", guard, changeRequestHandler.Decide)

	if cfg.Export.Enabled {
		exportSvc := service.NewExportService(timetableSvc, cfg.Export.Title, logr)
		exportHandler := handler.NewExportHandler(exportSvc)
		api.GET("/timetables/:id/export", exportHandler.Export)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
