package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"campus-chat-service/internal/client"
	"campus-chat-service/internal/config"
	"campus-chat-service/internal/database"
	"campus-chat-service/internal/job"
	"campus-chat-service/internal/metrics"
	"campus-chat-service/internal/realtime"
	"campus-chat-service/internal/repository"
	"campus-chat-service/internal/router"
	"campus-chat-service/internal/service"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Server.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting campus chat service",
		zap.Int("port", cfg.Server.Port),
		zap.String("env", cfg.Server.Env),
		zap.String("base_path", cfg.Server.BasePath),
	)

	db, err := database.New(cfg.Database, cfg.IsDevelopment(), logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.Info("Database connected and migrated")

	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		rdb, err = database.NewRedis(cfg.Redis.URL)
		if err != nil {
			logger.Warn("Redis unavailable, rate limiting and presence mirror disabled", zap.Error(err))
			rdb = nil
		} else {
			logger.Info("Redis connected")
		}
	} else {
		logger.Warn("REDIS_URL not set, rate limiting and presence mirror disabled")
	}

	m := metrics.New(logger)

	var store client.ContentStore
	if cfg.Storage.Bucket != "" && cfg.Storage.StorageEndpoint() != "" {
		s3Client, err := client.NewS3Client(context.Background(), cfg.Storage)
		if err != nil {
			logger.Warn("Failed to initialize content store, uploads disabled", zap.Error(err))
		} else {
			store = s3Client
			logger.Info("Content store initialized",
				zap.String("bucket", cfg.Storage.Bucket),
				zap.String("endpoint", cfg.Storage.StorageEndpoint()),
			)
		}
	} else {
		logger.Warn("Storage configuration incomplete, uploads disabled")
	}

	verifier := client.NewTokenVerifier(cfg.Auth, logger)
	clk := clock.New()

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)

	users := service.NewUserService(userRepo, groupRepo, logger)
	groups := service.NewGroupService(groupRepo, userRepo, logger)
	services := router.Services{
		Users:    users,
		Groups:   groups,
		Messages: service.NewMessageService(repository.NewMessageRepository(db), groups, m, logger),
		Statuses: service.NewStatusService(repository.NewStatusRepository(db), clk, m, logger),
		Files:    service.NewFileService(repository.NewFileRepository(db), groups, store, cfg.Storage.MaxUploadBytes, m, logger),
		Schedule: service.NewScheduleService(repository.NewCourseRepository(db), logger),
	}

	deps := realtime.Deps{
		Verifier:        verifier,
		Users:           users,
		Groups:          groups,
		Messages:        services.Messages,
		Metrics:         m,
		Clock:           clk,
		Logger:          logger,
		Config:          cfg.Realtime,
		PrivilegedUID:   cfg.Auth.PrivilegedUID,
		AllowedOrigins:  cfg.Server.CORSOrigins,
		AllowAllOrigins: cfg.IsDevelopment(),
	}
	if rdb != nil {
		services.Presence = service.NewPresenceCache(rdb, logger)
		deps.Presence = services.Presence
	}
	hub := realtime.NewHub(deps)

	scheduler := job.NewScheduler(logger)
	if err := scheduler.Add("status-cleanup", cfg.Jobs.StatusCleanupSpec,
		job.NewStatusCleanupJob(services.Statuses, m, logger)); err != nil {
		logger.Fatal("Failed to schedule status cleanup", zap.Error(err))
	}
	scheduler.Start()

	r := router.Setup(router.Config{
		DB:               db,
		Redis:            rdb,
		Logger:           logger,
		Metrics:          m,
		Verifier:         verifier,
		Hub:              hub,
		Services:         services,
		BasePath:         cfg.Server.BasePath,
		CORSOrigins:      cfg.Server.CORSOrigins,
		AllowAllOrigins:  cfg.IsDevelopment(),
		APIPerMinute:     cfg.RateLimit.APIPerMinute,
		UploadsPer15Min:  cfg.RateLimit.UploadsPer15Minute,
		MaxMultipartBody: cfg.Storage.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		logger.Info("Campus chat service started", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Sockets are hijacked, so http.Server.Shutdown does not wait for them.
	err = multierr.Combine(
		srv.Shutdown(ctx),
		hub.Shutdown(ctx),
		scheduler.Stop(ctx),
	)
	if rdb != nil {
		err = multierr.Append(err, rdb.Close())
	}
	err = multierr.Append(err, database.Close(db))

	if err != nil {
		logger.Error("Shutdown completed with errors", zap.Error(err))
		return
	}
	logger.Info("Server exited gracefully")
}

// initLogger builds a JSON zap logger at the given level.
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
