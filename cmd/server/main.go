// Package main runs the recording coordination HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/conferly/backend/config"
	"github.com/conferly/backend/internal/auth"
	"github.com/conferly/backend/internal/egress"
	"github.com/conferly/backend/internal/middleware"
	"github.com/conferly/backend/internal/notification"
	"github.com/conferly/backend/internal/recordings"
	"github.com/conferly/backend/internal/rooms"
	"github.com/conferly/backend/internal/storageevent"
	"github.com/conferly/backend/pkg/database"
	"github.com/conferly/backend/pkg/response"
	"github.com/conferly/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	}, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	s3Client, err := storage.NewS3(ctx, cfg.Bucket, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// Worker services share one read-only egress configuration.
	egressCfg := &egress.Config{
		OutputFolder: cfg.Recording.OutputFolder,
		Bucket:       cfg.Bucket,
		Client:       egress.NewClient(cfg.LiveKit),
		Logger:       logger,
	}
	registry := egress.NewRegistry(egressCfg)

	roomRepo := rooms.NewRepository(pool)
	recordingRepo := recordings.NewRepository(pool)
	recordingHandler := recordings.NewHandler(recordingRepo, roomRepo, registry, s3Client, cfg.Recording.OutputFolder, logger)

	notifier := notification.NewService(cfg.Summary, cfg.Recording.OutputFolder, recordingRepo, logger)
	eventParser := storageevent.NewParser(cfg.Bucket.Name, cfg.Recording.AllowedContentTypes)
	eventHandler := storageevent.NewHandler(eventParser, recordingRepo, notifier, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.POST("/rooms/:id/recordings/start", recordingHandler.StartRecording)
		api.GET("/rooms/:id/recordings", recordingHandler.ListByRoom)
		api.POST("/recordings/:id/stop", recordingHandler.StopRecording)
		api.GET("/recordings/:id/download-url", recordingHandler.GenerateDownloadURL)
	}

	// Storage-provider webhook (bearer token, not JWT)
	router.POST("/recordings/storage-event",
		storageevent.BearerAuth(cfg.Recording, logger),
		eventHandler.HandleStorageEvent)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
