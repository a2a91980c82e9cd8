package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chatstack/chat-backend/config"
	"github.com/chatstack/chat-backend/pkg/handler"
	"github.com/chatstack/chat-backend/pkg/logger"
	"github.com/chatstack/chat-backend/pkg/repository"
	"github.com/chatstack/chat-backend/pkg/repository/object"
	"github.com/chatstack/chat-backend/pkg/service"
	"github.com/chatstack/chat-backend/pkg/vectordb"

	database "github.com/chatstack/chat-backend/pkg/db"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config/config.yaml", "configuration file path")
	flag.Parse()

	if err := config.Init(configPath); err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zapLogger, err := logger.GetZapLogger(ctx)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	db := database.GetSharedConnection()
	defer database.Close(db)

	if err := repository.Migrate(db); err != nil {
		zapLogger.Fatal("migrating schema", zap.Error(err))
	}
	repo := repository.NewRepository(db)

	var blob object.Storage
	switch config.Config.Storage.Provider {
	case "minio":
		blob, err = object.NewMinIOStorage(ctx, config.Config.Minio, zapLogger)
	default:
		blob, err = object.NewLocalStorage(config.Config.Storage.UploadDir, zapLogger)
	}
	if err != nil {
		zapLogger.Fatal("initializing blob storage", zap.Error(err))
	}

	var vector vectordb.VectorDatabase
	switch config.Config.Vector.Backend {
	case "milvus":
		vector, err = vectordb.NewMilvus(ctx,
			config.Config.Vector.Milvus.Host, config.Config.Vector.Milvus.Port, zapLogger)
	default:
		vector, err = vectordb.NewEmbedded(config.Config.Vector.Dir, zapLogger)
	}
	if err != nil {
		zapLogger.Fatal("initializing vector database", zap.Error(err))
	}
	defer vector.Close()

	var redisClient *redis.Client
	if config.Config.Cache.Enabled {
		redisClient = redis.NewClient(&config.Config.Cache.Redis.RedisOptions)
		defer redisClient.Close()
	}

	svc := service.NewService(service.Config{
		Repository:  repo,
		Blob:        blob,
		Vector:      vector,
		RedisClient: redisClient,
		LockTTL:     config.Config.Prune.LockTTL,
		UploadDir:   config.Config.Storage.UploadDir,
		CacheDirs:   config.Config.Storage.CacheDirs,
		Logger:      zapLogger,
	})

	router := handler.NewRouter(svc, config.Config.Server.AdminAPIKey, zapLogger)

	addr := fmt.Sprintf(":%d", config.Config.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("server listening", zap.String("addr", addr))
		var err error
		if config.Config.Server.HTTPS.Cert != "" && config.Config.Server.HTTPS.Key != "" {
			err = srv.ListenAndServeTLS(config.Config.Server.HTTPS.Cert, config.Config.Server.HTTPS.Key)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
