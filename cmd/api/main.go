package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"go-gin-user-api/internal/core/config"
	"go-gin-user-api/internal/core/database"
	"go-gin-user-api/internal/core/logger"
	"go-gin-user-api/internal/core/server"
	"go-gin-user-api/internal/repo"
	"go-gin-user-api/internal/service"
	"go-gin-user-api/internal/transport/http/handler"
	"go-gin-user-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := newLogger(cfg)
	defer cleanup()

	// 数据库（失败直接 Fatal）
	client, db := mustOpenMongo(cfg, log)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}()
	log.Info("database connected", zap.String("database", cfg.Mongo.Database))

	// 索引（性能提示，失败只告警）
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := database.EnsureUserIndexes(ctx, db); err != nil {
			log.Warn("ensure indexes failed", zap.Error(err))
		} else {
			log.Info("indexes ensured")
		}
		cancel()
	}

	// 依赖装配：显式构造传递，不走全局注册
	userRepo := repo.NewUserRepo(db)
	userSvc := service.NewUserService(userRepo)
	userH := handler.NewUserHandler(userSvc, log)
	r := router.NewAPIEngine(cfg, log, userH)

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("user api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+"/api"),
	)

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("user api start FAILED", zap.Error(err))
		}
	}()
	log.Info("user api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("user api stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	rot := cfg.Log.Rotate
	if rot.Enable {
		return logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate{
			Filename:   rot.Filename,
			MaxSizeMB:  rot.MaxSizeMB,
			MaxBackups: rot.MaxBackups,
			MaxAgeDays: rot.MaxAgeDays,
			Compress:   rot.Compress,
		})
	}
	return logger.New(cfg.Log.Level, cfg.Log.JSON)
}

func mustOpenMongo(cfg *config.Config, l *zap.Logger) (*mongo.Client, *mongo.Database) {
	client, db, err := database.NewMongo(database.Opts{
		URI:               cfg.Mongo.URI,
		Database:          cfg.Mongo.Database,
		ConnectTimeoutSec: cfg.Mongo.ConnectTimeoutSec,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return client, db
}
