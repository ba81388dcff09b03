package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-zone-analytics/api/swagger"
	"github.com/noah-isme/sma-zone-analytics/internal/app"
	"github.com/noah-isme/sma-zone-analytics/internal/handler"
	"github.com/noah-isme/sma-zone-analytics/internal/middleware"
	"github.com/noah-isme/sma-zone-analytics/pkg/cache"
	"github.com/noah-isme/sma-zone-analytics/pkg/config"
	"github.com/noah-isme/sma-zone-analytics/pkg/database"
	"github.com/noah-isme/sma-zone-analytics/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-zone-analytics/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-zone-analytics/pkg/middleware/requestid"
)

// @title Zone Analytics API
// @version 1.0.0
// @description Performance zone analytics for college students
// @BasePath /api/v1
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
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	checks := map[string]handler.Pinger{"postgres": db}
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, serving zone queries uncached", zap.Error(err))
	} else {
		defer redisClient.Close()
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container := app.New(cfg, db, redisClient, logr)
	container.StartWorkers(ctx)
	defer container.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(container.Metrics))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(container.Metrics, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	validate := validator.New()
	handler.RegisterRoutes(r.Group(cfg.APIPrefix), middleware.JWT(container.Auth), handler.Handlers{
		Zones:        handler.NewZoneHandler(container.Query, validate),
		Pipeline:     handler.NewZonePipelineHandler(container.Analytics, container.Aggregation, container.Recompute, validate),
		Prerequisite: handler.NewPrerequisiteHandler(container.Prerequisite, validate),
		Assignment:   handler.NewClassAssignmentHandler(container.Assignment, validate),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
