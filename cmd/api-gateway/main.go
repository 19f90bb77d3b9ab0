package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/hsms-announcement-api/api/swagger"
	"github.com/noah-isme/hsms-announcement-api/internal/handler"
	"github.com/noah-isme/hsms-announcement-api/internal/middleware"
	"github.com/noah-isme/hsms-announcement-api/internal/repository"
	"github.com/noah-isme/hsms-announcement-api/internal/service"
	"github.com/noah-isme/hsms-announcement-api/pkg/cache"
	"github.com/noah-isme/hsms-announcement-api/pkg/config"
	"github.com/noah-isme/hsms-announcement-api/pkg/database"
	"github.com/noah-isme/hsms-announcement-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/hsms-announcement-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/hsms-announcement-api/pkg/middleware/requestid"
)

// @title HSMS Announcement API
// @version 0.1.0
// @description Announcement endpoints for the High School Management System
// @BasePath /api/v1
// @schemes http

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

	db, disconnect, err := database.NewMongo(cfg.Mongo)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to mongodb", "error", err)
	}
	defer disconnect(context.Background()) //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.ActiveTTL, logr, true)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	announcementRepo := repository.NewAnnouncementRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	announcementSvc := service.NewAnnouncementService(announcementRepo, teacherRepo, cacheSvc, cfg.Cache.ActiveTTL, nil, logr)

	announcementHandler := handler.NewAnnouncementHandler(announcementSvc)
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

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	announcementHandler.RegisterRoutes(api)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
