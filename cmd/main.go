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

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-events/internal/cache"
	"github.com/weiawesome/wes-events/internal/config"
	"github.com/weiawesome/wes-events/internal/domain"
	"github.com/weiawesome/wes-events/internal/handler"
	"github.com/weiawesome/wes-events/internal/hub"
	"github.com/weiawesome/wes-events/internal/notifier"
	"github.com/weiawesome/wes-events/internal/repository"
	"github.com/weiawesome/wes-events/internal/service"
	"github.com/weiawesome/wes-events/pkg/database"
	"github.com/weiawesome/wes-events/pkg/jwt"
	pkglog "github.com/weiawesome/wes-events/pkg/log"
	"github.com/weiawesome/wes-events/pkg/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "event-service",
	})
	logger := pkglog.L()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db, domain.Models()...); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Msg("database migration completed")

	// Initialize repositories
	userRepo := repository.NewGormUserRepository(db)
	eventRepo := repository.NewGormEventRepository(db)
	attendanceRepo := repository.NewGormAttendanceRepository(db)

	// Initialize event cache
	var eventCache cache.EventCache = cache.NewNoopEventCache()
	if cfg.Redis.Address != "" {
		redisCache, err := cache.NewRedisEventCache(cfg.Redis, cfg.Cache.Prefix)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		eventCache = redisCache
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis cache connected")
	} else {
		logger.Info().Msg("redis address not set, event cache disabled")
	}
	defer eventCache.Close()

	// Initialize token manager
	tokens, err := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token manager")
	}

	// Initialize live updates
	h := hub.NewHub(cfg.WebSocket)
	countNotifier := notifier.New(h)

	// Initialize services
	userService := service.NewUserService(userRepo, tokens, service.GuestAccount{
		Enabled:  cfg.Auth.GuestEnabled,
		Email:    cfg.Auth.GuestEmail,
		Password: cfg.Auth.GuestPassword,
		Name:     cfg.Auth.GuestName,
	})
	eventService := service.NewEventService(eventRepo, attendanceRepo, eventCache, cfg.Cache.TTL)
	joinCoordinator := service.NewJoinCoordinator(attendanceRepo, countNotifier)

	// Initialize handlers
	authMiddleware := middleware.NewAuthMiddleware(tokens, cfg.Auth.CookieName)
	httpHandler := handler.NewHandler(userService, eventService, joinCoordinator, authMiddleware, handler.CookieConfig{
		Secure: cfg.Auth.CookieSecure,
		MaxAge: cfg.Auth.TokenTTL,
	})
	wsHandler := handler.NewWSHandler(h, cfg.WebSocket, cfg.CORS.AllowedOrigins)

	r := handler.NewRouter(httpHandler, wsHandler, logger, cfg.CORS.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Str("driver", cfg.Database.Driver).Msg("event-service starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down event-service")

	h.Stop() // close all live-update connections first

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}

	logger.Info().Msg("event-service stopped")
}
