package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskdesk/taskdesk/broker"
	"taskdesk/taskdesk/config"
	"taskdesk/taskdesk/database"
	"taskdesk/taskdesk/logger"
	"taskdesk/taskdesk/middleware"
	"taskdesk/taskdesk/routes"
	"taskdesk/taskdesk/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Setup(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", "error", err)
	}
	defer db.Close()

	// Events stay in the outbox as pending when no broker is reachable.
	var producer broker.Producer
	if cfg.NATSURL != "" {
		natsProducer, err := broker.NewNatsProducer(cfg.NATSURL)
		if err != nil {
			logger.Warn("NATS unavailable, events will not be published", "url", cfg.NATSURL, "error", err)
		} else {
			producer = natsProducer
			defer natsProducer.Close()
		}
	}

	limiter := middleware.NewRedisRateLimiter(cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB)
	defer limiter.Close()

	authService := services.NewAuthService(cfg.JWTSecret, cfg.JWTExpirationHours)
	eventService := services.NewEventService(producer)
	userService := services.NewUserService(authService, eventService)
	taskService := services.NewTaskService(eventService)

	router := routes.SetupRouter(cfg, db, routes.Services{
		Auth:   authService,
		Users:  userService,
		Tasks:  taskService,
		Stats:  services.NewStatsService(userService, taskService),
		Events: eventService,
	}, limiter)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server is running", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
