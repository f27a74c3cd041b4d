// File: bookify/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookify/config"
	"bookify/database"
	appointmentRepo "bookify/database/repository/appointment"
	"bookify/handlers"
	"bookify/middleware"
	"bookify/routes"
	"bookify/services/calendar"
	"bookify/services/scheduling"
	"bookify/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// External collaborators.
	busySource := calendar.NewICSBusySource(
		config.AppConfig.CalendarICSURL,
		time.Duration(config.AppConfig.CalendarFetchTimeoutSec)*time.Second,
	)
	provider := scheduling.NewHTTPSchedulingProvider(
		config.AppConfig.SchedulingEndpoint,
		config.AppConfig.SchedulingHealthEndpoint,
		time.Duration(config.AppConfig.SchedulingTimeoutSec)*time.Second,
	)

	// Repositories.
	apptRepo := appointmentRepo.NewMongoAppointmentRepo()

	// Services.
	clock := scheduling.SystemClock{}
	availabilityEngine := &scheduling.DefaultAvailabilityEngine{
		Busy: busySource,
	}
	schedulingEngine := &scheduling.DefaultSchedulingEngine{
		Provider: provider,
		Repo:     apptRepo,
		Clock:    clock,
	}
	sessionService := &scheduling.DefaultBookingSessionService{
		Availability: availabilityEngine,
		Scheduler:    schedulingEngine,
		Store:        &scheduling.RedisSessionStore{Client: utils.GetSessionCacheClient()},
		Clock:        clock,
		TTL:          time.Duration(config.AppConfig.SessionTTLMin) * time.Minute,
	}

	schedulingHandler := handlers.NewSchedulingHandler(availabilityEngine, schedulingEngine, clock, logger)
	sessionHandler := handlers.NewSessionHandler(sessionService)

	routes.RegisterRoutes(router, schedulingHandler, sessionHandler)

	utils.StartHealthMonitor(utils.GetSessionCacheClient(), database.MongoClient, provider)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
