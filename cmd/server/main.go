package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/stratos-aero/stratos/internal/audit"
	"github.com/stratos-aero/stratos/internal/config"
	"github.com/stratos-aero/stratos/internal/console"
	"github.com/stratos-aero/stratos/internal/handlers"
	"github.com/stratos-aero/stratos/internal/logging"
	loggingmw "github.com/stratos-aero/stratos/internal/middleware/logging"
	"github.com/stratos-aero/stratos/internal/search"
	"github.com/stratos-aero/stratos/internal/service"
	"github.com/stratos-aero/stratos/internal/session"
	httpserver "github.com/stratos-aero/stratos/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)

	var producer *audit.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = audit.NewProducer([]string{configuration.KAFKA_ADDRESS})
	} else {
		logger.Warn("KAFKA_ADDRESS not set, audit events disabled")
	}

	userSvc := &service.UserService{DB: db}
	aircraftSvc := &service.AircraftService{DB: db}
	airportSvc := &service.AirportService{DB: db}
	flightSvc := &service.FlightService{DB: db, Airports: airportSvc}
	maintenanceSvc := &service.MaintenanceService{DB: db}

	if configuration.ES_URL != "" {
		es, err := search.NewClient(configuration)
		if err != nil {
			logger.Warn("elasticsearch unavailable, log search disabled", "error", err)
		} else {
			maintenanceSvc.ES = es
		}
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))
	e.Renderer = console.NewRenderer()

	sessions := session.NewCookieStore()

	deps := httpserver.Deps{
		JWTSecret:          jwtSecret,
		Sessions:           sessions,
		AuthHandler:        &handlers.AuthHandler{Users: userSvc, JWTSecret: jwtSecret, Producer: producer},
		UserHandler:        &handlers.UserHandler{Users: userSvc, Producer: producer},
		AircraftHandler:    &handlers.AircraftHandler{Aircraft: aircraftSvc, Producer: producer},
		FlightHandler:      &handlers.FlightHandler{Flights: flightSvc, Airports: airportSvc, Producer: producer},
		MaintenanceHandler: &handlers.MaintenanceHandler{Maintenance: maintenanceSvc, ES: maintenanceSvc.ES, Producer: producer},
		Console: &console.Handler{
			Sessions:    sessions,
			Users:       userSvc,
			Aircraft:    aircraftSvc,
			Flights:     flightSvc,
			Maintenance: maintenanceSvc,
			Pending:     console.NewPendingEnrollments(console.DefaultEnrollmentTTL),
			JWTSecret:   jwtSecret,
		},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
