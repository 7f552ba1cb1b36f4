package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"whatsfresh/internal/handler"
	mid "whatsfresh/internal/middleware"
	"whatsfresh/internal/view"
	"whatsfresh/pkg/blob"
	"whatsfresh/pkg/config"
	"whatsfresh/pkg/database"
	"whatsfresh/pkg/geocode"
	"whatsfresh/pkg/jwtutil"
	"whatsfresh/pkg/logger"
	"whatsfresh/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const serviceName = "whats-fresh"

func main() {
	// Load configuration
	appConfig, err := config.Load(serviceName)
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       appConfig.Log.Level,
		Environment: appConfig.Server.Env,
		ServiceName: appConfig.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting "+serviceName, appConfig.LogConfig()...)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	db, err := database.InitDB(&appConfig.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database connection established", zap.String("driver", appConfig.DB.Driver))

	// Image storage
	blobs, err := blob.New(context.Background(), &appConfig.Blob)
	if err != nil {
		log.Fatal("Failed to initialize image storage", zap.Error(err))
	}
	log.Info("Image storage initialized", zap.String("driver", string(blobs.Driver())))

	geocoder := geocode.NewClient(appConfig.Geocoder.URL, appConfig.Geocoder.APIKey, appConfig.Geocoder.Timeout, log)
	if appConfig.Geocoder.APIKey == "" {
		log.Warn("GEOCODER_API_KEY is not set; vendor addresses may fail to resolve")
	}

	jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      appConfig.JWT.SigningKey,
		ExpirationHours: appConfig.JWT.ExpirationHours,
	})

	renderer, err := view.New()
	if err != nil {
		log.Fatal("Failed to parse templates", zap.Error(err))
	}

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if local, ok := blobs.(*blob.Local); ok {
		e.Static(strings.TrimSuffix(appConfig.Blob.MediaURL, "/"), local.Root())
	}

	h := handler.New(handler.Options{
		DB:           db,
		Geocoder:     geocoder,
		Blobs:        blobs,
		JWT:          jwtUtil,
		CookieName:   appConfig.JWT.CookieName,
		SecureCookie: appConfig.IsProduction(),
		PageLength:   appConfig.Entry.PageLength,
	})
	h.Register(e, mid.EntryAuth(jwtUtil, appConfig.JWT.CookieName))

	// Start server
	port := appConfig.Server.Port
	go func() {
		log.Info("Starting server", zap.String("port", port))
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Shutting down HTTP server", zap.Error(err))
	}
	log.Info("HTTP server gracefully stopped")
}
