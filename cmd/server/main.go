package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/puckshotz/prop-stop/internal/api"
	"github.com/puckshotz/prop-stop/internal/api/handlers"
	"github.com/puckshotz/prop-stop/internal/api/middleware"
	"github.com/puckshotz/prop-stop/internal/projection"
	"github.com/puckshotz/prop-stop/internal/providers"
	"github.com/puckshotz/prop-stop/internal/services"
	"github.com/puckshotz/prop-stop/pkg/config"
	"github.com/puckshotz/prop-stop/pkg/database"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	if cfg.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logrus.StandardLogger()

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logrus.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logrus.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	cacheService := services.NewCacheService(redisClient)

	// Data providers
	espnClient := providers.NewESPNClient(cacheService, logger, cfg.ExternalAPITimeout, cfg.ESPNRateLimit, cfg.CircuitBreakerThreshold)
	lineupClient := providers.NewDailyFaceoffClient(cacheService, logger, cfg.ExternalAPITimeout)

	// SMS alerts
	var sms services.SMSService
	if cfg.SMSProvider == "twilio" && cfg.TwilioAccountSID != "" {
		sms = services.NewTwilioSMSService(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
		logrus.Info("Using Twilio SMS for alerts")
	} else {
		sms = services.NewMockSMSService(logger)
	}
	alertService := services.NewAlertService(sms, cfg.AlertRecipients, cfg.AlertMaxPerHour, logger)

	// Projection runner with configured model parameters
	params := projection.Params{
		WeightL10: cfg.WeightL10,
		WeightL5:  cfg.WeightL5,
		WeightL3:  cfg.WeightL3,
		Line:      cfg.ProjectionLine,
		MinGames:  projection.DefaultParams().MinGames,
	}
	runner := services.NewRunnerService(db, cacheService, espnClient, alertService, logger, params)

	// Background data fetcher
	fetchInterval, err := time.ParseDuration(cfg.ScheduleFetchInterval)
	if err != nil {
		logrus.Warnf("Invalid fetch interval, using default 2h: %v", err)
		fetchInterval = 2 * time.Hour
	}
	fetcher := services.NewFetcherService(db, cacheService, espnClient, lineupClient, logger, fetchInterval)
	if cfg.EnableBackgroundJobs {
		if err := fetcher.Start(!cfg.SkipInitialScheduleFetch); err != nil {
			logrus.Errorf("Failed to start fetcher: %v", err)
		}
		defer fetcher.Stop()
	}

	// Live ticker
	tickerHub := services.NewTickerHub(logger)
	go tickerHub.Run()
	var tickerService *services.TickerService
	if cfg.EnableLiveTicker {
		tickerService = services.NewTickerService(espnClient, tickerHub, logger, cfg.TickerPollInterval)
		tickerService.Start()
		defer tickerService.Stop()
	}

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CorsOrigins))

	// Health check endpoint
	healthHandler := handlers.NewHealthHandler(db)
	router.GET("/health", healthHandler.Health)

	// Setup API routes under /api/v1
	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, api.Deps{
		DB:       db,
		Config:   cfg,
		Logger:   logger,
		Cache:    cacheService,
		Schedule: espnClient,
		Lineups:  lineupClient,
		Runner:   runner,
		Fetcher:  fetcher,
		Ticker:   tickerService,
	})

	// Websocket ticker feed at root level, not under /api/v1
	router.GET("/ws/ticker", tickerHub.ServeWS)

	// Setup server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logrus.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
