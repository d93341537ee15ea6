// File: talkbid/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"talkbid/config"
	"talkbid/cron"
	"talkbid/database"
	bookingRepo "talkbid/database/repository/booking"
	eventRepo "talkbid/database/repository/callevent"
	hostRepo "talkbid/database/repository/host"
	settlementRepo "talkbid/database/repository/settlement"
	"talkbid/handlers"
	"talkbid/routes"
	"talkbid/services/ingestion"
	"talkbid/services/settlement"
	"talkbid/services/tasks"
	"talkbid/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	bookings := bookingRepo.NewMongoBookingRepo()
	events := eventRepo.NewMongoCallEventRepo()
	settlements := settlementRepo.NewMongoSettlementRepo()
	hosts := hostRepo.NewMongoHostRepo()

	// Payment gateway, injected rather than configured through the global
	// Stripe key so the executors stay testable.
	gateway := settlement.NewStripeGateway(config.AppConfig.StripeKey)

	payoutExecutor := settlement.NewPayoutExecutor(logger, gateway, settlements, bookings, hosts)
	settlementExecutor := settlement.NewExecutor(
		logger,
		gateway,
		bookings,
		events,
		settlements,
		payoutExecutor,
		config.AppConfig.PlatformFeeRate,
	)

	taskClient := tasks.NewClient()
	defer taskClient.Close()

	ingestionSvc := ingestion.NewService(logger, bookings, events, taskClient)

	// Settlement worker consumes the queue the webhook and the manual
	// trigger both enqueue onto.
	cron.InitSettlementWorker(settlementExecutor)

	// Assemble the handler bundle.
	handlerBundle := &routes.HandlerBundle{
		Webhook:    handlers.NewWebhookHandler(ingestionSvc, config.AppConfig.VideoWebhookSecret, logger),
		Booking:    handlers.NewBookingHandler(bookings, logger),
		Settlement: handlers.NewSettlementHandler(bookings, settlements, taskClient, logger),
		Call:       handlers.NewCallHandler(bookings, logger),
		Host:       handlers.NewHostHandler(hosts, logger),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor([]*redis.Client{utils.GetCacheClient()}, database.MongoClient)

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
