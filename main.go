// File: hobbyist/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hobbyist/config"
	"hobbyist/database"
	bookingRepo "hobbyist/database/repository/bookings"
	classRepo "hobbyist/database/repository/classes"
	couponRepo "hobbyist/database/repository/coupons"
	creditRepo "hobbyist/database/repository/credits"
	sessionRepo "hobbyist/database/repository/sessions"
	"hobbyist/handlers"
	"hobbyist/middleware"
	"hobbyist/routes"
	"hobbyist/services/booking"
	"hobbyist/services/events"
	"hobbyist/services/payment"
	"hobbyist/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

// eventPublisher is a booking.EventPublisher that must be closed on shutdown.
type eventPublisher interface {
	booking.EventPublisher
	Close() error
}

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	database.InitDB()
	utils.InitCache()
	stripe.Key = config.AppConfig.StripeKey

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.Database()
	cache := utils.GetCacheClient()

	// repositories.
	bookings := bookingRepo.NewMongoBookingRepo(db, booking.NewRandomCodeGenerator(), logger)
	credits := creditRepo.NewMongoCreditRepo(db, logger)
	coupons := couponRepo.NewMongoCouponRepo(db)
	classes := classRepo.NewMongoClassRepo(db)
	sessions := sessionRepo.NewRedisSessionStore(cache, config.AppConfig.SessionTTL, config.AppConfig.CommitTimeout)
	notifier := sessionRepo.NewRedisSessionNotifier(cache)

	ensureIndexes(logger, bookings, credits, coupons, classes)

	// services.
	gateway := payment.NewStripeGateway(
		config.AppConfig.Currency,
		config.AppConfig.PaymentTimeout,
		config.AppConfig.PaymentPollInterval,
		logger,
	)
	publisher := newEventPublisher(logger)

	payments := booking.NewPaymentOrchestrator(gateway, logger)
	sequencer := booking.NewBookingCommitSequencer(payments, gateway, bookings, credits, publisher, logger)
	sequencer.Timeout = config.AppConfig.CommitTimeout
	wizard := booking.NewWizardStateMachine(credits, sequencer, logger)
	bookingService := booking.NewBookingSessionService(classes, coupons, credits, sessions, notifier, wizard, logger)

	bookingHandler := handlers.NewBookingHandler(bookingService, bookings, notifier, logger)
	handlerBundle := handlers.NewHandlerBundle(bookingHandler, middleware.JWTAuthUserMiddleware())

	// Create the Gin router.
	router := gin.New()
	if err := router.SetTrustedProxies(config.AppConfig.TrustedProxies); err != nil {
		logger.Fatal("main: invalid TRUSTED_PROXIES", zap.Error(err))
	}
	router.Use(utils.ErrorHandler(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))
	routes.RegisterRoutes(router, handlerBundle)

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	utils.StartHealthMonitor(monitorCtx, cache, database.MongoClient)

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

	// Running commits finish on their own timeout; give them the same bound here.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Warn("main: failed to close event publisher", zap.Error(err))
	}
	if err := utils.CloseCache(); err != nil {
		logger.Warn("main: failed to close redis", zap.Error(err))
	}
	if err := database.CloseDB(ctx); err != nil {
		logger.Warn("main: failed to disconnect mongo", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

func ensureIndexes(logger *zap.Logger, repos ...indexer) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, repo := range repos {
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Fatal("main: failed to create indexes", zap.Error(err))
		}
	}
}

func newEventPublisher(logger *zap.Logger) eventPublisher {
	if len(config.AppConfig.KafkaBrokers) == 0 {
		logger.Info("main: no kafka brokers configured, booking events will only be logged")
		return events.NewLogPublisher(logger)
	}
	publisher, err := events.NewKafkaPublisher(config.AppConfig.KafkaBrokers, config.AppConfig.KafkaBookingTopic, logger)
	if err != nil {
		logger.Fatal("main: failed to create kafka publisher", zap.Error(err))
	}
	return publisher
}
