package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"futureBridge/app/echo-server/router"
	"futureBridge/business/explore"
	"futureBridge/business/payments"
	"futureBridge/business/recommend"
	userService "futureBridge/business/user"
	"futureBridge/internal/middleware"
	"futureBridge/internal/repository/notification"
	psqlRepo "futureBridge/internal/repository/postgres"
	"futureBridge/internal/repository/razorpay"
	redisRepo "futureBridge/internal/repository/redis"
	"futureBridge/internal/rest"
	"futureBridge/pkg/config"
	"futureBridge/pkg/database"
	redisdb "futureBridge/pkg/database/redis"
	"futureBridge/pkg/logger"
	"futureBridge/pkg/metrics"
	"futureBridge/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting FutureBridge", "version", cfg.App.Version)

	utils.InitJWT(cfg.JWT.SecretKey)
	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	logger.Info("Database connected successfully")

	redisClient, err := redisdb.InitRedis(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}
	logger.Info("Redis connected successfully")

	// Init notification from mailjet
	mailjetEmail := notification.NewMailjetRepository(
		notification.MailjetConfig{
			BaseUrl:           cfg.Mailjet.MailjetBaseUrl,
			BasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
			BasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
			SenderEmail:       cfg.Mailjet.MailjetSenderEmail,
			SenderName:        cfg.Mailjet.MailjetSenderName,
		},
	)

	razorpayRepo := razorpay.NewRazorpayRepository(
		razorpay.Config{
			KeyID:         cfg.Razorpay.KeyID,
			KeySecret:     cfg.Razorpay.KeySecret,
			BaseUrl:       cfg.Razorpay.BaseUrl,
			WebhookSecret: cfg.Razorpay.WebhookSecret,
		},
	)

	// Init validate
	validate := validator.New()

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	cutoffRepo := psqlRepo.NewCutoffRepository(db)
	univRepo := psqlRepo.NewUniversityMapRepository(db)
	prefRepo := psqlRepo.NewPreferenceRepository(db)
	instituteRepo := psqlRepo.NewInstituteRepository(db)
	vacancyRepo := psqlRepo.NewVacancyRepository(db)
	paymentsRepo := psqlRepo.NewPaymentsRepository(db)
	roundStoreRepo := psqlRepo.NewRoundRecommendationRepository(db)
	exploreStoreRepo := psqlRepo.NewExploreRecommendationRepository(db)
	otpRepo := redisRepo.NewOTPRepository(redisClient)

	// Init service
	paymentsService := payments.NewPaymentsService(paymentsRepo, razorpayRepo)
	recommendService := recommend.NewService(cutoffRepo, univRepo, prefRepo, roundStoreRepo, paymentsService)
	exploreService := explore.NewService(cutoffRepo, instituteRepo, vacancyRepo, exploreStoreRepo, prefRepo, paymentsService)
	otpService := userService.NewUserService(userRepo, otpRepo, mailjetEmail, validate, cfg.App.OTPKey)

	// Init handler
	authHandler := rest.NewAuthHandler(otpService)
	recommendHandler := rest.NewRecommendHandler(recommendService)
	exploreHandler := rest.NewExploreHandler(exploreService)
	paymentsHandler := rest.NewPaymentsHandler(paymentsService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(router.MetricsMiddleware())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Auth middleware
	authRequired := middleware.AuthMiddlewareWithStore(otpRepo)

	// Setup routes
	router.SetupMetricsRoute(e)
	api := e.Group("/api/v1")
	router.SetupAuthRoutes(api, authHandler)
	router.SetupRecommendRoutes(api, recommendHandler, authRequired)
	router.SetupExploreRoutes(api, exploreHandler, authRequired)
	router.SetupPaymentRoutes(api, paymentsHandler, authRequired)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
