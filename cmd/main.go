package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"procurement-service/internal/config"
	"procurement-service/internal/events"
	"procurement-service/internal/handlers"
	"procurement-service/internal/importer"
	"procurement-service/internal/mailer"
	"procurement-service/internal/middleware"
	"procurement-service/internal/repository"
)

// @title Procurement Service API
// @version 1.0.0
// @description Retail procurement backend: supplier price-list import, catalog browsing and ordering

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.bearer BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	redisClient := redis.NewClient(redisOpts)

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
		redisClient = nil
	} else {
		log.Println("✓ Redis connected successfully")
	}
	cancel()

	// Connect to NATS only if NATS_URL is set
	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Printf("WARNING: Failed to connect to NATS: %v (continuing without event publishing)", err)
			natsConn = nil
		} else {
			log.Println("✓ NATS connected successfully")
		}
	} else {
		log.Println("NATS_URL not set, skipping event publishing initialization")
	}

	// Outbound email only if SMTP is configured
	var emailSender events.EmailSender
	if cfg.SMTPHost != "" {
		emailSender = mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
		log.Println("✓ SMTP sender initialized")
	} else {
		log.Println("SMTP_HOST not set, outbound email disabled")
	}

	dispatcher := events.NewDispatcher(natsConn, emailSender, logger)
	defer dispatcher.Close()

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(db, redisClient)
	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Initialize handlers
	reconciler := importer.NewReconciler(catalogRepo, logger)
	tokenTTL := time.Duration(cfg.TokenTTLHours) * time.Hour
	authHandler := handlers.NewAuthHandler(userRepo, dispatcher, logger, cfg.JWTSecret, tokenTTL)
	contactHandler := handlers.NewContactHandler(userRepo, logger)
	catalogHandler := handlers.NewCatalogHandler(catalogRepo, logger, cfg.DefaultPageSize, cfg.MaxPageSize)
	importHandler := handlers.NewImportHandler(reconciler, logger)
	orderHandler := handlers.NewOrderHandler(orderRepo, catalogRepo, userRepo, dispatcher, logger)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.HealthCheck)

	api := router.Group("/api/v1")

	// Public catalog browsing
	{
		api.GET("/shops", catalogHandler.GetShops)
		api.GET("/categories", catalogHandler.GetCategories)
		api.GET("/products", catalogHandler.GetProducts)
		api.GET("/listings", catalogHandler.GetListings)
	}

	// Account endpoints
	user := api.Group("/user")
	{
		user.POST("/register", authHandler.Register)
		user.POST("/register/confirm", authHandler.Confirm)
		user.POST("/login", authHandler.Login)
		user.POST("/password/reset", authHandler.RequestPasswordReset)
		user.POST("/password/reset/confirm", authHandler.ConfirmPasswordReset)

		authed := user.Group("")
		authed.Use(middleware.RequireAuth(cfg.JWTSecret))
		{
			authed.GET("/details", authHandler.GetDetails)
			authed.POST("/details", authHandler.UpdateDetails)
			authed.GET("/contact", contactHandler.GetContacts)
			authed.POST("/contact", contactHandler.CreateContact)
			authed.PUT("/contact", contactHandler.UpdateContact)
			authed.DELETE("/contact", contactHandler.DeleteContacts)
		}
	}

	// Basket and orders
	authed := api.Group("")
	authed.Use(middleware.RequireAuth(cfg.JWTSecret))
	{
		authed.GET("/basket", orderHandler.GetBasket)
		authed.POST("/basket", orderHandler.AddToBasket)
		authed.DELETE("/basket", orderHandler.RemoveFromBasket)
		authed.GET("/orders", orderHandler.GetOrders)
		authed.POST("/orders", orderHandler.PlaceOrder)
		authed.GET("/orders/:id", orderHandler.GetOrder)
		authed.PUT("/orders/:id/state", orderHandler.UpdateOrderState)
	}

	// Partner endpoints (sellers only)
	partner := api.Group("/partner")
	partner.Use(middleware.RequireAuth(cfg.JWTSecret), middleware.RequireSeller())
	{
		partner.POST("/update", importHandler.PartnerUpdate)
		partner.POST("/upload", importHandler.PartnerUpload)
		partner.GET("/template", importHandler.GetImportTemplate)
		partner.GET("/orders", orderHandler.GetShopOrders)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Procurement service starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	log.Println("Shutting down procurement-service...")
	log.Println("Procurement service stopped")
}
