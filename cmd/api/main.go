package main

import (
	"fmt"
	"net/http"
	"os"
	"patrimo/internal/config"
	"patrimo/internal/database"
	"patrimo/internal/handlers"
	"patrimo/internal/logger"
	"patrimo/internal/middleware"
	"patrimo/internal/services"
	"patrimo/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "patrimo/internal/docs" // Import swagger docs
)

// @title           Patrimo API
// @version         1.0
// @description     Patrimo is a personal portfolio tracker that values cash, investments, precious metals, property and collectibles against a shared market catalog and quote feed.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API key for the market data pipeline endpoints.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom binding validators before any request is served
	validator.Register()

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	accountService := services.NewAccountService(db)
	assetService := services.NewAssetService(db)
	transactionService := services.NewTransactionService(db, assetService)
	catalogService := services.NewCatalogService(db)
	quoteService := services.NewQuoteService(db)
	valuationService := services.NewValuationService(db, quoteService)
	overviewService := services.NewOverviewService(db, valuationService)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	accountHandler := handlers.NewAccountHandler(accountService, auditService)
	assetHandler := handlers.NewAssetHandler(assetService, valuationService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	catalogHandler := handlers.NewCatalogHandler(catalogService, auditService)
	quoteHandler := handlers.NewQuoteHandler(quoteService, auditService)
	portfolioHandler := handlers.NewPortfolioHandler(overviewService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Account routes
	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PUT("/:id", accountHandler.UpdateAccount)

	// Asset routes
	protected.GET("/asset-types", assetHandler.ListAssetTypes)
	assets := protected.Group("/assets")
	assets.POST("", assetHandler.CreateAsset)
	assets.GET("", assetHandler.GetUserAssets)
	assets.GET("/:id", assetHandler.GetAssetByID)
	assets.PUT("/:id", assetHandler.UpdateAsset)
	assets.DELETE("/:id", assetHandler.DeleteAsset)
	assets.GET("/:id/value", assetHandler.GetAssetValue)

	// Transaction routes, nested under the asset they belong to
	assets.POST("/:id/transactions", transactionHandler.CreateTransaction)
	assets.GET("/:id/transactions", transactionHandler.GetAssetTransactions)
	assets.GET("/:id/transactions/:txnID", transactionHandler.GetTransactionByID)
	assets.PUT("/:id/transactions/:txnID", transactionHandler.UpdateTransaction)
	assets.DELETE("/:id/transactions/:txnID", transactionHandler.DeleteTransaction)

	// Portfolio routes
	protected.GET("/portfolio/overview", portfolioHandler.GetOverview)

	// Catalog browsing and autocomplete
	catalog := protected.Group("/catalog")
	catalog.GET("/instruments", catalogHandler.ListInstruments)
	catalog.GET("/instruments/:id", catalogHandler.GetInstrumentByID)
	catalog.GET("/search/listings", catalogHandler.SearchListings)
	catalog.GET("/search/tokens", catalogHandler.SearchTokens)

	// Pipeline routes, authenticated by API key instead of a user token
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(appConfig.PipelineAPIKey))
	pipeline.POST("/catalog/instruments", catalogHandler.CreateInstrument)
	pipeline.POST("/catalog/exchanges", catalogHandler.CreateExchange)
	pipeline.POST("/catalog/networks", catalogHandler.CreateNetwork)
	pipeline.POST("/catalog/price-sources", catalogHandler.CreatePriceSource)
	pipeline.POST("/catalog/listings", catalogHandler.CreateListing)
	pipeline.POST("/catalog/tokens", catalogHandler.CreateToken)
	pipeline.POST("/quotes", quoteHandler.IngestQuotes)
	pipeline.GET("/quotes/history", quoteHandler.GetQuoteHistory)

	log.Infof("Starting Patrimo backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
