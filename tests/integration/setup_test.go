package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"patrimo/internal/handlers"
	"patrimo/internal/logger"
	"patrimo/internal/middleware"
	"patrimo/internal/models"
	"patrimo/internal/services"
	"patrimo/internal/validator"
)

// testAPIKey authenticates pipeline requests in tests.
const testAPIKey = "test-pipeline-key"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Account{},
		&models.AssetType{},
		&models.Asset{},
		&models.InvestmentDetails{},
		&models.CashDetails{},
		&models.RealEstateDetails{},
		&models.PreciousMetalDetails{},
		&models.CollectibleDetails{},
		&models.OtherDetails{},
		&models.Transaction{},
		&models.Instrument{},
		&models.Exchange{},
		&models.Listing{},
		&models.Network{},
		&models.Token{},
		&models.PriceSource{},
		&models.Quote{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	userService := services.NewUserService(db)
	accountService := services.NewAccountService(db)
	assetService := services.NewAssetService(db)
	transactionService := services.NewTransactionService(db, assetService)
	catalogService := services.NewCatalogService(db)
	quoteService := services.NewQuoteService(db)
	valuationService := services.NewValuationService(db, quoteService)
	overviewService := services.NewOverviewService(db, valuationService)
	auditService := services.NewAuditService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	accountHandler := handlers.NewAccountHandler(accountService, auditService)
	assetHandler := handlers.NewAssetHandler(assetService, valuationService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	catalogHandler := handlers.NewCatalogHandler(catalogService, auditService)
	quoteHandler := handlers.NewQuoteHandler(quoteService, auditService)
	portfolioHandler := handlers.NewPortfolioHandler(overviewService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PUT("/:id", accountHandler.UpdateAccount)

	protected.GET("/asset-types", assetHandler.ListAssetTypes)
	assets := protected.Group("/assets")
	assets.POST("", assetHandler.CreateAsset)
	assets.GET("", assetHandler.GetUserAssets)
	assets.GET("/:id", assetHandler.GetAssetByID)
	assets.PUT("/:id", assetHandler.UpdateAsset)
	assets.DELETE("/:id", assetHandler.DeleteAsset)
	assets.GET("/:id/value", assetHandler.GetAssetValue)

	assets.POST("/:id/transactions", transactionHandler.CreateTransaction)
	assets.GET("/:id/transactions", transactionHandler.GetAssetTransactions)
	assets.GET("/:id/transactions/:txnID", transactionHandler.GetTransactionByID)
	assets.PUT("/:id/transactions/:txnID", transactionHandler.UpdateTransaction)
	assets.DELETE("/:id/transactions/:txnID", transactionHandler.DeleteTransaction)

	protected.GET("/portfolio/overview", portfolioHandler.GetOverview)

	catalog := protected.Group("/catalog")
	catalog.GET("/instruments", catalogHandler.ListInstruments)
	catalog.GET("/instruments/:id", catalogHandler.GetInstrumentByID)
	catalog.GET("/search/listings", catalogHandler.SearchListings)
	catalog.GET("/search/tokens", catalogHandler.SearchTokens)

	// Pipeline routes (API key auth)
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(testAPIKey))
	pipeline.POST("/catalog/instruments", catalogHandler.CreateInstrument)
	pipeline.POST("/catalog/exchanges", catalogHandler.CreateExchange)
	pipeline.POST("/catalog/networks", catalogHandler.CreateNetwork)
	pipeline.POST("/catalog/price-sources", catalogHandler.CreatePriceSource)
	pipeline.POST("/catalog/listings", catalogHandler.CreateListing)
	pipeline.POST("/catalog/tokens", catalogHandler.CreateToken)
	pipeline.POST("/quotes", quoteHandler.IngestQuotes)
	pipeline.GET("/quotes/history", quoteHandler.GetQuoteHistory)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// pipelineRequest makes an API-key-authenticated request to a pipeline endpoint.
func (app *testApp) pipelineRequest(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// createAccount creates an account and returns its ID.
func (app *testApp) createAccount(t *testing.T, token, name, accountType string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"type":%q}`, name, accountType)
	rec := app.request("POST", "/api/v1/accounts", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account failed: %d %s", rec.Code, rec.Body.String())
	}
	account := parseJSON(t, rec)["account"].(map[string]interface{})
	return account["id"].(string)
}

// createInstrument registers a catalog instrument via the pipeline and returns its ID.
func (app *testApp) createInstrument(t *testing.T, kind, name string) string {
	t.Helper()
	body := fmt.Sprintf(`{"kind":%q,"name":%q}`, kind, name)
	rec := app.pipelineRequest("POST", "/api/v1/pipeline/catalog/instruments", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create instrument failed: %d %s", rec.Code, rec.Body.String())
	}
	instrument := parseJSON(t, rec)["instrument"].(map[string]interface{})
	return instrument["id"].(string)
}

// createExchange registers an exchange via the pipeline and returns its ID.
func (app *testApp) createExchange(t *testing.T, mic, name string) string {
	t.Helper()
	body := fmt.Sprintf(`{"mic":%q,"name":%q}`, mic, name)
	rec := app.pipelineRequest("POST", "/api/v1/pipeline/catalog/exchanges", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create exchange failed: %d %s", rec.Code, rec.Body.String())
	}
	exchange := parseJSON(t, rec)["exchange"].(map[string]interface{})
	return exchange["id"].(string)
}

// createListing registers a listing via the pipeline and returns its ID.
func (app *testApp) createListing(t *testing.T, instrumentID, exchangeID, ticker string) string {
	t.Helper()
	body := fmt.Sprintf(`{"instrument_id":%q,"exchange_id":%q,"ticker":%q,"is_primary":true}`,
		instrumentID, exchangeID, ticker)
	rec := app.pipelineRequest("POST", "/api/v1/pipeline/catalog/listings", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create listing failed: %d %s", rec.Code, rec.Body.String())
	}
	listing := parseJSON(t, rec)["listing"].(map[string]interface{})
	return listing["id"].(string)
}

// createNetwork registers a chain network via the pipeline and returns its ID.
func (app *testApp) createNetwork(t *testing.T, code, name string) string {
	t.Helper()
	body := fmt.Sprintf(`{"code":%q,"name":%q}`, code, name)
	rec := app.pipelineRequest("POST", "/api/v1/pipeline/catalog/networks", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create network failed: %d %s", rec.Code, rec.Body.String())
	}
	network := parseJSON(t, rec)["network"].(map[string]interface{})
	return network["id"].(string)
}

// createToken registers an on-chain token via the pipeline and returns its ID.
func (app *testApp) createToken(t *testing.T, instrumentID, networkID, symbol string) string {
	t.Helper()
	body := fmt.Sprintf(`{"instrument_id":%q,"network_id":%q,"symbol":%q}`, instrumentID, networkID, symbol)
	rec := app.pipelineRequest("POST", "/api/v1/pipeline/catalog/tokens", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create token failed: %d %s", rec.Code, rec.Body.String())
	}
	tok := parseJSON(t, rec)["token"].(map[string]interface{})
	return tok["id"].(string)
}

// ingestQuote stores a single quote observation via the pipeline.
func (app *testApp) ingestQuote(t *testing.T, sourceID, targetField, targetID, ts, price, currency string) {
	t.Helper()
	body := fmt.Sprintf(`{"quotes":[{"source_id":%q,%q:%q,"ts":%q,"price":%q,"currency":%q}]}`,
		sourceID, targetField, targetID, ts, price, currency)
	rec := app.pipelineRequest("POST", "/api/v1/pipeline/quotes", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("ingest quote failed: %d %s", rec.Code, rec.Body.String())
	}
}

// createPriceSource registers a price source via the pipeline and returns its ID.
func (app *testApp) createPriceSource(t *testing.T, code, name string) string {
	t.Helper()
	body := fmt.Sprintf(`{"code":%q,"name":%q}`, code, name)
	rec := app.pipelineRequest("POST", "/api/v1/pipeline/catalog/price-sources", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create price source failed: %d %s", rec.Code, rec.Body.String())
	}
	source := parseJSON(t, rec)["price_source"].(map[string]interface{})
	return source["id"].(string)
}
