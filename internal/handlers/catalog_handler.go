package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "patrimo/internal/errors"
	"patrimo/internal/models"
	"patrimo/internal/pagination"
	"patrimo/internal/services"
)

// CatalogHandler handles market catalog registration and lookups.
// Registration endpoints sit behind the pipeline API key; reads and
// autocomplete are available to authenticated users.
type CatalogHandler struct {
	catalogService services.CatalogServicer
	auditService   services.AuditServicer
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService services.CatalogServicer, auditService services.AuditServicer) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, auditService: auditService}
}

// CreateInstrumentRequest registers a tradable instrument.
type CreateInstrumentRequest struct {
	Kind     models.InstrumentKind `json:"kind" binding:"required,instrument_kind"`
	Name     string                `json:"name" binding:"required,min=1,max=200"`
	ISIN     string                `json:"isin" binding:"omitempty,len=12"`
	Currency string                `json:"currency" binding:"omitempty,iso4217"`
	Sector   string                `json:"sector" binding:"max=100"`
}

// CreateExchangeRequest registers a trading venue.
type CreateExchangeRequest struct {
	MIC      string `json:"mic" binding:"required,len=4"`
	Name     string `json:"name" binding:"required,max=200"`
	Country  string `json:"country" binding:"omitempty,len=2"`
	Timezone string `json:"timezone" binding:"max=64"`
}

// CreateNetworkRequest registers a blockchain network.
type CreateNetworkRequest struct {
	Code string `json:"code" binding:"required,min=1,max=20"`
	Name string `json:"name" binding:"required,max=100"`
}

// CreatePriceSourceRequest registers a quote feed.
type CreatePriceSourceRequest struct {
	Code string `json:"code" binding:"required,min=1,max=50"`
	Name string `json:"name" binding:"required,max=200"`
}

// CreateListingRequest registers an instrument's ticker on an exchange.
type CreateListingRequest struct {
	InstrumentID string `json:"instrument_id" binding:"required,uuid"`
	ExchangeID   string `json:"exchange_id" binding:"required,uuid"`
	Ticker       string `json:"ticker" binding:"required,min=1,max=20"`
	IsPrimary    bool   `json:"is_primary"`
}

// CreateTokenRequest registers an instrument's on-chain representation.
type CreateTokenRequest struct {
	InstrumentID    string  `json:"instrument_id" binding:"required,uuid"`
	NetworkID       string  `json:"network_id" binding:"required,uuid"`
	Symbol          string  `json:"symbol" binding:"required,min=1,max=20"`
	ContractAddress *string `json:"contract_address" binding:"omitempty,max=128"`
}

// CreateInstrument registers a new instrument
// @Summary     Register an instrument
// @Description Register a tradable instrument in the market catalog
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body CreateInstrumentRequest true "Instrument details"
// @Success     201 {object} models.Instrument "Instrument created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pipeline/catalog/instruments [post]
func (h *CatalogHandler) CreateInstrument(c *gin.Context) {
	var req CreateInstrumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	instrument, err := h.catalogService.CreateInstrument(req.Kind, req.Name, req.ISIN, req.Currency, req.Sector)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("", "REGISTER_INSTRUMENT", "instrument", instrument.ID, c.ClientIP(),
		map[string]interface{}{"kind": string(req.Kind), "name": req.Name})

	c.JSON(http.StatusCreated, gin.H{"instrument": instrument})
}

// CreateExchange registers a new exchange
// @Summary     Register an exchange
// @Description Register a trading venue by its MIC
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body CreateExchangeRequest true "Exchange details"
// @Success     201 {object} models.Exchange "Exchange created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     409 {object} ErrorResponse "Duplicate MIC"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pipeline/catalog/exchanges [post]
func (h *CatalogHandler) CreateExchange(c *gin.Context) {
	var req CreateExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	exchange, err := h.catalogService.CreateExchange(req.MIC, req.Name, req.Country, req.Timezone)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("", "REGISTER_EXCHANGE", "exchange", exchange.ID, c.ClientIP(),
		map[string]interface{}{"mic": exchange.MIC})

	c.JSON(http.StatusCreated, gin.H{"exchange": exchange})
}

// CreateNetwork registers a new network
// @Summary     Register a network
// @Description Register a blockchain network
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body CreateNetworkRequest true "Network details"
// @Success     201 {object} models.Network "Network created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     409 {object} ErrorResponse "Duplicate network code"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pipeline/catalog/networks [post]
func (h *CatalogHandler) CreateNetwork(c *gin.Context) {
	var req CreateNetworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	network, err := h.catalogService.CreateNetwork(req.Code, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("", "REGISTER_NETWORK", "network", network.ID, c.ClientIP(),
		map[string]interface{}{"code": network.Code})

	c.JSON(http.StatusCreated, gin.H{"network": network})
}

// CreatePriceSource registers a new price source
// @Summary     Register a price source
// @Description Register a quote feed that quotes will be attributed to
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body CreatePriceSourceRequest true "Price source details"
// @Success     201 {object} models.PriceSource "Price source created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     409 {object} ErrorResponse "Duplicate source code"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pipeline/catalog/price-sources [post]
func (h *CatalogHandler) CreatePriceSource(c *gin.Context) {
	var req CreatePriceSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	source, err := h.catalogService.CreatePriceSource(req.Code, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("", "REGISTER_PRICE_SOURCE", "price_source", source.ID, c.ClientIP(),
		map[string]interface{}{"code": source.Code})

	c.JSON(http.StatusCreated, gin.H{"price_source": source})
}

// CreateListing registers a new listing
// @Summary     Register a listing
// @Description Register an instrument's ticker on an exchange
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body CreateListingRequest true "Listing details"
// @Success     201 {object} models.Listing "Listing created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "Instrument or exchange not found"
// @Failure     409 {object} ErrorResponse "Duplicate listing"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pipeline/catalog/listings [post]
func (h *CatalogHandler) CreateListing(c *gin.Context) {
	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	listing, err := h.catalogService.CreateListing(req.InstrumentID, req.ExchangeID, req.Ticker, req.IsPrimary)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("", "REGISTER_LISTING", "listing", listing.ID, c.ClientIP(),
		map[string]interface{}{"ticker": listing.Ticker, "instrument_id": req.InstrumentID})

	c.JSON(http.StatusCreated, gin.H{"listing": listing})
}

// CreateToken registers a new token
// @Summary     Register a token
// @Description Register an instrument's on-chain representation
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body CreateTokenRequest true "Token details"
// @Success     201 {object} models.Token "Token created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "Instrument or network not found"
// @Failure     409 {object} ErrorResponse "Duplicate token"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pipeline/catalog/tokens [post]
func (h *CatalogHandler) CreateToken(c *gin.Context) {
	var req CreateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	token, err := h.catalogService.CreateToken(req.InstrumentID, req.NetworkID, req.Symbol, req.ContractAddress)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("", "REGISTER_TOKEN", "token", token.ID, c.ClientIP(),
		map[string]interface{}{"symbol": token.Symbol, "instrument_id": req.InstrumentID})

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// ListInstruments returns catalog instruments
// @Summary     List instruments
// @Description Get a paginated list of catalog instruments with optional kind and name/ISIN filters
// @Tags        catalog
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       kind      query string false "Filter by kind (EQUITY, ETF, CRYPTO, COMMODITY)"
// @Param       q         query string false "Search by name or ISIN"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Instrument] "Paginated instruments"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /catalog/instruments [get]
func (h *CatalogHandler) ListInstruments(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var kind *models.InstrumentKind
	if v := c.Query("kind"); v != "" {
		k := models.InstrumentKind(v)
		switch k {
		case models.InstrumentKindEquity, models.InstrumentKindETF,
			models.InstrumentKindCrypto, models.InstrumentKindCommodity:
			kind = &k
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown instrument kind"))
			return
		}
	}

	result, err := h.catalogService.ListInstruments(kind, c.Query("q"), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetInstrumentByID returns one instrument with its venues
// @Summary     Get instrument by ID
// @Description Get an instrument with its listings and tokens loaded
// @Tags        catalog
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Instrument ID"
// @Success     200 {object} models.Instrument "Instrument details"
// @Failure     400 {object} ErrorResponse "Invalid instrument ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Instrument not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /catalog/instruments/{id} [get]
func (h *CatalogHandler) GetInstrumentByID(c *gin.Context) {
	instrumentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	instrument, err := h.catalogService.GetInstrumentByID(instrumentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"instrument": instrument})
}

// SearchListings serves listing autocomplete
// @Summary     Search listings
// @Description Autocomplete search over listings by ticker, instrument name, or MIC
// @Tags        catalog
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       q    query string false "Search term"
// @Param       page query int    false "Page number (default 1, page size fixed at 20)"
// @Success     200 {object} pagination.SearchResponse "Matching listings"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /catalog/search/listings [get]
func (h *CatalogHandler) SearchListings(c *gin.Context) {
	var req pagination.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	resp, err := h.catalogService.SearchListings(req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SearchTokens serves token autocomplete
// @Summary     Search tokens
// @Description Autocomplete search over tokens by symbol, instrument name, network code, or contract address
// @Tags        catalog
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       q    query string false "Search term"
// @Param       page query int    false "Page number (default 1, page size fixed at 20)"
// @Success     200 {object} pagination.SearchResponse "Matching tokens"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /catalog/search/tokens [get]
func (h *CatalogHandler) SearchTokens(c *gin.Context) {
	var req pagination.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	resp, err := h.catalogService.SearchTokens(req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
