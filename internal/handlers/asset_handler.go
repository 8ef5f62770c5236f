package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	apperrors "patrimo/internal/errors"
	"patrimo/internal/models"
	"patrimo/internal/pagination"
	"patrimo/internal/services"
)

// AssetHandler handles asset-related requests.
type AssetHandler struct {
	assetService     services.AssetServicer
	valuationService services.ValuationServicer
	auditService     services.AuditServicer
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(assetService services.AssetServicer, valuationService services.ValuationServicer, auditService services.AuditServicer) *AssetHandler {
	return &AssetHandler{assetService: assetService, valuationService: valuationService, auditService: auditService}
}

// CreateAssetRequest represents the request payload for creating an asset.
// Exactly one detail payload must be present, matching the category.
type CreateAssetRequest struct {
	AccountID string               `json:"account_id" binding:"required,uuid"`
	Name      string               `json:"name" binding:"required,min=1,max=200"`
	Category  models.AssetCategory `json:"category" binding:"required,asset_category"`
	TypeID    *string              `json:"type_id" binding:"omitempty,uuid"`
	Currency  string               `json:"currency" binding:"omitempty,iso4217"`
	Extra     datatypes.JSON       `json:"extra"`

	Investment  *services.InvestmentDetailsInput  `json:"investment"`
	Cash        *services.CashDetailsInput        `json:"cash"`
	RealEstate  *services.RealEstateDetailsInput  `json:"real_estate"`
	Metal       *services.MetalDetailsInput       `json:"metal"`
	Collectible *services.CollectibleDetailsInput `json:"collectible"`
	Other       *services.OtherDetailsInput       `json:"other"`
}

// UpdateAssetRequest represents the request payload for updating an asset.
// The category is immutable; a detail payload, when present, replaces the
// asset's detail row and must match its category.
type UpdateAssetRequest struct {
	Name     *string        `json:"name" binding:"omitempty,min=1,max=200"`
	TypeID   *string        `json:"type_id" binding:"omitempty,uuid"`
	IsActive *bool          `json:"is_active"`
	Extra    datatypes.JSON `json:"extra"`

	Investment  *services.InvestmentDetailsInput  `json:"investment"`
	Cash        *services.CashDetailsInput        `json:"cash"`
	RealEstate  *services.RealEstateDetailsInput  `json:"real_estate"`
	Metal       *services.MetalDetailsInput       `json:"metal"`
	Collectible *services.CollectibleDetailsInput `json:"collectible"`
	Other       *services.OtherDetailsInput       `json:"other"`
}

// AssetValueResponse is the market valuation of a single asset. Both fields
// are null when the asset has no market price.
type AssetValueResponse struct {
	AssetID        string  `json:"asset_id"`
	MarketValue    *string `json:"market_value"`
	MarketCurrency *string `json:"market_currency"`
}

// CreateAsset handles the creation of a new asset
// @Summary     Create an asset
// @Description Create a new asset under one of the user's accounts. Exactly one detail payload must match the category.
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateAssetRequest true "Asset details"
// @Success     201 {object} models.Asset "Asset created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     409 {object} ErrorResponse "Duplicate cash asset"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets [post]
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input := services.CreateAssetInput{
		Name:        req.Name,
		Category:    req.Category,
		TypeID:      req.TypeID,
		Currency:    req.Currency,
		Extra:       req.Extra,
		Investment:  req.Investment,
		Cash:        req.Cash,
		RealEstate:  req.RealEstate,
		Metal:       req.Metal,
		Collectible: req.Collectible,
		Other:       req.Other,
	}

	asset, err := h.assetService.CreateAsset(userID, req.AccountID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_ASSET", "asset", asset.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "category": string(req.Category), "account_id": req.AccountID})

	c.JSON(http.StatusCreated, gin.H{"asset": asset})
}

// GetUserAssets handles the retrieval of the user's assets
// @Summary     Get user assets
// @Description Get a paginated list of the user's assets, optionally filtered by account
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       account_id query string false "Filter by account ID"
// @Param       page       query int    false "Page number (default 1)"
// @Param       page_size  query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Asset] "Paginated assets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets [get]
func (h *AssetHandler) GetUserAssets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var accountID *string
	if v := c.Query("account_id"); v != "" {
		accountID = &v
	}

	result, err := h.assetService.GetUserAssets(userID, accountID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAssetByID handles the retrieval of a specific asset
// @Summary     Get asset by ID
// @Description Get a specific asset with its details loaded
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Asset ID"
// @Success     200 {object} models.Asset "Asset details"
// @Failure     400 {object} ErrorResponse "Invalid asset ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id} [get]
func (h *AssetHandler) GetAssetByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	assetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	asset, err := h.assetService.GetAssetByID(userID, assetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// GetAssetValue returns the current market value of an asset
// @Summary     Get asset market value
// @Description Get the asset's market value from the latest quote. Values are null when the asset has no market price.
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Asset ID"
// @Success     200 {object} AssetValueResponse "Market value, or nulls when unpriced"
// @Failure     400 {object} ErrorResponse "Invalid asset ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id}/value [get]
func (h *AssetHandler) GetAssetValue(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	assetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	asset, err := h.assetService.GetAssetByID(userID, assetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	mv, err := h.valuationService.MarketValue(asset)
	if err != nil {
		respondWithError(c, err)
		return
	}

	// An unpriced asset is a normal outcome; render explicit nulls.
	if mv == nil {
		c.JSON(http.StatusOK, gin.H{
			"asset_id":        asset.ID,
			"market_value":    nil,
			"market_currency": nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"asset_id":        asset.ID,
		"market_value":    mv.Value,
		"market_currency": mv.Currency,
	})
}

// UpdateAsset handles updating an asset
// @Summary     Update asset
// @Description Update an asset's base fields and optionally replace its detail payload. The category cannot change.
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Asset ID"
// @Param       request body UpdateAssetRequest true "Fields to update"
// @Success     200 {object} models.Asset "Updated asset"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id} [put]
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	assetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input := services.UpdateAssetInput{
		Name:        req.Name,
		TypeID:      req.TypeID,
		IsActive:    req.IsActive,
		Extra:       req.Extra,
		Investment:  req.Investment,
		Cash:        req.Cash,
		RealEstate:  req.RealEstate,
		Metal:       req.Metal,
		Collectible: req.Collectible,
		Other:       req.Other,
	}

	asset, err := h.assetService.UpdateAsset(userID, assetID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_ASSET", "asset", assetID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// DeleteAsset handles the deletion of an asset
// @Summary     Delete asset
// @Description Soft-delete an asset and stop including it in the portfolio
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Asset ID"
// @Success     200 {object} MessageResponse "Asset deleted"
// @Failure     400 {object} ErrorResponse "Invalid asset ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id} [delete]
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	assetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.assetService.DeleteAsset(userID, assetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_ASSET", "asset", assetID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Asset deleted successfully"})
}

// ListAssetTypes returns the asset type taxonomy
// @Summary     List asset types
// @Description Get the full asset type taxonomy, ordered by slug
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]models.AssetType "Asset types"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /asset-types [get]
func (h *AssetHandler) ListAssetTypes(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	types, err := h.assetService.ListAssetTypes()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"asset_types": types})
}
