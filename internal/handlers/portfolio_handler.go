package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"patrimo/internal/services"
)

// PortfolioHandler handles portfolio overview requests.
type PortfolioHandler struct {
	overviewService services.OverviewServicer
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(overviewService services.OverviewServicer) *PortfolioHandler {
	return &PortfolioHandler{overviewService: overviewService}
}

// GetOverview returns the user's full portfolio overview
// @Summary     Get portfolio overview
// @Description Get all accounts with their assets, per-asset balances and market values, and per-currency totals. Balance and market totals are separate buckets; currencies are never converted or mixed.
// @Tags        portfolio
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.PortfolioOverview "Portfolio overview"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio/overview [get]
func (h *PortfolioHandler) GetOverview(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	overview, err := h.overviewService.PortfolioOverview(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}
