package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "patrimo/internal/errors"
	"patrimo/internal/pagination"
	"patrimo/internal/services"
)

// QuoteHandler handles pipeline quote ingestion and history reads.
type QuoteHandler struct {
	quoteService services.QuoteServicer
	auditService services.AuditServicer
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(quoteService services.QuoteServicer, auditService services.AuditServicer) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService, auditService: auditService}
}

// QuoteIngestItem is one observation in an ingest batch. Exactly one of
// instrument_id, listing_id, token_id must be set.
type QuoteIngestItem struct {
	SourceID     string           `json:"source_id" binding:"required,uuid"`
	InstrumentID *string          `json:"instrument_id" binding:"omitempty,uuid"`
	ListingID    *string          `json:"listing_id" binding:"omitempty,uuid"`
	TokenID      *string          `json:"token_id" binding:"omitempty,uuid"`
	TS           string           `json:"ts" binding:"required"`
	Price        *decimal.Decimal `json:"price" binding:"required"`
	Currency     string           `json:"currency" binding:"required,iso4217"`
}

// IngestQuotesRequest is the batch ingest payload.
type IngestQuotesRequest struct {
	Quotes []QuoteIngestItem `json:"quotes" binding:"required,min=1,dive"`
}

func (i *QuoteIngestItem) toInput() (services.QuoteInput, error) {
	ts, err := parseFlexibleTime(i.TS)
	if err != nil {
		return services.QuoteInput{}, err
	}
	return services.QuoteInput{
		SourceID:     i.SourceID,
		InstrumentID: i.InstrumentID,
		ListingID:    i.ListingID,
		TokenID:      i.TokenID,
		TS:           ts,
		Price:        *i.Price,
		Currency:     i.Currency,
	}, nil
}

// IngestQuotes stores a batch of quotes
// @Summary     Ingest quotes
// @Description Store a batch of price observations. Rows already recorded for the same source, target and timestamp are skipped.
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body IngestQuotesRequest true "Quote batch"
// @Success     201 {object} map[string]int "Number of quotes ingested"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "Unknown source or target"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pipeline/quotes [post]
func (h *QuoteHandler) IngestQuotes(c *gin.Context) {
	var req IngestQuotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	inputs := make([]services.QuoteInput, 0, len(req.Quotes))
	for _, item := range req.Quotes {
		input, err := item.toInput()
		if err != nil {
			respondWithError(c, err)
			return
		}
		inputs = append(inputs, input)
	}

	count, err := h.quoteService.Ingest(inputs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("", "INGEST_QUOTES", "quote", "", c.ClientIP(),
		map[string]interface{}{"received": len(req.Quotes), "ingested": count})

	c.JSON(http.StatusCreated, gin.H{"ingested": count})
}

// GetQuoteHistory returns stored quotes
// @Summary     Quote history
// @Description Get paginated quotes, newest first, filtered by target and time range
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       instrument_id query string false "Filter by instrument"
// @Param       listing_id    query string false "Filter by listing"
// @Param       token_id      query string false "Filter by token"
// @Param       from          query string false "Earliest timestamp (RFC 3339 or YYYY-MM-DD)"
// @Param       to            query string false "Latest timestamp (RFC 3339 or YYYY-MM-DD)"
// @Param       page          query int    false "Page number (default 1)"
// @Param       page_size     query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Quote] "Paginated quotes"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pipeline/quotes/history [get]
func (h *QuoteHandler) GetQuoteHistory(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.QuoteHistoryFilter
	var err error
	if filter.InstrumentID, err = optionalIDQuery(c, "instrument_id"); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.ListingID, err = optionalIDQuery(c, "listing_id"); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.TokenID, err = optionalIDQuery(c, "token_id"); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.From, err = optionalTimeQuery(c, "from"); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.To, err = optionalTimeQuery(c, "to"); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.quoteService.GetQuoteHistory(filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func optionalIDQuery(c *gin.Context, name string) (*string, error) {
	value := c.Query(name)
	if value == "" {
		return nil, nil
	}
	if uuid.Validate(value) != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+name)
	}
	return &value, nil
}

func optionalTimeQuery(c *gin.Context, name string) (*time.Time, error) {
	value := c.Query(name)
	if value == "" {
		return nil, nil
	}
	ts, err := parseFlexibleTime(value)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}
