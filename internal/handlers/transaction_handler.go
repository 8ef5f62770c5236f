package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "patrimo/internal/errors"
	"patrimo/internal/models"
	"patrimo/internal/pagination"
	"patrimo/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for recording a
// transaction against an asset. Amount carries the sign: outflows are
// negative. Quantity is optional and only meaningful for BUY/SELL.
type CreateTransactionRequest struct {
	TxnType   models.TxnType   `json:"txn_type" binding:"required,txn_type"`
	Amount    *decimal.Decimal `json:"amount" binding:"required"`
	Quantity  *decimal.Decimal `json:"quantity"`
	Fee       *decimal.Decimal `json:"fee"`
	Timestamp *string          `json:"timestamp"`
	Memo      string           `json:"memo" binding:"max=500"`
}

// TransactionResponse represents a transaction in the response
type TransactionResponse struct {
	ID        string          `json:"id"`
	AssetID   string          `json:"asset_id"`
	Timestamp time.Time       `json:"timestamp"`
	TxnType   models.TxnType  `json:"txn_type"`
	Amount    decimal.Decimal `json:"amount"`
	Fee       decimal.Decimal `json:"fee"`
	Memo      string          `json:"memo"`
}

func (r *CreateTransactionRequest) toInput() (services.CreateTransactionInput, error) {
	input := services.CreateTransactionInput{
		TxnType: r.TxnType,
		Amount:  *r.Amount,
		Memo:    r.Memo,
	}
	if r.Quantity != nil {
		input.Quantity = decimal.NewNullDecimal(*r.Quantity)
	}
	if r.Fee != nil {
		input.Fee = *r.Fee
	}
	if r.Timestamp != nil && *r.Timestamp != "" {
		ts, err := parseFlexibleTime(*r.Timestamp)
		if err != nil {
			return input, err
		}
		input.Timestamp = ts
	}
	return input, nil
}

// CreateTransaction handles recording a new transaction for an asset
// @Summary     Record a transaction
// @Description Record a cash movement against an asset. The amount carries the sign; outflows are negative.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Asset ID"
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} TransactionResponse "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id}/transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
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

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(userID, assetID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"txn_type": string(req.TxnType), "amount": req.Amount.String(), "asset_id": assetID})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetAssetTransactions handles the retrieval of transactions for an asset
// @Summary     Get asset transactions
// @Description Get a paginated list of transactions for an asset, newest first
// @Tags        assets,transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Asset ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id}/transactions [get]
func (h *TransactionHandler) GetAssetTransactions(c *gin.Context) {
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

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.transactionService.GetAssetTransactions(userID, assetID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// getOwnedTransaction loads a transaction by path params, enforcing both
// user ownership and the asset linkage implied by the nested route.
func (h *TransactionHandler) getOwnedTransaction(c *gin.Context, userID string) (*models.Transaction, error) {
	assetID, err := parsePathID(c, "id")
	if err != nil {
		return nil, err
	}
	txnID, err := parsePathID(c, "txnID")
	if err != nil {
		return nil, err
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, txnID)
	if err != nil {
		return nil, err
	}
	if transaction.AssetID != assetID {
		return nil, apperrors.ErrTransactionNotFound
	}
	return transaction, nil
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Description Get a specific transaction of an asset
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path string true "Asset ID"
// @Param       txnID path string true "Transaction ID"
// @Success     200 {object} TransactionResponse "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id}/transactions/{txnID} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.getOwnedTransaction(c, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransactionRequest represents the request payload for updating a transaction.
type UpdateTransactionRequest struct {
	TxnType   *models.TxnType  `json:"txn_type" binding:"omitempty,txn_type"`
	Amount    *decimal.Decimal `json:"amount"`
	Quantity  *decimal.Decimal `json:"quantity"`
	Fee       *decimal.Decimal `json:"fee"`
	Timestamp *string          `json:"timestamp"`
	Memo      *string          `json:"memo" binding:"omitempty,max=500"`
}

// UpdateTransaction handles updating an existing transaction
// @Summary     Update transaction
// @Description Update an existing transaction's fields
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Asset ID"
// @Param       txnID   path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} TransactionResponse "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id}/transactions/{txnID} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	existing, err := h.getOwnedTransaction(c, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	txnID := existing.ID

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input := services.UpdateTransactionInput{
		TxnType: req.TxnType,
		Amount:  req.Amount,
		Fee:     req.Fee,
		Memo:    req.Memo,
	}
	if req.Quantity != nil {
		quantity := decimal.NewNullDecimal(*req.Quantity)
		input.Quantity = &quantity
	}
	if req.Timestamp != nil && *req.Timestamp != "" {
		ts, parseErr := parseFlexibleTime(*req.Timestamp)
		if parseErr != nil {
			respondWithError(c, parseErr)
			return
		}
		input.Timestamp = &ts
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, txnID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_TRANSACTION", "transaction", txnID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles the deletion of a transaction
// @Summary     Delete transaction
// @Description Delete a transaction by ID
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path string true "Asset ID"
// @Param       txnID path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id}/transactions/{txnID} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	existing, err := h.getOwnedTransaction(c, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, existing.ID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_TRANSACTION", "transaction", existing.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}
