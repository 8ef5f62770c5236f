package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "patrimo/internal/errors"
	"patrimo/internal/models"
	"patrimo/internal/pagination"
)

// transactionService handles transaction-related business logic. Balances
// are derived by summing amounts, so writes here never touch another row.
type transactionService struct {
	db           *gorm.DB
	assetService AssetServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, assetService AssetServicer) TransactionServicer {
	return &transactionService{
		db:           db,
		assetService: assetService,
	}
}

// CreateTransaction records a transaction against one of the user's assets.
func (s *transactionService) CreateTransaction(userID, assetID string, input CreateTransactionInput) (*models.Transaction, error) {
	if err := validateTransactionFields(input.TxnType, input.Quantity, input.Fee); err != nil {
		return nil, err
	}

	asset, err := s.assetService.GetAssetByID(userID, assetID)
	if err != nil {
		return nil, err
	}

	timestamp := input.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	transaction := &models.Transaction{
		AssetID:   asset.ID,
		Timestamp: timestamp,
		TxnType:   input.TxnType,
		Quantity:  input.Quantity,
		Amount:    input.Amount,
		Fee:       input.Fee,
		Memo:      input.Memo,
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// GetAssetTransactions retrieves a paginated list of an asset's transactions,
// newest first.
func (s *transactionService) GetAssetTransactions(userID, assetID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if _, err := s.assetService.GetAssetByID(userID, assetID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("asset_id = ?", assetID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("timestamp DESC, id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetTransactionByID retrieves a transaction owned by the user.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := s.db.
		Joins("JOIN assets ON assets.id = transactions.asset_id AND assets.deleted_at IS NULL").
		Joins("JOIN accounts ON accounts.id = assets.account_id AND accounts.deleted_at IS NULL").
		Where("transactions.id = ? AND accounts.user_id = ?", transactionID, userID).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies partial updates to a transaction.
func (s *transactionService) UpdateTransaction(userID, transactionID string, input UpdateTransactionInput) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Timestamp != nil {
		updates["timestamp"] = *input.Timestamp
	}
	if input.TxnType != nil {
		updates["txn_type"] = *input.TxnType
	}
	if input.Quantity != nil {
		updates["quantity"] = *input.Quantity
	}
	if input.Amount != nil {
		updates["amount"] = *input.Amount
	}
	if input.Fee != nil {
		updates["fee"] = *input.Fee
	}
	if input.Memo != nil {
		updates["memo"] = *input.Memo
	}

	nextType := transaction.TxnType
	if input.TxnType != nil {
		nextType = *input.TxnType
	}
	nextQuantity := transaction.Quantity
	if input.Quantity != nil {
		nextQuantity = *input.Quantity
	}
	nextFee := transaction.Fee
	if input.Fee != nil {
		nextFee = *input.Fee
	}
	if err := validateTransactionFields(nextType, nextQuantity, nextFee); err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.Transaction{}).Where("id = ?", transaction.ID).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetTransactionByID(userID, transactionID)
}

// DeleteTransaction soft-deletes a transaction.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(&models.Transaction{}, "id = ?", transaction.ID).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// validateTransactionFields checks the invariants binding cannot express.
func validateTransactionFields(txnType models.TxnType, quantity decimal.NullDecimal, fee decimal.Decimal) error {
	switch txnType {
	case models.TxnTypeBuy, models.TxnTypeSell, models.TxnTypeDeposit, models.TxnTypeWithdrawal,
		models.TxnTypeIncome, models.TxnTypeExpense, models.TxnTypeAdjustment:
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown transaction type")
	}
	if quantity.Valid && !quantity.Decimal.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Quantity must be positive when present")
	}
	if fee.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Fee cannot be negative")
	}
	return nil
}
