package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "patrimo/internal/errors"
	"patrimo/internal/models"
	"patrimo/internal/pagination"
)

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateAccount creates a new account for a user. Names are unique per user.
func (s *accountService) CreateAccount(userID, name string, accountType models.AccountType, baseCurrency, institution, accountRef string) (*models.Account, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Account name is required")
	}
	if baseCurrency == "" {
		baseCurrency = "USD"
	}

	account := &models.Account{
		UserID:       userID,
		Name:         name,
		Type:         accountType,
		BaseCurrency: baseCurrency,
		Institution:  institution,
		AccountRef:   accountRef,
		IsActive:     true,
	}

	if err := s.db.Create(account).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrDuplicateAccountName
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return account, nil
}

// GetUserAccounts returns a paginated list of the user's accounts ordered by name.
func (s *accountService) GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	base := s.db.Model(&models.Account{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Order("name ASC").Scopes(pagination.Paginate(page)).Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountByID returns one of the user's accounts.
func (s *accountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateAccount applies partial updates to an account.
func (s *accountService) UpdateAccount(userID, accountID string, name, institution, accountRef *string, isActive *bool) (*models.Account, error) {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Account name cannot be empty")
		}
		updates["name"] = *name
	}
	if institution != nil {
		updates["institution"] = *institution
	}
	if accountRef != nil {
		updates["account_ref"] = *accountRef
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}
	if len(updates) == 0 {
		return account, nil
	}

	if err := s.db.Model(account).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrDuplicateAccountName
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return account, nil
}
