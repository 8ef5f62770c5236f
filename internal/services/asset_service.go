package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "patrimo/internal/errors"
	"patrimo/internal/models"
	"patrimo/internal/pagination"
)

// assetService handles asset-related business logic.
type assetService struct {
	db *gorm.DB
}

// NewAssetService creates a new AssetServicer.
func NewAssetService(db *gorm.DB) AssetServicer {
	return &assetService{db: db}
}

// assetPreloads loads the detail rows and classification onto asset queries.
func assetPreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Type").
		Preload("Investment").
		Preload("Investment.Instrument").
		Preload("Investment.Listing").
		Preload("Investment.Token").
		Preload("Cash").
		Preload("RealEstate").
		Preload("Metal").
		Preload("Collectible").
		Preload("Other")
}

// CreateAsset creates an asset with its category-matching detail row.
func (s *assetService) CreateAsset(userID, accountID string, input CreateAssetInput) (*models.Asset, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Asset name is required")
	}

	var account models.Account
	if err := s.db.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := checkDetailPayload(input.Category, input.Investment, input.Cash, input.RealEstate, input.Metal, input.Collectible, input.Other); err != nil {
		return nil, err
	}

	if input.TypeID != nil {
		var count int64
		if err := s.db.Model(&models.AssetType{}).Where("id = ?", *input.TypeID).Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrAssetTypeNotFound
		}
	}

	currency := input.Currency
	if currency == "" {
		currency = account.BaseCurrency
	}

	asset := &models.Asset{
		AccountID: accountID,
		Name:      input.Name,
		Category:  input.Category,
		TypeID:    input.TypeID,
		Currency:  currency,
		IsActive:  true,
		Extra:     input.Extra,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if input.Category == models.AssetCategoryCash {
			var count int64
			if err := tx.Model(&models.Asset{}).
				Where("account_id = ? AND category = ?", accountID, models.AssetCategoryCash).
				Count(&count).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if count > 0 {
				return apperrors.ErrDuplicateCashAsset
			}
		}

		if err := tx.Create(asset).Error; err != nil {
			if isUniqueConstraintError(err) {
				return apperrors.ErrDuplicateCashAsset
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		return s.createDetail(tx, asset, input)
	})
	if err != nil {
		return nil, err
	}

	return s.GetAssetByID(userID, asset.ID)
}

// createDetail writes the detail row for a freshly created asset.
func (s *assetService) createDetail(tx *gorm.DB, asset *models.Asset, input CreateAssetInput) error {
	switch asset.Category {
	case models.AssetCategoryInvestment:
		instrumentID, err := deriveInstrumentID(tx, input.Investment.ListingID, input.Investment.TokenID)
		if err != nil {
			return err
		}
		detail := &models.InvestmentDetails{
			AssetID:      asset.ID,
			InstrumentID: instrumentID,
			ListingID:    input.Investment.ListingID,
			TokenID:      input.Investment.TokenID,
			Memo:         input.Investment.Memo,
		}
		if err := tx.Create(detail).Error; err != nil {
			return wrapDetailError(err)
		}

	case models.AssetCategoryCash:
		detail := &models.CashDetails{AssetID: asset.ID, AccountRef: input.Cash.AccountRef}
		if err := tx.Create(detail).Error; err != nil {
			return wrapDetailError(err)
		}

	case models.AssetCategoryRealEstate:
		detail := &models.RealEstateDetails{
			AssetID:     asset.ID,
			Address:     input.RealEstate.Address,
			Country:     input.RealEstate.Country,
			CadastralID: input.RealEstate.CadastralID,
			AreaSqm:     input.RealEstate.AreaSqm,
		}
		if err := tx.Create(detail).Error; err != nil {
			return wrapDetailError(err)
		}

	case models.AssetCategoryPreciousMetal:
		if err := validateMetalInput(input.Metal); err != nil {
			return err
		}
		detail := &models.PreciousMetalDetails{
			AssetID:     asset.ID,
			Metal:       input.Metal.Metal,
			Purity:      input.Metal.Purity,
			Form:        input.Metal.Form,
			WeightGrams: input.Metal.WeightGrams,
		}
		if err := tx.Create(detail).Error; err != nil {
			return wrapDetailError(err)
		}

	case models.AssetCategoryCollectible:
		detail := &models.CollectibleDetails{
			AssetID:       asset.ID,
			Category:      input.Collectible.Category,
			Year:          input.Collectible.Year,
			CertificateID: input.Collectible.CertificateID,
			Notes:         input.Collectible.Notes,
		}
		if err := tx.Create(detail).Error; err != nil {
			return wrapDetailError(err)
		}

	case models.AssetCategoryOther:
		detail := &models.OtherDetails{AssetID: asset.ID, Description: input.Other.Description}
		if err := tx.Create(detail).Error; err != nil {
			return wrapDetailError(err)
		}

	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown asset category")
	}
	return nil
}

// GetUserAssets returns a paginated list of the user's assets, optionally
// filtered to one account, ordered by name.
func (s *assetService) GetUserAssets(userID string, accountID *string, page pagination.PageRequest) (*pagination.PageResponse[models.Asset], error) {
	page.Defaults()

	base := s.db.Model(&models.Asset{}).
		Joins("JOIN accounts ON accounts.id = assets.account_id AND accounts.deleted_at IS NULL").
		Where("accounts.user_id = ?", userID)
	if accountID != nil {
		base = base.Where("assets.account_id = ?", *accountID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var assets []models.Asset
	if err := assetPreloads(base).
		Order("assets.name ASC").
		Scopes(pagination.Paginate(page)).
		Find(&assets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(assets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAssetByID returns one of the user's assets with its detail row loaded.
func (s *assetService) GetAssetByID(userID, assetID string) (*models.Asset, error) {
	var asset models.Asset
	err := assetPreloads(s.db).
		Joins("JOIN accounts ON accounts.id = assets.account_id AND accounts.deleted_at IS NULL").
		Where("assets.id = ? AND accounts.user_id = ?", assetID, userID).
		First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAssetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &asset, nil
}

// UpdateAsset applies partial updates. The category is immutable; a detail
// payload, when present, must match the existing category and replaces the
// detail row's fields.
func (s *assetService) UpdateAsset(userID, assetID string, input UpdateAssetInput) (*models.Asset, error) {
	asset, err := s.GetAssetByID(userID, assetID)
	if err != nil {
		return nil, err
	}

	if hasAnyDetailPayload(input.Investment, input.Cash, input.RealEstate, input.Metal, input.Collectible, input.Other) {
		if err := checkDetailPayload(asset.Category, input.Investment, input.Cash, input.RealEstate, input.Metal, input.Collectible, input.Other); err != nil {
			return nil, err
		}
	}

	if input.TypeID != nil {
		var count int64
		if err := s.db.Model(&models.AssetType{}).Where("id = ?", *input.TypeID).Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrAssetTypeNotFound
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if input.Name != nil {
			if strings.TrimSpace(*input.Name) == "" {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "Asset name cannot be empty")
			}
			updates["name"] = *input.Name
		}
		if input.TypeID != nil {
			updates["type_id"] = *input.TypeID
		}
		if input.IsActive != nil {
			updates["is_active"] = *input.IsActive
		}
		if input.Extra != nil {
			updates["extra"] = input.Extra
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Asset{}).Where("id = ?", asset.ID).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		return s.updateDetail(tx, asset, input)
	})
	if err != nil {
		return nil, err
	}

	return s.GetAssetByID(userID, assetID)
}

// updateDetail replaces the detail row's fields for the matching payload, if any.
func (s *assetService) updateDetail(tx *gorm.DB, asset *models.Asset, input UpdateAssetInput) error {
	switch {
	case input.Investment != nil:
		instrumentID, err := deriveInstrumentID(tx, input.Investment.ListingID, input.Investment.TokenID)
		if err != nil {
			return err
		}
		if asset.Investment == nil {
			return apperrors.Wrap(apperrors.ErrDataIntegrity, errors.New("investment asset has no detail row"))
		}
		asset.Investment.InstrumentID = instrumentID
		asset.Investment.ListingID = input.Investment.ListingID
		asset.Investment.TokenID = input.Investment.TokenID
		asset.Investment.Memo = input.Investment.Memo
		// Column-map update: a full Save would also write the preloaded
		// Instrument/Listing associations, putting the old venue back.
		if err := tx.Model(asset.Investment).Updates(map[string]interface{}{
			"instrument_id": instrumentID,
			"listing_id":    input.Investment.ListingID,
			"token_id":      input.Investment.TokenID,
			"memo":          input.Investment.Memo,
		}).Error; err != nil {
			return wrapDetailError(err)
		}

	case input.Cash != nil:
		if asset.Cash == nil {
			return apperrors.Wrap(apperrors.ErrDataIntegrity, errors.New("cash asset has no detail row"))
		}
		asset.Cash.AccountRef = input.Cash.AccountRef
		if err := tx.Save(asset.Cash).Error; err != nil {
			return wrapDetailError(err)
		}

	case input.RealEstate != nil:
		if asset.RealEstate == nil {
			return apperrors.Wrap(apperrors.ErrDataIntegrity, errors.New("real estate asset has no detail row"))
		}
		asset.RealEstate.Address = input.RealEstate.Address
		asset.RealEstate.Country = input.RealEstate.Country
		asset.RealEstate.CadastralID = input.RealEstate.CadastralID
		asset.RealEstate.AreaSqm = input.RealEstate.AreaSqm
		if err := tx.Save(asset.RealEstate).Error; err != nil {
			return wrapDetailError(err)
		}

	case input.Metal != nil:
		if err := validateMetalInput(input.Metal); err != nil {
			return err
		}
		if asset.Metal == nil {
			return apperrors.Wrap(apperrors.ErrDataIntegrity, errors.New("metal asset has no detail row"))
		}
		asset.Metal.Metal = input.Metal.Metal
		asset.Metal.Purity = input.Metal.Purity
		asset.Metal.Form = input.Metal.Form
		asset.Metal.WeightGrams = input.Metal.WeightGrams
		if err := tx.Save(asset.Metal).Error; err != nil {
			return wrapDetailError(err)
		}

	case input.Collectible != nil:
		if asset.Collectible == nil {
			return apperrors.Wrap(apperrors.ErrDataIntegrity, errors.New("collectible asset has no detail row"))
		}
		asset.Collectible.Category = input.Collectible.Category
		asset.Collectible.Year = input.Collectible.Year
		asset.Collectible.CertificateID = input.Collectible.CertificateID
		asset.Collectible.Notes = input.Collectible.Notes
		if err := tx.Save(asset.Collectible).Error; err != nil {
			return wrapDetailError(err)
		}

	case input.Other != nil:
		if asset.Other == nil {
			return apperrors.Wrap(apperrors.ErrDataIntegrity, errors.New("other asset has no detail row"))
		}
		asset.Other.Description = input.Other.Description
		if err := tx.Save(asset.Other).Error; err != nil {
			return wrapDetailError(err)
		}
	}
	return nil
}

// DeleteAsset soft-deletes an asset. Its transactions and detail row stay
// behind the soft delete and disappear from every listing.
func (s *assetService) DeleteAsset(userID, assetID string) error {
	asset, err := s.GetAssetByID(userID, assetID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(&models.Asset{}, "id = ?", asset.ID).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ListAssetTypes returns the flat classification tree ordered by slug.
func (s *assetService) ListAssetTypes() ([]models.AssetType, error) {
	var types []models.AssetType
	if err := s.db.Order("slug ASC").Find(&types).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return types, nil
}

// deriveInstrumentID resolves the instrument from the chosen venue.
// Exactly one of listingID/tokenID must be set.
func deriveInstrumentID(tx *gorm.DB, listingID, tokenID *string) (string, error) {
	hasListing := listingID != nil && *listingID != ""
	hasToken := tokenID != nil && *tokenID != ""
	if hasListing == hasToken {
		return "", apperrors.ErrInvestmentTarget
	}

	if hasListing {
		var listing models.Listing
		if err := tx.Where("id = ?", *listingID).First(&listing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", apperrors.ErrListingNotFound
			}
			return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return listing.InstrumentID, nil
	}

	var token models.Token
	if err := tx.Where("id = ?", *tokenID).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrTokenNotFound
		}
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return token.InstrumentID, nil
}

// checkDetailPayload verifies that exactly one detail payload is present
// and that it matches the category.
func checkDetailPayload(category models.AssetCategory, inv *InvestmentDetailsInput, cash *CashDetailsInput, re *RealEstateDetailsInput, metal *MetalDetailsInput, coll *CollectibleDetailsInput, other *OtherDetailsInput) error {
	count := 0
	for _, set := range []bool{inv != nil, cash != nil, re != nil, metal != nil, coll != nil, other != nil} {
		if set {
			count++
		}
	}
	if count != 1 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Exactly one detail payload is required")
	}

	ok := false
	switch category {
	case models.AssetCategoryInvestment:
		ok = inv != nil
	case models.AssetCategoryCash:
		ok = cash != nil
	case models.AssetCategoryRealEstate:
		ok = re != nil
	case models.AssetCategoryPreciousMetal:
		ok = metal != nil
	case models.AssetCategoryCollectible:
		ok = coll != nil
	case models.AssetCategoryOther:
		ok = other != nil
	}
	if !ok {
		return apperrors.ErrDetailMismatch
	}
	return nil
}

// hasAnyDetailPayload reports whether an update carries a detail payload.
func hasAnyDetailPayload(inv *InvestmentDetailsInput, cash *CashDetailsInput, re *RealEstateDetailsInput, metal *MetalDetailsInput, coll *CollectibleDetailsInput, other *OtherDetailsInput) bool {
	return inv != nil || cash != nil || re != nil || metal != nil || coll != nil || other != nil
}

// validateMetalInput sanity-checks metal fields beyond binding.
func validateMetalInput(in *MetalDetailsInput) error {
	if in.Metal.CommodityName() == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown metal code")
	}
	if in.Purity.IsNegative() || in.Purity.GreaterThan(decimalOne) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Purity must be a fraction between 0 and 1")
	}
	if !in.WeightGrams.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Weight must be positive")
	}
	return nil
}

// wrapDetailError maps storage errors from detail writes.
func wrapDetailError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if isUniqueConstraintError(err) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Asset already has details")
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
