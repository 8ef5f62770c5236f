package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "patrimo/internal/errors"
	"patrimo/internal/models"
	"patrimo/internal/pagination"
)

// quoteService handles quote storage and latest-price lookups.
type quoteService struct {
	db *gorm.DB
}

// NewQuoteService creates a new QuoteServicer.
func NewQuoteService(db *gorm.DB) QuoteServicer {
	return &quoteService{db: db}
}

// LatestForListing returns the most recent quote targeting a listing, or
// (nil, nil) when none exists. A missing price is a normal state, not an error.
func (s *quoteService) LatestForListing(listingID string) (*models.Quote, error) {
	return s.latest("listing_id = ?", listingID)
}

// LatestForToken returns the most recent quote targeting a token, or (nil, nil).
func (s *quoteService) LatestForToken(tokenID string) (*models.Quote, error) {
	return s.latest("token_id = ?", tokenID)
}

// LatestForInstrument returns the most recent quote targeting an instrument
// directly, or (nil, nil). Quotes attached to the instrument's listings or
// tokens do not count here.
func (s *quoteService) LatestForInstrument(instrumentID string) (*models.Quote, error) {
	return s.latest("instrument_id = ?", instrumentID)
}

// latest picks the newest quote for one target column. Equal timestamps are
// broken by id; ids are UUIDv7, so the later insert wins.
func (s *quoteService) latest(condition string, id string) (*models.Quote, error) {
	var quote models.Quote
	err := s.db.Where(condition, id).
		Order("ts DESC, id DESC").
		First(&quote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &quote, nil
}

// Ingest bulk-inserts quotes, skipping rows already recorded for the same
// source, target and timestamp. Returns the number of rows inserted; a bad
// row aborts the batch with the count inserted so far.
func (s *quoteService) Ingest(quotes []QuoteInput) (int, error) {
	if len(quotes) == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Quotes array is empty")
	}

	count := 0
	for _, in := range quotes {
		if err := s.verifyQuoteInput(in); err != nil {
			return count, err
		}

		quote := models.Quote{
			SourceID:     in.SourceID,
			InstrumentID: in.InstrumentID,
			ListingID:    in.ListingID,
			TokenID:      in.TokenID,
			TS:           in.TS,
			Price:        in.Price,
			Currency:     in.Currency,
		}

		query := s.db.Where("source_id = ? AND ts = ?", in.SourceID, in.TS)
		switch {
		case in.ListingID != nil && *in.ListingID != "":
			query = query.Where("listing_id = ?", *in.ListingID)
		case in.TokenID != nil && *in.TokenID != "":
			query = query.Where("token_id = ?", *in.TokenID)
		default:
			query = query.Where("instrument_id = ?", *in.InstrumentID)
		}

		result := query.FirstOrCreate(&quote)
		if result.Error != nil {
			return count, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
		}
		if result.RowsAffected > 0 {
			count++
		}
	}

	return count, nil
}

// verifyQuoteInput checks one ingest row: exactly one target, known source
// and target, positive price.
func (s *quoteService) verifyQuoteInput(in QuoteInput) error {
	targets := 0
	if in.InstrumentID != nil && *in.InstrumentID != "" {
		targets++
	}
	if in.ListingID != nil && *in.ListingID != "" {
		targets++
	}
	if in.TokenID != nil && *in.TokenID != "" {
		targets++
	}
	if targets != 1 {
		return apperrors.ErrQuoteTarget
	}

	if in.TS.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Timestamp is required")
	}
	if !in.Price.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Price must be positive")
	}
	if in.Currency == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Currency is required")
	}

	if err := s.requireRow(&models.PriceSource{}, in.SourceID, apperrors.ErrPriceSourceNotFound); err != nil {
		return err
	}
	switch {
	case in.ListingID != nil && *in.ListingID != "":
		return s.requireRow(&models.Listing{}, *in.ListingID, apperrors.ErrListingNotFound)
	case in.TokenID != nil && *in.TokenID != "":
		return s.requireRow(&models.Token{}, *in.TokenID, apperrors.ErrTokenNotFound)
	default:
		return s.requireRow(&models.Instrument{}, *in.InstrumentID, apperrors.ErrInstrumentNotFound)
	}
}

func (s *quoteService) requireRow(model interface{}, id string, notFound *apperrors.AppError) error {
	var count int64
	if err := s.db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return notFound
	}
	return nil
}

// GetQuoteHistory returns paginated quotes filtered by target and time range,
// newest first.
func (s *quoteService) GetQuoteHistory(filter QuoteHistoryFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Quote], error) {
	page.Defaults()

	base := s.db.Model(&models.Quote{})
	if filter.InstrumentID != nil {
		base = base.Where("instrument_id = ?", *filter.InstrumentID)
	}
	if filter.ListingID != nil {
		base = base.Where("listing_id = ?", *filter.ListingID)
	}
	if filter.TokenID != nil {
		base = base.Where("token_id = ?", *filter.TokenID)
	}
	if filter.From != nil {
		base = base.Where("ts >= ?", *filter.From)
	}
	if filter.To != nil {
		base = base.Where("ts <= ?", *filter.To)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var quotes []models.Quote
	if err := base.Order("ts DESC, id DESC").Scopes(pagination.Paginate(page)).Find(&quotes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(quotes, page.Page, page.PageSize, totalItems)
	return &result, nil
}
