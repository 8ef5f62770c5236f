package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	apperrors "patrimo/internal/errors"
	"patrimo/internal/models"
	"patrimo/internal/pagination"
)

// catalogService handles the reference-data registry: instruments and the
// venues (listings, tokens) they trade on.
type catalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a new CatalogServicer.
func NewCatalogService(db *gorm.DB) CatalogServicer {
	return &catalogService{db: db}
}

// CreateInstrument registers a new instrument.
func (s *catalogService) CreateInstrument(kind models.InstrumentKind, name, isin, currency, sector string) (*models.Instrument, error) {
	switch kind {
	case models.InstrumentKindEquity, models.InstrumentKindETF, models.InstrumentKindCrypto, models.InstrumentKindCommodity:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown instrument kind")
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Name is required")
	}

	instrument := &models.Instrument{
		Kind:     kind,
		Name:     name,
		ISIN:     isin,
		Currency: currency,
		Sector:   sector,
		Active:   true,
	}
	if err := s.db.Create(instrument).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return instrument, nil
}

// GetInstrumentByID returns an instrument with its listings and tokens.
func (s *catalogService) GetInstrumentByID(id string) (*models.Instrument, error) {
	var instrument models.Instrument
	err := s.db.
		Preload("Listings").
		Preload("Listings.Exchange").
		Preload("Tokens").
		Preload("Tokens.Network").
		Where("id = ?", id).
		First(&instrument).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInstrumentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &instrument, nil
}

// ListInstruments returns a paginated instrument list ordered by name,
// optionally filtered by kind and a name/ISIN search term.
func (s *catalogService) ListInstruments(kind *models.InstrumentKind, search string, page pagination.PageRequest) (*pagination.PageResponse[models.Instrument], error) {
	page.Defaults()

	base := s.db.Model(&models.Instrument{})
	if kind != nil {
		base = base.Where("kind = ?", *kind)
	}
	if q := strings.TrimSpace(search); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		base = base.Where("LOWER(name) LIKE ? OR LOWER(isin) LIKE ?", like, like)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var instruments []models.Instrument
	if err := base.Order("name ASC").Scopes(pagination.Paginate(page)).Find(&instruments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(instruments, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// CreateExchange registers a trading venue keyed by its MIC.
func (s *catalogService) CreateExchange(mic, name, country, timezone string) (*models.Exchange, error) {
	mic = strings.ToUpper(strings.TrimSpace(mic))
	if mic == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "MIC is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Name is required")
	}

	exchange := &models.Exchange{MIC: mic, Name: name, Country: country, Timezone: timezone}
	if err := s.db.Create(exchange).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrDuplicateExchange
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return exchange, nil
}

// CreateNetwork registers a chain/network keyed by its code.
func (s *catalogService) CreateNetwork(code, name string) (*models.Network, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Code is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Name is required")
	}

	network := &models.Network{Code: code, Name: name}
	if err := s.db.Create(network).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrDuplicateNetwork
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return network, nil
}

// CreatePriceSource registers a quote provider keyed by its code.
func (s *catalogService) CreatePriceSource(code, name string) (*models.PriceSource, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Code is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Name is required")
	}

	source := &models.PriceSource{Code: code, Name: name}
	if err := s.db.Create(source).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrDuplicateSource
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return source, nil
}

// CreateListing attaches an instrument to an exchange under a ticker.
func (s *catalogService) CreateListing(instrumentID, exchangeID, ticker string, isPrimary bool) (*models.Listing, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Ticker is required")
	}
	if err := s.requireRow(&models.Instrument{}, instrumentID, apperrors.ErrInstrumentNotFound); err != nil {
		return nil, err
	}
	if err := s.requireRow(&models.Exchange{}, exchangeID, apperrors.ErrExchangeNotFound); err != nil {
		return nil, err
	}

	listing := &models.Listing{
		InstrumentID: instrumentID,
		ExchangeID:   exchangeID,
		Ticker:       ticker,
		IsPrimary:    isPrimary,
	}
	if err := s.db.Create(listing).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrDuplicateListing
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return listing, nil
}

// CreateToken attaches an instrument to a network under a symbol. The
// contract address is optional; native coins have none.
func (s *catalogService) CreateToken(instrumentID, networkID, symbol string, contractAddress *string) (*models.Token, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Symbol is required")
	}
	if err := s.requireRow(&models.Instrument{}, instrumentID, apperrors.ErrInstrumentNotFound); err != nil {
		return nil, err
	}
	if err := s.requireRow(&models.Network{}, networkID, apperrors.ErrNetworkNotFound); err != nil {
		return nil, err
	}
	if contractAddress != nil && strings.TrimSpace(*contractAddress) == "" {
		contractAddress = nil
	}

	token := &models.Token{
		InstrumentID:    instrumentID,
		NetworkID:       networkID,
		Symbol:          symbol,
		ContractAddress: contractAddress,
	}
	if err := s.db.Create(token).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrDuplicateToken
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return token, nil
}

// SearchListings powers the listing picker. Matches ticker, instrument name
// or exchange MIC, case-insensitively, ordered by ticker.
func (s *catalogService) SearchListings(req pagination.SearchRequest) (*pagination.SearchResponse, error) {
	req.Defaults()

	base := s.db.Model(&models.Listing{}).
		Joins("JOIN instruments ON instruments.id = listings.instrument_id AND instruments.deleted_at IS NULL").
		Joins("JOIN exchanges ON exchanges.id = listings.exchange_id AND exchanges.deleted_at IS NULL")
	if q := strings.TrimSpace(req.Q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		base = base.Where("LOWER(listings.ticker) LIKE ? OR LOWER(instruments.name) LIKE ? OR LOWER(exchanges.mic) LIKE ?", like, like, like)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var listings []models.Listing
	if err := base.
		Preload("Instrument").
		Preload("Exchange").
		Order("listings.ticker ASC").
		Offset(req.Offset()).
		Limit(pagination.SearchPageSize).
		Find(&listings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	results := make([]pagination.SearchResult, 0, len(listings))
	for _, l := range listings {
		results = append(results, pagination.SearchResult{ID: l.ID, Text: listingLabel(l)})
	}

	resp := pagination.NewSearchResponse(results, req.Page, totalItems)
	return &resp, nil
}

// SearchTokens powers the token picker. Matches symbol, instrument name,
// network code or contract address, case-insensitively, ordered by symbol.
func (s *catalogService) SearchTokens(req pagination.SearchRequest) (*pagination.SearchResponse, error) {
	req.Defaults()

	base := s.db.Model(&models.Token{}).
		Joins("JOIN instruments ON instruments.id = tokens.instrument_id AND instruments.deleted_at IS NULL").
		Joins("JOIN networks ON networks.id = tokens.network_id AND networks.deleted_at IS NULL")
	if q := strings.TrimSpace(req.Q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		base = base.Where(
			"LOWER(tokens.symbol) LIKE ? OR LOWER(instruments.name) LIKE ? OR LOWER(networks.code) LIKE ? OR LOWER(tokens.contract_address) LIKE ?",
			like, like, like, like,
		)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var tokens []models.Token
	if err := base.
		Preload("Instrument").
		Preload("Network").
		Order("tokens.symbol ASC").
		Offset(req.Offset()).
		Limit(pagination.SearchPageSize).
		Find(&tokens).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	results := make([]pagination.SearchResult, 0, len(tokens))
	for _, t := range tokens {
		results = append(results, pagination.SearchResult{ID: t.ID, Text: tokenLabel(t)})
	}

	resp := pagination.NewSearchResponse(results, req.Page, totalItems)
	return &resp, nil
}

// listingLabel renders the picker text, e.g. "AAPL — Apple Inc. @ XNAS".
func listingLabel(l models.Listing) string {
	return fmt.Sprintf("%s — %s @ %s", l.Ticker, l.Instrument.Name, l.Exchange.MIC)
}

// tokenLabel renders the picker text with a shortened contract address,
// e.g. "UNI — Uniswap @ ETH (0x1f9840a8…)".
func tokenLabel(t models.Token) string {
	label := fmt.Sprintf("%s — %s @ %s", t.Symbol, t.Instrument.Name, t.Network.Code)
	if t.ContractAddress != nil && *t.ContractAddress != "" {
		addr := *t.ContractAddress
		if len(addr) > 10 {
			addr = addr[:10]
		}
		label += fmt.Sprintf(" (%s…)", addr)
	}
	return label
}

// requireRow checks a catalog row exists by id.
func (s *catalogService) requireRow(model interface{}, id string, notFound *apperrors.AppError) error {
	var count int64
	if err := s.db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return notFound
	}
	return nil
}

// isUniqueConstraintError checks if a GORM error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // SQLite
		strings.Contains(msg, "duplicate key value violates unique constraint") // PostgreSQL
}
