package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"patrimo/internal/models"
	"patrimo/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	RecordLogin(userID string) error
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(userID, name string, accountType models.AccountType, baseCurrency, institution, accountRef string) (*models.Account, error)
	GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	UpdateAccount(userID, accountID string, name, institution, accountRef *string, isActive *bool) (*models.Account, error)
}

// InvestmentDetailsInput is the caller-facing payload for an INVESTMENT
// asset. The instrument is never part of it; it is derived from the
// chosen listing or token.
type InvestmentDetailsInput struct {
	ListingID *string `json:"listing_id,omitempty"`
	TokenID   *string `json:"token_id,omitempty"`
	Memo      string  `json:"memo,omitempty"`
}

// CashDetailsInput is the payload for a CASH asset.
type CashDetailsInput struct {
	AccountRef string `json:"account_ref,omitempty"`
}

// RealEstateDetailsInput is the payload for a REAL_ESTATE asset.
type RealEstateDetailsInput struct {
	Address     string              `json:"address,omitempty"`
	Country     string              `json:"country,omitempty" binding:"omitempty,len=2"`
	CadastralID string              `json:"cadastral_id,omitempty"`
	AreaSqm     decimal.NullDecimal `json:"area_sqm,omitempty"`
}

// MetalDetailsInput is the payload for a PRECIOUS_METAL asset.
type MetalDetailsInput struct {
	Metal       models.MetalCode `json:"metal" binding:"required,metal_code"`
	Purity      decimal.Decimal  `json:"purity" binding:"required"`
	Form        string           `json:"form,omitempty"`
	WeightGrams decimal.Decimal  `json:"weight_grams" binding:"required"`
}

// CollectibleDetailsInput is the payload for a COLLECTIBLE asset.
type CollectibleDetailsInput struct {
	Category      string `json:"category,omitempty"`
	Year          int    `json:"year,omitempty"`
	CertificateID string `json:"certificate_id,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// OtherDetailsInput is the payload for an OTHER asset.
type OtherDetailsInput struct {
	Description string `json:"description,omitempty"`
}

// CreateAssetInput carries an asset's base fields plus exactly one detail
// payload matching Category.
type CreateAssetInput struct {
	Name     string
	Category models.AssetCategory
	TypeID   *string
	Currency string
	Extra    datatypes.JSON

	Investment  *InvestmentDetailsInput
	Cash        *CashDetailsInput
	RealEstate  *RealEstateDetailsInput
	Metal       *MetalDetailsInput
	Collectible *CollectibleDetailsInput
	Other       *OtherDetailsInput
}

// UpdateAssetInput carries optional base-field changes plus an optional
// replacement detail payload, which must match the asset's category.
// The category itself is immutable.
type UpdateAssetInput struct {
	Name     *string
	TypeID   *string
	IsActive *bool
	Extra    datatypes.JSON

	Investment  *InvestmentDetailsInput
	Cash        *CashDetailsInput
	RealEstate  *RealEstateDetailsInput
	Metal       *MetalDetailsInput
	Collectible *CollectibleDetailsInput
	Other       *OtherDetailsInput
}

// AssetServicer defines the contract for asset-related business logic.
type AssetServicer interface {
	CreateAsset(userID, accountID string, input CreateAssetInput) (*models.Asset, error)
	GetUserAssets(userID string, accountID *string, page pagination.PageRequest) (*pagination.PageResponse[models.Asset], error)
	GetAssetByID(userID, assetID string) (*models.Asset, error)
	UpdateAsset(userID, assetID string, input UpdateAssetInput) (*models.Asset, error)
	DeleteAsset(userID, assetID string) error
	ListAssetTypes() ([]models.AssetType, error)
}

// CreateTransactionInput is the payload for recording a cash movement.
type CreateTransactionInput struct {
	Timestamp time.Time
	TxnType   models.TxnType
	Quantity  decimal.NullDecimal
	Amount    decimal.Decimal
	Fee       decimal.Decimal
	Memo      string
}

// UpdateTransactionInput carries optional changes to a transaction.
type UpdateTransactionInput struct {
	Timestamp *time.Time
	TxnType   *models.TxnType
	Quantity  *decimal.NullDecimal
	Amount    *decimal.Decimal
	Fee       *decimal.Decimal
	Memo      *string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID, assetID string, input CreateTransactionInput) (*models.Transaction, error)
	GetAssetTransactions(userID, assetID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, txnID string) (*models.Transaction, error)
	UpdateTransaction(userID, txnID string, input UpdateTransactionInput) (*models.Transaction, error)
	DeleteTransaction(userID, txnID string) error
}

// CatalogServicer defines the contract for catalog registration and search.
type CatalogServicer interface {
	CreateInstrument(kind models.InstrumentKind, name, isin, currency, sector string) (*models.Instrument, error)
	GetInstrumentByID(id string) (*models.Instrument, error)
	ListInstruments(kind *models.InstrumentKind, search string, page pagination.PageRequest) (*pagination.PageResponse[models.Instrument], error)
	CreateExchange(mic, name, country, timezone string) (*models.Exchange, error)
	CreateNetwork(code, name string) (*models.Network, error)
	CreatePriceSource(code, name string) (*models.PriceSource, error)
	CreateListing(instrumentID, exchangeID, ticker string, isPrimary bool) (*models.Listing, error)
	CreateToken(instrumentID, networkID, symbol string, contractAddress *string) (*models.Token, error)
	SearchListings(req pagination.SearchRequest) (*pagination.SearchResponse, error)
	SearchTokens(req pagination.SearchRequest) (*pagination.SearchResponse, error)
}

// QuoteInput is a single observation in a pipeline ingest batch.
type QuoteInput struct {
	SourceID     string
	InstrumentID *string
	ListingID    *string
	TokenID      *string
	TS           time.Time
	Price        decimal.Decimal
	Currency     string
}

// QuoteHistoryFilter narrows a quote history query to one target and an
// optional time window.
type QuoteHistoryFilter struct {
	InstrumentID *string
	ListingID    *string
	TokenID      *string
	From         *time.Time
	To           *time.Time
}

// QuoteServicer defines the contract for quote ingestion and lookup.
// The Latest* methods return (nil, nil) when no quote exists for the
// target; absence of a price is not an error.
type QuoteServicer interface {
	LatestForListing(listingID string) (*models.Quote, error)
	LatestForToken(tokenID string) (*models.Quote, error)
	LatestForInstrument(instrumentID string) (*models.Quote, error)
	Ingest(quotes []QuoteInput) (int, error)
	GetQuoteHistory(filter QuoteHistoryFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Quote], error)
}

// MarketValue is a priced asset value in the quote's currency.
type MarketValue struct {
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

// ValuationServicer computes point-in-time market values. A nil
// *MarketValue with a nil error means the asset is not priced; callers
// must treat that as a normal outcome, not a failure.
type ValuationServicer interface {
	MarketValue(asset *models.Asset) (*MarketValue, error)
}

// AssetRow is one asset's line in the portfolio overview.
type AssetRow struct {
	AssetID        string               `json:"asset_id"`
	Name           string               `json:"name"`
	Category       models.AssetCategory `json:"category"`
	Currency       string               `json:"currency"`
	Balance        decimal.Decimal      `json:"balance"`
	BalanceDisplay string               `json:"balance_display"`
	MarketValue    *decimal.Decimal     `json:"market_value"`
	MarketCurrency *string              `json:"market_currency"`
	MarketDisplay  *string              `json:"market_display,omitempty"`
}

// AccountGroup is one account's section in the portfolio overview, with
// per-currency totals. Balance and market totals are independent buckets;
// amounts in different currencies are never converted or mixed.
type AccountGroup struct {
	AccountID            string                     `json:"account_id"`
	Name                 string                     `json:"name"`
	Type                 models.AccountType         `json:"type"`
	Assets               []AssetRow                 `json:"assets"`
	TotalsBalance        map[string]decimal.Decimal `json:"totals_balance"`
	TotalsMarket         map[string]decimal.Decimal `json:"totals_market"`
	TotalsBalanceDisplay map[string]string          `json:"totals_balance_display"`
	TotalsMarketDisplay  map[string]string          `json:"totals_market_display"`
}

// PortfolioOverview is the full overview: accounts ordered by name, assets
// ordered by name within each account, plus grand totals per currency.
type PortfolioOverview struct {
	Accounts             []AccountGroup             `json:"accounts"`
	TotalsBalance        map[string]decimal.Decimal `json:"totals_balance"`
	TotalsMarket         map[string]decimal.Decimal `json:"totals_market"`
	TotalsBalanceDisplay map[string]string          `json:"totals_balance_display"`
	TotalsMarketDisplay  map[string]string          `json:"totals_market_display"`
}

// OverviewServicer defines the contract for the portfolio overview.
type OverviewServicer interface {
	PortfolioOverview(userID string) (*PortfolioOverview, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
