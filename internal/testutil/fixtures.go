package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"patrimo/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAccount creates a brokerage account denominated in USD.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string) *models.Account {
	t.Helper()
	return CreateTestAccountWithType(t, db, userID, models.AccountTypeBrokerage, "USD")
}

// CreateTestAccountWithType creates an account of the given type and base currency.
func CreateTestAccountWithType(t *testing.T, db *gorm.DB, userID string, accountType models.AccountType, currency string) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:       userID,
		Name:         fmt.Sprintf("Test Account %d", nextID()),
		Type:         accountType,
		BaseCurrency: currency,
		IsActive:     true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestInstrument creates an instrument of the given kind with a unique name.
func CreateTestInstrument(t *testing.T, db *gorm.DB, kind models.InstrumentKind) *models.Instrument {
	t.Helper()
	return CreateTestInstrumentWithName(t, db, kind, fmt.Sprintf("Test Instrument %d", nextID()))
}

// CreateTestInstrumentWithName creates an instrument with an exact name.
// Commodity valuation looks instruments up by (kind, name), so metal tests
// need names like "Gold".
func CreateTestInstrumentWithName(t *testing.T, db *gorm.DB, kind models.InstrumentKind, name string) *models.Instrument {
	t.Helper()

	instrument := &models.Instrument{
		Kind:     kind,
		Name:     name,
		Currency: "USD",
		Active:   true,
	}
	if err := db.Create(instrument).Error; err != nil {
		t.Fatalf("failed to create test instrument: %v", err)
	}
	return instrument
}

// CreateTestExchange creates an exchange with a unique MIC.
func CreateTestExchange(t *testing.T, db *gorm.DB) *models.Exchange {
	t.Helper()

	exchange := &models.Exchange{
		MIC:     fmt.Sprintf("X%03d", nextID()%1000),
		Name:    fmt.Sprintf("Test Exchange %d", nextID()),
		Country: "US",
	}
	if err := db.Create(exchange).Error; err != nil {
		t.Fatalf("failed to create test exchange: %v", err)
	}
	return exchange
}

// CreateTestListing attaches an instrument to an exchange under a unique ticker.
func CreateTestListing(t *testing.T, db *gorm.DB, instrumentID, exchangeID string) *models.Listing {
	t.Helper()

	listing := &models.Listing{
		InstrumentID: instrumentID,
		ExchangeID:   exchangeID,
		Ticker:       fmt.Sprintf("TST%d", nextID()),
	}
	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("failed to create test listing: %v", err)
	}
	return listing
}

// CreateTestNetwork creates a network with a unique code.
func CreateTestNetwork(t *testing.T, db *gorm.DB) *models.Network {
	t.Helper()

	network := &models.Network{
		Code: fmt.Sprintf("NET%d", nextID()),
		Name: fmt.Sprintf("Test Network %d", nextID()),
	}
	if err := db.Create(network).Error; err != nil {
		t.Fatalf("failed to create test network: %v", err)
	}
	return network
}

// CreateTestToken attaches an instrument to a network under a unique symbol.
// Pass nil for native coins without a contract address.
func CreateTestToken(t *testing.T, db *gorm.DB, instrumentID, networkID string, contractAddress *string) *models.Token {
	t.Helper()

	token := &models.Token{
		InstrumentID:    instrumentID,
		NetworkID:       networkID,
		Symbol:          fmt.Sprintf("TOK%d", nextID()),
		ContractAddress: contractAddress,
	}
	if err := db.Create(token).Error; err != nil {
		t.Fatalf("failed to create test token: %v", err)
	}
	return token
}

// CreateTestPriceSource creates a price source with a unique code.
func CreateTestPriceSource(t *testing.T, db *gorm.DB) *models.PriceSource {
	t.Helper()

	source := &models.PriceSource{
		Code: fmt.Sprintf("src%d", nextID()),
		Name: fmt.Sprintf("Test Source %d", nextID()),
	}
	if err := db.Create(source).Error; err != nil {
		t.Fatalf("failed to create test price source: %v", err)
	}
	return source
}

// CreateTestListingQuote records a quote targeting a listing.
func CreateTestListingQuote(t *testing.T, db *gorm.DB, sourceID, listingID string, ts time.Time, price decimal.Decimal, currency string) *models.Quote {
	t.Helper()

	quote := &models.Quote{
		SourceID:  sourceID,
		ListingID: &listingID,
		TS:        ts,
		Price:     price,
		Currency:  currency,
	}
	if err := db.Create(quote).Error; err != nil {
		t.Fatalf("failed to create test listing quote: %v", err)
	}
	return quote
}

// CreateTestTokenQuote records a quote targeting a token.
func CreateTestTokenQuote(t *testing.T, db *gorm.DB, sourceID, tokenID string, ts time.Time, price decimal.Decimal, currency string) *models.Quote {
	t.Helper()

	quote := &models.Quote{
		SourceID: sourceID,
		TokenID:  &tokenID,
		TS:       ts,
		Price:    price,
		Currency: currency,
	}
	if err := db.Create(quote).Error; err != nil {
		t.Fatalf("failed to create test token quote: %v", err)
	}
	return quote
}

// CreateTestInstrumentQuote records an instrument-level quote, such as a
// commodity spot price.
func CreateTestInstrumentQuote(t *testing.T, db *gorm.DB, sourceID, instrumentID string, ts time.Time, price decimal.Decimal, currency string) *models.Quote {
	t.Helper()

	quote := &models.Quote{
		SourceID:     sourceID,
		InstrumentID: &instrumentID,
		TS:           ts,
		Price:        price,
		Currency:     currency,
	}
	if err := db.Create(quote).Error; err != nil {
		t.Fatalf("failed to create test instrument quote: %v", err)
	}
	return quote
}

// CreateTestTransaction records a transaction against an asset.
func CreateTestTransaction(t *testing.T, db *gorm.DB, assetID string, txnType models.TxnType, amount decimal.Decimal, ts time.Time) *models.Transaction {
	t.Helper()

	txn := &models.Transaction{
		AssetID:   assetID,
		Timestamp: ts,
		TxnType:   txnType,
		Amount:    amount,
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return txn
}

// CreateTestAssetType creates an asset type with a unique slug.
func CreateTestAssetType(t *testing.T, db *gorm.DB) *models.AssetType {
	t.Helper()

	n := nextID()
	assetType := &models.AssetType{
		Name: fmt.Sprintf("Test Type %d", n),
		Slug: fmt.Sprintf("test-type-%d", n),
	}
	if err := db.Create(assetType).Error; err != nil {
		t.Fatalf("failed to create test asset type: %v", err)
	}
	return assetType
}
