package testutil_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"patrimo/internal/errors"
	"patrimo/internal/models"
	"patrimo/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{
		"users", "accounts", "asset_types", "assets", "transactions",
		"instruments", "exchanges", "listings", "networks", "tokens",
		"price_sources", "quotes", "audit_logs",
	} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an id")
	}

	account := testutil.CreateTestAccount(t, db, user.ID)
	if account.Type != models.AccountTypeBrokerage {
		t.Errorf("expected brokerage account type, got %s", account.Type)
	}

	instrument := testutil.CreateTestInstrumentWithName(t, db, models.InstrumentKindCommodity, "Gold")
	if instrument.Name != "Gold" {
		t.Errorf("expected name Gold, got %s", instrument.Name)
	}

	exchange := testutil.CreateTestExchange(t, db)
	listing := testutil.CreateTestListing(t, db, instrument.ID, exchange.ID)
	if listing.InstrumentID != instrument.ID {
		t.Errorf("expected listing to reference the instrument")
	}

	network := testutil.CreateTestNetwork(t, db)
	token := testutil.CreateTestToken(t, db, instrument.ID, network.ID, nil)
	if token.ContractAddress != nil {
		t.Error("expected native token to have no contract address")
	}

	source := testutil.CreateTestPriceSource(t, db)
	quote := testutil.CreateTestListingQuote(t, db, source.ID, listing.ID, time.Now().UTC(), decimal.NewFromInt(100), "USD")
	if quote.ListingID == nil || *quote.ListingID != listing.ID {
		t.Error("expected quote to target the listing")
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrAccountNotFound, "custom message")
	testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
}

func TestAssertDecimalEqual(t *testing.T) {
	testutil.AssertDecimalEqual(t, "99.9", decimal.RequireFromString("99.900"))
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
