package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"patrimo/internal/models"
	"patrimo/internal/pagination"
	"patrimo/internal/testutil"
)

// catalogForAssets creates the instrument/listing/token rows investment
// asset tests reference.
type catalogForAssets struct {
	instrument *models.Instrument
	listing    *models.Listing
	token      *models.Token
}

func newCatalogForAssets(t *testing.T, db *gorm.DB) *catalogForAssets {
	t.Helper()

	instrument := testutil.CreateTestInstrument(t, db, models.InstrumentKindEquity)
	exchange := testutil.CreateTestExchange(t, db)
	network := testutil.CreateTestNetwork(t, db)
	return &catalogForAssets{
		instrument: instrument,
		listing:    testutil.CreateTestListing(t, db, instrument.ID, exchange.ID),
		token:      testutil.CreateTestToken(t, db, instrument.ID, network.ID, nil),
	}
}

func TestCreateAsset(t *testing.T) {
	t.Run("cash_asset", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		asset, err := svc.CreateAsset(user.ID, account.ID, CreateAssetInput{
			Name:     "Checking",
			Category: models.AssetCategoryCash,
			Cash:     &CashDetailsInput{AccountRef: "DE89-3704"},
		})
		testutil.AssertNoError(t, err)

		if asset.Category != models.AssetCategoryCash {
			t.Errorf("expected category CASH, got %s", asset.Category)
		}
		if asset.Cash == nil {
			t.Fatal("expected cash details to be loaded")
		}
		if asset.Cash.AccountRef != "DE89-3704" {
			t.Errorf("expected account ref DE89-3704, got %s", asset.Cash.AccountRef)
		}
	})

	t.Run("second_cash_asset_in_account_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		_, err := svc.CreateAsset(user.ID, account.ID, CreateAssetInput{
			Name: "Checking", Category: models.AssetCategoryCash, Cash: &CashDetailsInput{},
		})
		testutil.AssertNoError(t, err)

		_, err = svc.CreateAsset(user.ID, account.ID, CreateAssetInput{
			Name: "Savings", Category: models.AssetCategoryCash, Cash: &CashDetailsInput{},
		})
		testutil.AssertAppError(t, err, "DUPLICATE_CASH_ASSET")
	})

	t.Run("cash_asset_per_account_not_global", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		user := testutil.CreateTestUser(t, db)
		first := testutil.CreateTestAccount(t, db, user.ID)
		second := testutil.CreateTestAccount(t, db, user.ID)

		_, err := svc.CreateAsset(user.ID, first.ID, CreateAssetInput{
			Name: "Checking", Category: models.AssetCategoryCash, Cash: &CashDetailsInput{},
		})
		testutil.AssertNoError(t, err)

		_, err = svc.CreateAsset(user.ID, second.ID, CreateAssetInput{
			Name: "Checking", Category: models.AssetCategoryCash, Cash: &CashDetailsInput{},
		})
		testutil.AssertNoError(t, err)
	})

	t.Run("investment_with_listing_derives_instrument", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		cat := newCatalogForAssets(t, db)

		asset, err := svc.CreateAsset(user.ID, account.ID, CreateAssetInput{
			Name:       "Shares",
			Category:   models.AssetCategoryInvestment,
			Investment: &InvestmentDetailsInput{ListingID: &cat.listing.ID},
		})
		testutil.AssertNoError(t, err)

		if asset.Investment == nil {
			t.Fatal("expected investment details to be loaded")
		}
		if asset.Investment.InstrumentID != cat.instrument.ID {
			t.Errorf("expected derived instrument %s, got %s", cat.instrument.ID, asset.Investment.InstrumentID)
		}
		if asset.Investment.TokenID != nil {
			t.Error("expected no token on a listing-backed investment")
		}
	})

	t.Run("investment_with_token_derives_instrument", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		cat := newCatalogForAssets(t, db)

		asset, err := svc.CreateAsset(user.ID, account.ID, CreateAssetInput{
			Name:       "Coins",
			Category:   models.AssetCategoryInvestment,
			Investment: &InvestmentDetailsInput{TokenID: &cat.token.ID},
		})
		testutil.AssertNoError(t, err)

		if asset.Investment == nil {
			t.Fatal("expected investment details to be loaded")
		}
		if asset.Investment.InstrumentID != cat.instrument.ID {
			t.Errorf("expected derived instrument %s, got %s", cat.instrument.ID, asset.Investment.InstrumentID)
		}
	})

	t.Run("investment_requires_exactly_one_target", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		cat := newCatalogForAssets(t, db)

		_, err := svc.CreateAsset(user.ID, account.ID, CreateAssetInput{
			Name:       "Neither",
			Category:   models.AssetCategoryInvestment,
			Investment: &InvestmentDetailsInput{},
		})
		testutil.AssertAppError(t, err, "INVESTMENT_TARGET")

		_, err = svc.CreateAsset(user.ID, account.ID, CreateAssetInput{
			Name:       "Both",
			Category:   models.AssetCategoryInvestment,
			Investment: &InvestmentDetailsInput{ListingID: &cat.listing.ID, TokenID: &cat.token.ID},
		})
		testutil.AssertAppError(t, err, "INVESTMENT_TARGET")
	})

	t.Run("unknown_listing_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		missing := "00000000-0000-0000-0000-000000000000"
		_, err := svc.CreateAsset(user.ID, account.ID, CreateAssetInput{
			Name:       "Shares",
			Category:   models.AssetCategoryInvestment,
			Investment: &InvestmentDetailsInput{ListingID: &missing},
		})
		testutil.AssertAppError(t, err, "LISTING_NOT_FOUND")
	})

	t.Run("detail_payload_must_match_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		_, err := svc.CreateAsset(user.ID, account.ID, CreateAssetInput{
			Name:     "Mismatched",
			Category: models.AssetCategoryInvestment,
			Cash:     &CashDetailsInput{},
		})
		testutil.AssertAppError(t, err, "DETAIL_MISMATCH")
	})

	t.Run("exactly_one_payload_required", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		_, err := svc.CreateAsset(user.ID, account.ID, CreateAssetInput{
			Name:     "No payload",
			Category: models.AssetCategoryCash,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateAsset(user.ID, account.ID, CreateAssetInput{
			Name:     "Two payloads",
			Category: models.AssetCategoryCash,
			Cash:     &CashDetailsInput{},
			Other:    &OtherDetailsInput{},
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("metal_validation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		_, err := svc.CreateAsset(user.ID, account.ID, CreateAssetInput{
			Name:     "Too pure",
			Category: models.AssetCategoryPreciousMetal,
			Metal: &MetalDetailsInput{
				Metal:       models.MetalGold,
				Purity:      decimal.RequireFromString("1.5"),
				WeightGrams: decimal.RequireFromString("100"),
			},
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateAsset(user.ID, account.ID, CreateAssetInput{
			Name:     "Weightless",
			Category: models.AssetCategoryPreciousMetal,
			Metal: &MetalDetailsInput{
				Metal:       models.MetalGold,
				Purity:      decimal.RequireFromString("0.999"),
				WeightGrams: decimal.Zero,
			},
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateAsset(user.ID, account.ID, CreateAssetInput{
			Name:     "Unknown metal",
			Category: models.AssetCategoryPreciousMetal,
			Metal: &MetalDetailsInput{
				Metal:       models.MetalCode("UNOBTAINIUM"),
				Purity:      decimal.RequireFromString("0.999"),
				WeightGrams: decimal.RequireFromString("100"),
			},
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("foreign_account_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, owner.ID)

		_, err := svc.CreateAsset(intruder.ID, account.ID, CreateAssetInput{
			Name: "Checking", Category: models.AssetCategoryCash, Cash: &CashDetailsInput{},
		})
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})

	t.Run("currency_defaults_to_account_base", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccountWithType(t, db, user.ID, models.AccountTypeBank, "EUR")

		asset, err := svc.CreateAsset(user.ID, account.ID, CreateAssetInput{
			Name: "Girokonto", Category: models.AssetCategoryCash, Cash: &CashDetailsInput{},
		})
		testutil.AssertNoError(t, err)

		if asset.Currency != "EUR" {
			t.Errorf("expected currency EUR, got %s", asset.Currency)
		}
	})

	t.Run("unknown_type_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		missing := "00000000-0000-0000-0000-000000000000"
		_, err := svc.CreateAsset(user.ID, account.ID, CreateAssetInput{
			Name: "Typed", Category: models.AssetCategoryCash, TypeID: &missing, Cash: &CashDetailsInput{},
		})
		testutil.AssertAppError(t, err, "ASSET_TYPE_NOT_FOUND")
	})
}

func TestGetUserAssets(t *testing.T) {
	t.Run("filters_by_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		user := testutil.CreateTestUser(t, db)
		first := testutil.CreateTestAccount(t, db, user.ID)
		second := testutil.CreateTestAccount(t, db, user.ID)

		for _, accountID := range []string{first.ID, second.ID} {
			_, err := svc.CreateAsset(user.ID, accountID, CreateAssetInput{
				Name: "Checking", Category: models.AssetCategoryCash, Cash: &CashDetailsInput{},
			})
			testutil.AssertNoError(t, err)
		}

		all, err := svc.GetUserAssets(user.ID, nil, pagination.PageRequest{Page: 1, PageSize: 20})
		testutil.AssertNoError(t, err)
		if all.TotalItems != 2 {
			t.Errorf("expected 2 assets total, got %d", all.TotalItems)
		}

		scoped, err := svc.GetUserAssets(user.ID, &first.ID, pagination.PageRequest{Page: 1, PageSize: 20})
		testutil.AssertNoError(t, err)
		if scoped.TotalItems != 1 {
			t.Errorf("expected 1 asset in account, got %d", scoped.TotalItems)
		}
	})

	t.Run("excludes_other_users", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, owner.ID)

		_, err := svc.CreateAsset(owner.ID, account.ID, CreateAssetInput{
			Name: "Checking", Category: models.AssetCategoryCash, Cash: &CashDetailsInput{},
		})
		testutil.AssertNoError(t, err)

		result, err := svc.GetUserAssets(other.ID, nil, pagination.PageRequest{Page: 1, PageSize: 20})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 0 {
			t.Errorf("expected no assets for other user, got %d", result.TotalItems)
		}
	})
}

func TestGetAssetByID(t *testing.T) {
	t.Run("loads_details", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		cat := newCatalogForAssets(t, db)

		created, err := svc.CreateAsset(user.ID, account.ID, CreateAssetInput{
			Name:       "Shares",
			Category:   models.AssetCategoryInvestment,
			Investment: &InvestmentDetailsInput{ListingID: &cat.listing.ID},
		})
		testutil.AssertNoError(t, err)

		asset, err := svc.GetAssetByID(user.ID, created.ID)
		testutil.AssertNoError(t, err)

		if asset.Investment == nil || asset.Investment.Instrument.ID == "" {
			t.Fatal("expected investment details with instrument loaded")
		}
		if asset.Investment.Instrument.ID != cat.instrument.ID {
			t.Errorf("expected instrument %s, got %s", cat.instrument.ID, asset.Investment.Instrument.ID)
		}
	})

	t.Run("foreign_asset_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, owner.ID)

		created, err := svc.CreateAsset(owner.ID, account.ID, CreateAssetInput{
			Name: "Checking", Category: models.AssetCategoryCash, Cash: &CashDetailsInput{},
		})
		testutil.AssertNoError(t, err)

		_, err = svc.GetAssetByID(intruder.ID, created.ID)
		testutil.AssertAppError(t, err, "ASSET_NOT_FOUND")
	})
}

func TestUpdateAsset(t *testing.T) {
	t.Run("renames_and_deactivates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		created, err := svc.CreateAsset(user.ID, account.ID, CreateAssetInput{
			Name: "Checking", Category: models.AssetCategoryCash, Cash: &CashDetailsInput{},
		})
		testutil.AssertNoError(t, err)

		name := "Main Checking"
		inactive := false
		updated, err := svc.UpdateAsset(user.ID, created.ID, UpdateAssetInput{Name: &name, IsActive: &inactive})
		testutil.AssertNoError(t, err)

		if updated.Name != "Main Checking" {
			t.Errorf("expected renamed asset, got %s", updated.Name)
		}
		if updated.IsActive {
			t.Error("expected asset to be inactive")
		}
	})

	t.Run("switching_listing_to_token_rederives_instrument", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		cat := newCatalogForAssets(t, db)

		// A second instrument reachable only through its token.
		otherInstrument := testutil.CreateTestInstrument(t, db, models.InstrumentKindCrypto)
		network := testutil.CreateTestNetwork(t, db)
		otherToken := testutil.CreateTestToken(t, db, otherInstrument.ID, network.ID, nil)

		created, err := svc.CreateAsset(user.ID, account.ID, CreateAssetInput{
			Name:       "Holding",
			Category:   models.AssetCategoryInvestment,
			Investment: &InvestmentDetailsInput{ListingID: &cat.listing.ID},
		})
		testutil.AssertNoError(t, err)

		updated, err := svc.UpdateAsset(user.ID, created.ID, UpdateAssetInput{
			Investment: &InvestmentDetailsInput{TokenID: &otherToken.ID},
		})
		testutil.AssertNoError(t, err)

		if updated.Investment.InstrumentID != otherInstrument.ID {
			t.Errorf("expected re-derived instrument %s, got %s", otherInstrument.ID, updated.Investment.InstrumentID)
		}
		if updated.Investment.ListingID != nil {
			t.Error("expected listing to be cleared")
		}
	})

	t.Run("mismatched_payload_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		cat := newCatalogForAssets(t, db)

		created, err := svc.CreateAsset(user.ID, account.ID, CreateAssetInput{
			Name: "Checking", Category: models.AssetCategoryCash, Cash: &CashDetailsInput{},
		})
		testutil.AssertNoError(t, err)

		_, err = svc.UpdateAsset(user.ID, created.ID, UpdateAssetInput{
			Investment: &InvestmentDetailsInput{ListingID: &cat.listing.ID},
		})
		testutil.AssertAppError(t, err, "DETAIL_MISMATCH")
	})
}

func TestDeleteAsset(t *testing.T) {
	t.Run("soft_deletes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		created, err := svc.CreateAsset(user.ID, account.ID, CreateAssetInput{
			Name: "Checking", Category: models.AssetCategoryCash, Cash: &CashDetailsInput{},
		})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.DeleteAsset(user.ID, created.ID))

		_, err = svc.GetAssetByID(user.ID, created.ID)
		testutil.AssertAppError(t, err, "ASSET_NOT_FOUND")
	})

	t.Run("frees_the_cash_slot", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		created, err := svc.CreateAsset(user.ID, account.ID, CreateAssetInput{
			Name: "Checking", Category: models.AssetCategoryCash, Cash: &CashDetailsInput{},
		})
		testutil.AssertNoError(t, err)
		testutil.AssertNoError(t, svc.DeleteAsset(user.ID, created.ID))

		_, err = svc.CreateAsset(user.ID, account.ID, CreateAssetInput{
			Name: "New Checking", Category: models.AssetCategoryCash, Cash: &CashDetailsInput{},
		})
		testutil.AssertNoError(t, err)
	})
}

func TestListAssetTypes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAssetService(db)

	child := testutil.CreateTestAssetType(t, db)
	parent := testutil.CreateTestAssetType(t, db)
	child.ParentID = &parent.ID
	if err := db.Save(child).Error; err != nil {
		t.Fatalf("failed to link asset types: %v", err)
	}

	types, err := svc.ListAssetTypes()
	testutil.AssertNoError(t, err)

	if len(types) != 2 {
		t.Fatalf("expected 2 asset types, got %d", len(types))
	}
	for i := 1; i < len(types); i++ {
		if types[i-1].Slug > types[i].Slug {
			t.Errorf("expected slugs in order, got %s before %s", types[i-1].Slug, types[i].Slug)
		}
	}
}
