package integration

import (
	"fmt"
	"net/http"
	"testing"
)

// assetValue hits the valuation endpoint and returns market_value and
// market_currency, either of which may be nil for an unpriced asset.
func assetValue(t *testing.T, app *testApp, token, assetID string) (interface{}, interface{}) {
	t.Helper()
	rec := app.request("GET", fmt.Sprintf("/api/v1/assets/%s/value", assetID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("value request failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["market_value"], result["market_currency"]
}

func TestValuationFlow_ListingQuotePicksLatest(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "latest@test.com", "password123")
	accountID := app.createAccount(t, token, "Brokerage", "BROKERAGE")

	instrumentID := app.createInstrument(t, "EQUITY", "Apple Inc.")
	exchangeID := app.createExchange(t, "XNAS", "NASDAQ")
	listingID := app.createListing(t, instrumentID, exchangeID, "AAPL")
	sourceID := app.createPriceSource(t, "test-feed", "Test Feed")

	rec := app.request("POST", "/api/v1/assets",
		fmt.Sprintf(`{"account_id":%q,"name":"AAPL","category":"INVESTMENT","investment":{"listing_id":%q}}`, accountID, listingID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create asset failed: %d %s", rec.Code, rec.Body.String())
	}
	assetID := parseJSON(t, rec)["asset"].(map[string]interface{})["id"].(string)

	// No quote yet: unpriced, not an error
	value, currency := assetValue(t, app, token, assetID)
	if value != nil || currency != nil {
		t.Errorf("expected nulls before any quote, got (%v, %v)", value, currency)
	}

	// Two observations; the strictly latest wins and passes through verbatim
	app.ingestQuote(t, sourceID, "listing_id", listingID, "2025-03-01T16:00:00Z", "100", "USD")
	app.ingestQuote(t, sourceID, "listing_id", listingID, "2025-03-02T16:00:00Z", "110", "USD")

	value, currency = assetValue(t, app, token, assetID)
	if value != "110" || currency != "USD" {
		t.Errorf("expected (110, USD), got (%v, %v)", value, currency)
	}

	// An older quote arriving later does not displace the latest
	app.ingestQuote(t, sourceID, "listing_id", listingID, "2025-02-01T16:00:00Z", "90", "USD")
	value, _ = assetValue(t, app, token, assetID)
	if value != "110" {
		t.Errorf("expected 110 after backfill, got %v", value)
	}
}

func TestValuationFlow_TokenQuotePassThrough(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "chain@test.com", "password123")
	accountID := app.createAccount(t, token, "Wallet", "WALLET")

	instrumentID := app.createInstrument(t, "CRYPTO", "Uniswap")
	networkID := app.createNetwork(t, "ETH", "Ethereum")
	tokenID := app.createToken(t, instrumentID, networkID, "UNI")
	sourceID := app.createPriceSource(t, "chain-feed", "Chain Feed")

	rec := app.request("POST", "/api/v1/assets",
		fmt.Sprintf(`{"account_id":%q,"name":"UNI Bag","category":"INVESTMENT","currency":"EUR","investment":{"token_id":%q}}`, accountID, tokenID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create asset failed: %d %s", rec.Code, rec.Body.String())
	}
	assetID := parseJSON(t, rec)["asset"].(map[string]interface{})["id"].(string)

	app.ingestQuote(t, sourceID, "token_id", tokenID, "2025-03-02T00:00:00Z", "7.35", "EUR")

	// The quote's own currency is reported, never converted
	value, currency := assetValue(t, app, token, assetID)
	if value != "7.35" || currency != "EUR" {
		t.Errorf("expected (7.35, EUR), got (%v, %v)", value, currency)
	}
}

func TestValuationFlow_GoldSpotConversion(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "gold@test.com", "password123")
	accountID := app.createAccount(t, token, "Vault", "OTHER")

	goldID := app.createInstrument(t, "COMMODITY", "Gold")
	sourceID := app.createPriceSource(t, "metal-feed", "Metal Feed")

	rec := app.request("POST", "/api/v1/assets",
		fmt.Sprintf(`{"account_id":%q,"name":"Gold Bars","category":"PRECIOUS_METAL","metal":{"metal":"GOLD","purity":"0.999","form":"bar","weight_grams":"100"}}`, accountID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create asset failed: %d %s", rec.Code, rec.Body.String())
	}
	assetID := parseJSON(t, rec)["asset"].(map[string]interface{})["id"].(string)

	// No spot quote for Gold yet
	value, currency := assetValue(t, app, token, assetID)
	if value != nil || currency != nil {
		t.Errorf("expected nulls before a spot quote, got (%v, %v)", value, currency)
	}

	// 2350.00 USD/ozt -> 75.554254 USD/g (6 dp), fine weight 99.9 g,
	// value 7547.87 USD (2 dp), all rounded half-up
	app.ingestQuote(t, sourceID, "instrument_id", goldID, "2025-03-02T00:00:00Z", "2350.00", "USD")
	value, currency = assetValue(t, app, token, assetID)
	if value != "7547.87" || currency != "USD" {
		t.Errorf("expected (7547.87, USD), got (%v, %v)", value, currency)
	}
}

func TestValuationFlow_SilverSpotConversion(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "silver@test.com", "password123")
	accountID := app.createAccount(t, token, "Vault", "OTHER")

	silverID := app.createInstrument(t, "COMMODITY", "Silver")
	sourceID := app.createPriceSource(t, "metal-feed", "Metal Feed")
	app.ingestQuote(t, sourceID, "instrument_id", silverID, "2025-03-02T00:00:00Z", "31.50", "EUR")

	rec := app.request("POST", "/api/v1/assets",
		fmt.Sprintf(`{"account_id":%q,"name":"Silver Coins","category":"PRECIOUS_METAL","metal":{"metal":"SILVER","purity":"0.925","form":"coin","weight_grams":"250.5"}}`, accountID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create asset failed: %d %s", rec.Code, rec.Body.String())
	}
	assetID := parseJSON(t, rec)["asset"].(map[string]interface{})["id"].(string)

	// 31.50/31.1034768 = 1.012749 EUR/g (6 dp), fine weight 231.713 g (3 dp),
	// value 234.67 EUR
	value, currency := assetValue(t, app, token, assetID)
	if value != "234.67" || currency != "EUR" {
		t.Errorf("expected (234.67, EUR), got (%v, %v)", value, currency)
	}
}

func TestValuationFlow_NeverPricedCategories(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "neverpriced@test.com", "password123")
	accountID := app.createAccount(t, token, "Mixed", "OTHER")

	cases := []struct {
		name string
		body string
	}{
		{"cash", fmt.Sprintf(`{"account_id":%q,"name":"Cash","category":"CASH","cash":{}}`, accountID)},
		{"real estate", fmt.Sprintf(`{"account_id":%q,"name":"Flat","category":"REAL_ESTATE","real_estate":{"address":"1 Main St","country":"DE"}}`, accountID)},
		{"collectible", fmt.Sprintf(`{"account_id":%q,"name":"Stamp","category":"COLLECTIBLE","collectible":{"year":1918}}`, accountID)},
		{"other", fmt.Sprintf(`{"account_id":%q,"name":"Piano","category":"OTHER","other":{"description":"upright"}}`, accountID)},
	}
	for _, tc := range cases {
		rec := app.request("POST", "/api/v1/assets", tc.body, token)
		if rec.Code != http.StatusCreated {
			t.Fatalf("%s: create failed: %d %s", tc.name, rec.Code, rec.Body.String())
		}
		assetID := parseJSON(t, rec)["asset"].(map[string]interface{})["id"].(string)

		// A transaction history never turns these into priced assets
		rec = app.request("POST", fmt.Sprintf("/api/v1/assets/%s/transactions", assetID),
			`{"txn_type":"ADJUSTMENT","amount":"1000"}`, token)
		if rec.Code != http.StatusCreated {
			t.Fatalf("%s: transaction failed: %d %s", tc.name, rec.Code, rec.Body.String())
		}

		value, currency := assetValue(t, app, token, assetID)
		if value != nil || currency != nil {
			t.Errorf("%s: expected nulls, got (%v, %v)", tc.name, value, currency)
		}
	}
}
