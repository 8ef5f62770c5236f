package integration

import (
	"fmt"
	"net/http"
	"testing"
)

// quoteFixture bootstraps the catalog rows a quote needs: a source, an
// equity with a listing, and a commodity priced at the instrument level.
type quoteFixture struct {
	sourceID     string
	instrumentID string
	listingID    string
	commodityID  string
}

func setupQuoteFixture(t *testing.T, app *testApp) quoteFixture {
	t.Helper()
	instrumentID := app.createInstrument(t, "EQUITY", "Apple Inc.")
	exchangeID := app.createExchange(t, "XNAS", "NASDAQ")
	return quoteFixture{
		sourceID:     app.createPriceSource(t, "test-feed", "Test Feed"),
		instrumentID: instrumentID,
		listingID:    app.createListing(t, instrumentID, exchangeID, "AAPL"),
		commodityID:  app.createInstrument(t, "COMMODITY", "Gold"),
	}
}

func TestQuoteFlow_IngestBatchAndHistory(t *testing.T) {
	app := setupApp(t)
	fx := setupQuoteFixture(t, app)

	body := fmt.Sprintf(`{"quotes":[
		{"source_id":%q,"listing_id":%q,"ts":"2025-03-01T16:00:00Z","price":"178.50","currency":"USD"},
		{"source_id":%q,"listing_id":%q,"ts":"2025-03-02T16:00:00Z","price":"181.20","currency":"USD"},
		{"source_id":%q,"instrument_id":%q,"ts":"2025-03-02T16:00:00Z","price":"2350.00","currency":"USD"}
	]}`, fx.sourceID, fx.listingID, fx.sourceID, fx.listingID, fx.sourceID, fx.commodityID)
	rec := app.pipelineRequest("POST", "/api/v1/pipeline/quotes", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := parseJSON(t, rec)["ingested"].(float64); got != 3 {
		t.Fatalf("expected 3 ingested, got %.0f", got)
	}

	// History filtered by listing, newest first
	rec = app.pipelineRequest("GET", "/api/v1/pipeline/quotes/history?listing_id="+fx.listingID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	history := parseJSON(t, rec)
	if history["total_items"].(float64) != 2 {
		t.Fatalf("expected 2 listing quotes, got %.0f", history["total_items"].(float64))
	}
	items := history["data"].([]interface{})
	first := items[0].(map[string]interface{})
	if first["price"] != "181.2" {
		t.Errorf("expected newest quote first (181.2), got %v", first["price"])
	}

	// Time-range filter cuts off the newer observation
	rec = app.pipelineRequest("GET",
		"/api/v1/pipeline/quotes/history?listing_id="+fx.listingID+"&to=2025-03-01T23:59:59Z", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := parseJSON(t, rec)["total_items"].(float64); got != 1 {
		t.Errorf("expected 1 quote up to March 1, got %.0f", got)
	}
}

func TestQuoteFlow_ReingestSkipsRecordedRows(t *testing.T) {
	app := setupApp(t)
	fx := setupQuoteFixture(t, app)

	body := fmt.Sprintf(`{"quotes":[
		{"source_id":%q,"listing_id":%q,"ts":"2025-03-01T16:00:00Z","price":"178.50","currency":"USD"},
		{"source_id":%q,"instrument_id":%q,"ts":"2025-03-01T16:00:00Z","price":"2350.00","currency":"USD"}
	]}`, fx.sourceID, fx.listingID, fx.sourceID, fx.commodityID)

	rec := app.pipelineRequest("POST", "/api/v1/pipeline/quotes", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first ingest failed: %d %s", rec.Code, rec.Body.String())
	}
	if got := parseJSON(t, rec)["ingested"].(float64); got != 2 {
		t.Fatalf("expected 2 ingested, got %.0f", got)
	}

	// Same source, targets and timestamps: everything is skipped
	rec = app.pipelineRequest("POST", "/api/v1/pipeline/quotes", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("re-ingest failed: %d %s", rec.Code, rec.Body.String())
	}
	if got := parseJSON(t, rec)["ingested"].(float64); got != 0 {
		t.Errorf("expected 0 ingested on replay, got %.0f", got)
	}
}

func TestQuoteFlow_TargetValidation(t *testing.T) {
	app := setupApp(t)
	fx := setupQuoteFixture(t, app)

	cases := []struct {
		name   string
		quote  string
		status int
		code   string
	}{
		{
			name:   "no target",
			quote:  fmt.Sprintf(`{"source_id":%q,"ts":"2025-03-01","price":"1","currency":"USD"}`, fx.sourceID),
			status: http.StatusBadRequest,
			code:   "QUOTE_TARGET",
		},
		{
			name: "two targets",
			quote: fmt.Sprintf(`{"source_id":%q,"listing_id":%q,"instrument_id":%q,"ts":"2025-03-01","price":"1","currency":"USD"}`,
				fx.sourceID, fx.listingID, fx.commodityID),
			status: http.StatusBadRequest,
			code:   "QUOTE_TARGET",
		},
		{
			name: "unknown source",
			quote: fmt.Sprintf(`{"source_id":"11111111-2222-7333-8444-555555555555","listing_id":%q,"ts":"2025-03-01","price":"1","currency":"USD"}`,
				fx.listingID),
			status: http.StatusNotFound,
			code:   "PRICE_SOURCE_NOT_FOUND",
		},
		{
			name: "unknown listing",
			quote: fmt.Sprintf(`{"source_id":%q,"listing_id":"11111111-2222-7333-8444-555555555555","ts":"2025-03-01","price":"1","currency":"USD"}`,
				fx.sourceID),
			status: http.StatusNotFound,
			code:   "LISTING_NOT_FOUND",
		},
		{
			name: "non-positive price",
			quote: fmt.Sprintf(`{"source_id":%q,"listing_id":%q,"ts":"2025-03-01","price":"-1","currency":"USD"}`,
				fx.sourceID, fx.listingID),
			status: http.StatusBadRequest,
			code:   "INVALID_INPUT",
		},
	}
	for _, tc := range cases {
		rec := app.pipelineRequest("POST", "/api/v1/pipeline/quotes", `{"quotes":[`+tc.quote+`]}`)
		if rec.Code != tc.status {
			t.Errorf("%s: expected %d, got %d: %s", tc.name, tc.status, rec.Code, rec.Body.String())
			continue
		}
		errObj := parseJSON(t, rec)["error"].(map[string]interface{})
		if errObj["code"] != tc.code {
			t.Errorf("%s: expected %s, got %v", tc.name, tc.code, errObj["code"])
		}
	}

	// A bad row aborts the rest of the batch
	body := fmt.Sprintf(`{"quotes":[
		{"source_id":%q,"listing_id":%q,"ts":"2025-04-01T00:00:00Z","price":"10","currency":"USD"},
		{"source_id":%q,"ts":"2025-04-01T00:00:00Z","price":"10","currency":"USD"}
	]}`, fx.sourceID, fx.listingID, fx.sourceID)
	rec := app.pipelineRequest("POST", "/api/v1/pipeline/quotes", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for batch with a bad row, got %d: %s", rec.Code, rec.Body.String())
	}
}
