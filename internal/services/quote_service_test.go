package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"patrimo/internal/models"
	"patrimo/internal/pagination"
	"patrimo/internal/testutil"
)

// quoteFixture creates the catalog rows that quote tests target.
type quoteFixture struct {
	source     *models.PriceSource
	instrument *models.Instrument
	listing    *models.Listing
	token      *models.Token
}

func newQuoteFixture(t *testing.T, db *gorm.DB) *quoteFixture {
	t.Helper()

	instrument := testutil.CreateTestInstrument(t, db, models.InstrumentKindEquity)
	exchange := testutil.CreateTestExchange(t, db)
	network := testutil.CreateTestNetwork(t, db)
	return &quoteFixture{
		source:     testutil.CreateTestPriceSource(t, db),
		instrument: instrument,
		listing:    testutil.CreateTestListing(t, db, instrument.ID, exchange.ID),
		token:      testutil.CreateTestToken(t, db, instrument.ID, network.ID, nil),
	}
}

func TestLatestQuoteLookups(t *testing.T) {
	base := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)

	t.Run("none_recorded_returns_nil_not_error", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewQuoteService(db)
		f := newQuoteFixture(t, db)

		quote, err := svc.LatestForListing(f.listing.ID)
		testutil.AssertNoError(t, err)
		if quote != nil {
			t.Errorf("expected nil quote, got price %s", quote.Price)
		}
	})

	t.Run("latest_for_listing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewQuoteService(db)
		f := newQuoteFixture(t, db)

		testutil.CreateTestListingQuote(t, db, f.source.ID, f.listing.ID, base, decimal.RequireFromString("100.10"), "USD")
		testutil.CreateTestListingQuote(t, db, f.source.ID, f.listing.ID, base.Add(2*time.Hour), decimal.RequireFromString("101.55"), "USD")
		testutil.CreateTestListingQuote(t, db, f.source.ID, f.listing.ID, base.Add(time.Hour), decimal.RequireFromString("100.80"), "USD")

		quote, err := svc.LatestForListing(f.listing.ID)
		testutil.AssertNoError(t, err)
		if quote == nil {
			t.Fatal("expected a quote, got nil")
		}
		testutil.AssertDecimalEqual(t, "101.55", quote.Price)
	})

	t.Run("latest_for_token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewQuoteService(db)
		f := newQuoteFixture(t, db)

		testutil.CreateTestTokenQuote(t, db, f.source.ID, f.token.ID, base, decimal.RequireFromString("3100.42"), "USD")
		testutil.CreateTestTokenQuote(t, db, f.source.ID, f.token.ID, base.Add(time.Minute), decimal.RequireFromString("3099.87"), "USD")

		quote, err := svc.LatestForToken(f.token.ID)
		testutil.AssertNoError(t, err)
		if quote == nil {
			t.Fatal("expected a quote, got nil")
		}
		testutil.AssertDecimalEqual(t, "3099.87", quote.Price)
	})

	t.Run("instrument_lookup_ignores_venue_quotes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewQuoteService(db)
		f := newQuoteFixture(t, db)

		testutil.CreateTestListingQuote(t, db, f.source.ID, f.listing.ID, base, decimal.RequireFromString("100"), "USD")
		testutil.CreateTestTokenQuote(t, db, f.source.ID, f.token.ID, base, decimal.RequireFromString("200"), "USD")

		quote, err := svc.LatestForInstrument(f.instrument.ID)
		testutil.AssertNoError(t, err)
		if quote != nil {
			t.Errorf("expected nil, got price %s targeting the instrument", quote.Price)
		}
	})

	t.Run("equal_timestamps_break_by_id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewQuoteService(db)
		f := newQuoteFixture(t, db)
		other := testutil.CreateTestPriceSource(t, db)

		testutil.CreateTestListingQuote(t, db, f.source.ID, f.listing.ID, base, decimal.RequireFromString("99.95"), "USD")
		later := testutil.CreateTestListingQuote(t, db, other.ID, f.listing.ID, base, decimal.RequireFromString("100.05"), "USD")

		quote, err := svc.LatestForListing(f.listing.ID)
		testutil.AssertNoError(t, err)
		if quote == nil {
			t.Fatal("expected a quote, got nil")
		}
		if quote.ID != later.ID {
			t.Errorf("expected the later insert %s to win, got %s", later.ID, quote.ID)
		}
	})
}

func TestIngestQuotes(t *testing.T) {
	base := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)

	t.Run("valid_bulk_insert", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewQuoteService(db)
		f := newQuoteFixture(t, db)

		count, err := svc.Ingest([]QuoteInput{
			{SourceID: f.source.ID, ListingID: &f.listing.ID, TS: base, Price: decimal.RequireFromString("150.00"), Currency: "USD"},
			{SourceID: f.source.ID, TokenID: &f.token.ID, TS: base, Price: decimal.RequireFromString("3100.42"), Currency: "USD"},
			{SourceID: f.source.ID, InstrumentID: &f.instrument.ID, TS: base, Price: decimal.RequireFromString("149.80"), Currency: "USD"},
		})
		testutil.AssertNoError(t, err)
		if count != 3 {
			t.Errorf("expected 3 quotes recorded, got %d", count)
		}

		var dbCount int64
		db.Model(&models.Quote{}).Count(&dbCount)
		if dbCount != 3 {
			t.Errorf("expected 3 rows in DB, got %d", dbCount)
		}
	})

	t.Run("idempotent_retry", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewQuoteService(db)
		f := newQuoteFixture(t, db)

		batch := []QuoteInput{
			{SourceID: f.source.ID, ListingID: &f.listing.ID, TS: base, Price: decimal.RequireFromString("150.00"), Currency: "USD"},
		}

		count1, err := svc.Ingest(batch)
		testutil.AssertNoError(t, err)
		if count1 != 1 {
			t.Errorf("expected 1 on first insert, got %d", count1)
		}

		count2, err := svc.Ingest(batch)
		testutil.AssertNoError(t, err)
		if count2 != 0 {
			t.Errorf("expected 0 on duplicate insert, got %d", count2)
		}

		var dbCount int64
		db.Model(&models.Quote{}).Count(&dbCount)
		if dbCount != 1 {
			t.Errorf("expected 1 row in DB after retry, got %d", dbCount)
		}
	})

	t.Run("instrument_target_retry_is_idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewQuoteService(db)
		f := newQuoteFixture(t, db)

		batch := []QuoteInput{
			{SourceID: f.source.ID, InstrumentID: &f.instrument.ID, TS: base, Price: decimal.RequireFromString("2350.00"), Currency: "USD"},
		}

		_, err := svc.Ingest(batch)
		testutil.AssertNoError(t, err)
		count2, err := svc.Ingest(batch)
		testutil.AssertNoError(t, err)
		if count2 != 0 {
			t.Errorf("expected 0 on duplicate instrument quote, got %d", count2)
		}
	})

	t.Run("multiple_targets_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewQuoteService(db)
		f := newQuoteFixture(t, db)

		_, err := svc.Ingest([]QuoteInput{
			{SourceID: f.source.ID, ListingID: &f.listing.ID, TokenID: &f.token.ID, TS: base, Price: decimal.RequireFromString("1"), Currency: "USD"},
		})
		testutil.AssertAppError(t, err, "QUOTE_TARGET")
	})

	t.Run("no_target_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewQuoteService(db)
		f := newQuoteFixture(t, db)

		_, err := svc.Ingest([]QuoteInput{
			{SourceID: f.source.ID, TS: base, Price: decimal.RequireFromString("1"), Currency: "USD"},
		})
		testutil.AssertAppError(t, err, "QUOTE_TARGET")
	})

	t.Run("unknown_source_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewQuoteService(db)
		f := newQuoteFixture(t, db)

		_, err := svc.Ingest([]QuoteInput{
			{SourceID: "00000000-0000-0000-0000-000000000000", ListingID: &f.listing.ID, TS: base, Price: decimal.RequireFromString("1"), Currency: "USD"},
		})
		testutil.AssertAppError(t, err, "PRICE_SOURCE_NOT_FOUND")
	})

	t.Run("unknown_listing_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewQuoteService(db)
		f := newQuoteFixture(t, db)

		missing := "00000000-0000-0000-0000-000000000000"
		_, err := svc.Ingest([]QuoteInput{
			{SourceID: f.source.ID, ListingID: &missing, TS: base, Price: decimal.RequireFromString("1"), Currency: "USD"},
		})
		testutil.AssertAppError(t, err, "LISTING_NOT_FOUND")
	})

	t.Run("nonpositive_price_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewQuoteService(db)
		f := newQuoteFixture(t, db)

		_, err := svc.Ingest([]QuoteInput{
			{SourceID: f.source.ID, ListingID: &f.listing.ID, TS: base, Price: decimal.Zero, Currency: "USD"},
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("empty_input", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewQuoteService(db)

		_, err := svc.Ingest([]QuoteInput{})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("bad_row_aborts_batch_with_partial_count", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewQuoteService(db)
		f := newQuoteFixture(t, db)

		count, err := svc.Ingest([]QuoteInput{
			{SourceID: f.source.ID, ListingID: &f.listing.ID, TS: base, Price: decimal.RequireFromString("150.00"), Currency: "USD"},
			{SourceID: f.source.ID, TS: base, Price: decimal.RequireFromString("1"), Currency: "USD"},
		})
		testutil.AssertAppError(t, err, "QUOTE_TARGET")
		if count != 1 {
			t.Errorf("expected 1 row inserted before the abort, got %d", count)
		}
	})
}

func TestGetQuoteHistory(t *testing.T) {
	base := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)

	t.Run("filters_by_target_and_range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewQuoteService(db)
		f := newQuoteFixture(t, db)

		for i := 0; i < 4; i++ {
			ts := base.Add(time.Duration(i) * 24 * time.Hour)
			testutil.CreateTestListingQuote(t, db, f.source.ID, f.listing.ID, ts, decimal.NewFromInt(int64(100+i)), "USD")
		}
		// A token quote that must not leak into the listing history.
		testutil.CreateTestTokenQuote(t, db, f.source.ID, f.token.ID, base, decimal.RequireFromString("3100"), "USD")

		from := base.Add(12 * time.Hour)
		to := base.Add(60 * time.Hour)
		result, err := svc.GetQuoteHistory(QuoteHistoryFilter{ListingID: &f.listing.ID, From: &from, To: &to}, pagination.PageRequest{Page: 1, PageSize: 20})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 2 {
			t.Errorf("expected 2 quotes in range, got %d", result.TotalItems)
		}
	})

	t.Run("ordered_newest_first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewQuoteService(db)
		f := newQuoteFixture(t, db)

		testutil.CreateTestListingQuote(t, db, f.source.ID, f.listing.ID, base, decimal.RequireFromString("100"), "USD")
		testutil.CreateTestListingQuote(t, db, f.source.ID, f.listing.ID, base.Add(time.Hour), decimal.RequireFromString("101"), "USD")
		testutil.CreateTestListingQuote(t, db, f.source.ID, f.listing.ID, base.Add(2*time.Hour), decimal.RequireFromString("102"), "USD")

		result, err := svc.GetQuoteHistory(QuoteHistoryFilter{ListingID: &f.listing.ID}, pagination.PageRequest{Page: 1, PageSize: 20})
		testutil.AssertNoError(t, err)

		if len(result.Data) != 3 {
			t.Fatalf("expected 3 quotes, got %d", len(result.Data))
		}
		testutil.AssertDecimalEqual(t, "102", result.Data[0].Price)
		testutil.AssertDecimalEqual(t, "100", result.Data[2].Price)
	})

	t.Run("paginates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewQuoteService(db)
		f := newQuoteFixture(t, db)

		for i := 0; i < 5; i++ {
			ts := base.Add(time.Duration(i) * time.Hour)
			testutil.CreateTestListingQuote(t, db, f.source.ID, f.listing.ID, ts, decimal.NewFromInt(int64(100+i)), "USD")
		}

		result, err := svc.GetQuoteHistory(QuoteHistoryFilter{ListingID: &f.listing.ID}, pagination.PageRequest{Page: 1, PageSize: 2})
		testutil.AssertNoError(t, err)

		if len(result.Data) != 2 {
			t.Errorf("expected 2 items on page, got %d", len(result.Data))
		}
		if result.TotalItems != 5 {
			t.Errorf("expected total 5, got %d", result.TotalItems)
		}
		if result.TotalPages != 3 {
			t.Errorf("expected 3 total pages, got %d", result.TotalPages)
		}
	})
}
