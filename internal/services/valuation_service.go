package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "patrimo/internal/errors"
	"patrimo/internal/models"
)

var (
	// gramsPerTroyOunce converts troy-ounce commodity quotes to per-gram prices.
	gramsPerTroyOunce = decimal.RequireFromString("31.1034768")
	decimalOne        = decimal.NewFromInt(1)
)

// valuationService prices assets off the quote stream. Pure reads; a missing
// price is reported as a nil result, never as an error.
type valuationService struct {
	db     *gorm.DB
	quotes QuoteServicer
}

// NewValuationService creates a new ValuationServicer.
func NewValuationService(db *gorm.DB, quotes QuoteServicer) ValuationServicer {
	return &valuationService{db: db, quotes: quotes}
}

// MarketValue computes the market value of an asset, or (nil, nil) when the
// asset has no price. The asset must be loaded with its detail rows.
//
// Investments pass the quote price through verbatim: listing quote first,
// then token quote, then an instrument-level quote as the last resort.
// Precious metals are priced off the latest commodity spot quote, converted
// from troy ounces to grams. Every other category is never priced; its worth
// is the running cash balance only.
func (s *valuationService) MarketValue(asset *models.Asset) (*MarketValue, error) {
	switch asset.Category {
	case models.AssetCategoryInvestment:
		return s.valueInvestment(asset)
	case models.AssetCategoryPreciousMetal:
		return s.valueMetal(asset)
	default:
		return nil, nil
	}
}

func (s *valuationService) valueInvestment(asset *models.Asset) (*MarketValue, error) {
	inv := asset.Investment
	if inv == nil {
		return nil, nil
	}

	hasListing := inv.ListingID != nil && *inv.ListingID != ""
	hasToken := inv.TokenID != nil && *inv.TokenID != ""
	if hasListing && hasToken {
		return nil, apperrors.Wrap(apperrors.ErrDataIntegrity,
			fmt.Errorf("investment details %s reference both a listing and a token", inv.ID))
	}

	if hasListing {
		quote, err := s.quotes.LatestForListing(*inv.ListingID)
		if err != nil {
			return nil, err
		}
		if quote != nil {
			return &MarketValue{Value: quote.Price, Currency: quote.Currency}, nil
		}
	}
	if hasToken {
		quote, err := s.quotes.LatestForToken(*inv.TokenID)
		if err != nil {
			return nil, err
		}
		if quote != nil {
			return &MarketValue{Value: quote.Price, Currency: quote.Currency}, nil
		}
	}

	// Instrument-level spot price as the last resort.
	quote, err := s.quotes.LatestForInstrument(inv.InstrumentID)
	if err != nil {
		return nil, err
	}
	if quote != nil {
		return &MarketValue{Value: quote.Price, Currency: quote.Currency}, nil
	}
	return nil, nil
}

// valueMetal prices a precious-metal holding off the latest spot quote for
// the matching COMMODITY instrument. The quote is per troy ounce; the stored
// weight is in grams.
//
// The rounding stages are part of the contract: price-per-gram at 6 decimal
// places, fine weight at 3, value at 2, each rounded half-up.
func (s *valuationService) valueMetal(asset *models.Asset) (*MarketValue, error) {
	detail := asset.Metal
	if detail == nil {
		return nil, nil
	}

	name := detail.Metal.CommodityName()
	if name == "" {
		return nil, nil
	}

	var instrument models.Instrument
	err := s.db.Where("kind = ? AND name = ?", models.InstrumentKindCommodity, name).First(&instrument).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	quote, err := s.quotes.LatestForInstrument(instrument.ID)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, nil
	}

	pricePerGram := quote.Price.DivRound(gramsPerTroyOunce, 6)
	fineWeight := detail.WeightGrams.Mul(detail.Purity).Round(3)
	value := fineWeight.Mul(pricePerGram).Round(2)

	return &MarketValue{Value: value, Currency: quote.Currency}, nil
}
