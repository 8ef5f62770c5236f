package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "patrimo/internal/errors"
	"patrimo/internal/models"
	"patrimo/internal/money"
)

// overviewService builds the grouped portfolio view: accounts, their assets,
// and per-currency totals. Amounts in different currencies land in separate
// buckets and are never converted.
type overviewService struct {
	db        *gorm.DB
	valuation ValuationServicer
}

// NewOverviewService creates a new OverviewServicer.
func NewOverviewService(db *gorm.DB, valuation ValuationServicer) OverviewServicer {
	return &overviewService{db: db, valuation: valuation}
}

// PortfolioOverview returns every account of the user with its assets, each
// annotated with the summed cash balance and, where priced, the market value.
// Ordering is deterministic: accounts by name, assets by name with id as the
// tie-break.
func (s *overviewService) PortfolioOverview(userID string) (*PortfolioOverview, error) {
	var accounts []models.Account
	if err := s.db.Where("user_id = ?", userID).Order("name ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	overview := &PortfolioOverview{
		Accounts:             make([]AccountGroup, 0, len(accounts)),
		TotalsBalance:        map[string]decimal.Decimal{},
		TotalsMarket:         map[string]decimal.Decimal{},
		TotalsBalanceDisplay: map[string]string{},
		TotalsMarketDisplay:  map[string]string{},
	}

	for _, account := range accounts {
		group, err := s.buildAccountGroup(account)
		if err != nil {
			return nil, err
		}

		for currency, amount := range group.TotalsBalance {
			overview.TotalsBalance[currency] = overview.TotalsBalance[currency].Add(amount)
		}
		for currency, amount := range group.TotalsMarket {
			overview.TotalsMarket[currency] = overview.TotalsMarket[currency].Add(amount)
		}

		overview.Accounts = append(overview.Accounts, *group)
	}

	fillDisplayTotals(overview.TotalsBalance, overview.TotalsBalanceDisplay)
	fillDisplayTotals(overview.TotalsMarket, overview.TotalsMarketDisplay)

	return overview, nil
}

func (s *overviewService) buildAccountGroup(account models.Account) (*AccountGroup, error) {
	var assets []models.Asset
	err := assetPreloads(s.db).
		Where("account_id = ?", account.ID).
		Order("name ASC, id ASC").
		Find(&assets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	group := &AccountGroup{
		AccountID:            account.ID,
		Name:                 account.Name,
		Type:                 account.Type,
		Assets:               make([]AssetRow, 0, len(assets)),
		TotalsBalance:        map[string]decimal.Decimal{},
		TotalsMarket:         map[string]decimal.Decimal{},
		TotalsBalanceDisplay: map[string]string{},
		TotalsMarketDisplay:  map[string]string{},
	}

	for i := range assets {
		asset := &assets[i]

		balance, err := s.sumBalance(asset.ID)
		if err != nil {
			return nil, err
		}

		row := AssetRow{
			AssetID:        asset.ID,
			Name:           asset.Name,
			Category:       asset.Category,
			Currency:       asset.Currency,
			Balance:        balance,
			BalanceDisplay: money.Display(balance, asset.Currency),
		}
		group.TotalsBalance[asset.Currency] = group.TotalsBalance[asset.Currency].Add(balance)

		mv, err := s.valuation.MarketValue(asset)
		if err != nil {
			return nil, err
		}
		if mv != nil {
			value := mv.Value
			currency := mv.Currency
			display := money.Display(value, currency)
			row.MarketValue = &value
			row.MarketCurrency = &currency
			row.MarketDisplay = &display
			group.TotalsMarket[currency] = group.TotalsMarket[currency].Add(value)
		}

		group.Assets = append(group.Assets, row)
	}

	fillDisplayTotals(group.TotalsBalance, group.TotalsBalanceDisplay)
	fillDisplayTotals(group.TotalsMarket, group.TotalsMarketDisplay)

	return group, nil
}

// sumBalance adds up an asset's transaction amounts in Go so decimal
// precision survives the round trip through the database driver. Fees are
// informational and never subtracted here.
func (s *overviewService) sumBalance(assetID string) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := s.db.Model(&models.Transaction{}).
		Where("asset_id = ?", assetID).
		Pluck("amount", &amounts).Error
	if err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	balance := decimal.Zero
	for _, amount := range amounts {
		balance = balance.Add(amount)
	}
	return balance, nil
}

func fillDisplayTotals(totals map[string]decimal.Decimal, display map[string]string) {
	for currency, amount := range totals {
		display[currency] = money.Display(amount, currency)
	}
}
