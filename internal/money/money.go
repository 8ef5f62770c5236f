// Package money formats decimal amounts for display using ISO 4217
// currency metadata. Arithmetic stays in shopspring/decimal everywhere;
// this package only renders the result.
package money

import (
	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// currencyFor returns a never-nil currency for the given code.
// Unknown codes fall back to a generic 2-fraction currency.
func currencyFor(code string) *gomoney.Currency {
	return gomoney.New(0, code).Currency()
}

// Display renders an amount in major units as a localized currency string,
// e.g. Display(1234.5, "USD") -> "$1,234.50".
func Display(amount decimal.Decimal, code string) string {
	cur := currencyFor(code)
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// Round returns the amount rounded half away from zero to the currency's
// native number of fraction digits.
func Round(amount decimal.Decimal, code string) decimal.Decimal {
	cur := currencyFor(code)
	return amount.Round(int32(cur.Fraction))
}
