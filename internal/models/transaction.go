package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxnType represents the type of transaction
type TxnType string

const (
	TxnTypeBuy        TxnType = "BUY"
	TxnTypeSell       TxnType = "SELL"
	TxnTypeDeposit    TxnType = "DEPOSIT"
	TxnTypeWithdrawal TxnType = "WITHDRAWAL"
	TxnTypeIncome     TxnType = "INCOME"
	TxnTypeExpense    TxnType = "EXPENSE"
	TxnTypeAdjustment TxnType = "ADJUSTMENT"
)

// Transaction is a cash movement against an asset, denominated in the
// asset's currency. Amount carries the sign (outflows are negative);
// an asset's balance is the plain sum of its transaction amounts.
// Fee is informational and never netted into the balance.
type Transaction struct {
	Base
	AssetID   string              `gorm:"type:uuid;not null;index" json:"asset_id"`
	Timestamp time.Time           `gorm:"not null;index" json:"timestamp"`
	TxnType   TxnType             `gorm:"not null" json:"txn_type"`
	Quantity  decimal.NullDecimal `gorm:"type:decimal(24,8)" json:"quantity"`
	Amount    decimal.Decimal     `gorm:"type:decimal(24,8);not null" json:"amount"`
	Fee       decimal.Decimal     `gorm:"type:decimal(24,8);not null;default:0" json:"fee"`
	Memo      string              `json:"memo,omitempty"`

	Asset Asset `gorm:"foreignKey:AssetID" json:"-"`
}
