package models

// AccountType describes where an account is held.
type AccountType string

const (
	AccountTypeBrokerage AccountType = "BROKERAGE"
	AccountTypeBank      AccountType = "BANK"
	AccountTypeWallet    AccountType = "WALLET"
	AccountTypeCash      AccountType = "CASH"
	AccountTypeProperty  AccountType = "PROPERTY"
	AccountTypeOther     AccountType = "OTHER"
)

// Account groups a user's assets under one institution or wallet.
// Account names are unique per user.
type Account struct {
	Base
	UserID       string      `gorm:"type:uuid;not null;index;uniqueIndex:uq_accounts_user_name" json:"user_id"`
	Name         string      `gorm:"not null;uniqueIndex:uq_accounts_user_name" json:"name"`
	Type         AccountType `gorm:"not null" json:"type"`
	BaseCurrency string      `gorm:"size:3;not null;default:'USD'" json:"base_currency"`
	Institution  string      `json:"institution,omitempty"`
	AccountRef   string      `json:"account_ref,omitempty"`
	IsActive     bool        `gorm:"default:true" json:"is_active"`

	Assets []Asset `gorm:"foreignKey:AccountID" json:"assets,omitempty"`
}
