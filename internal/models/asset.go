package models

import "gorm.io/datatypes"

// AssetCategory determines which detail row an asset carries and how the
// valuation engine prices it.
type AssetCategory string

const (
	AssetCategoryCash          AssetCategory = "CASH"
	AssetCategoryInvestment    AssetCategory = "INVESTMENT"
	AssetCategoryRealEstate    AssetCategory = "REAL_ESTATE"
	AssetCategoryPreciousMetal AssetCategory = "PRECIOUS_METAL"
	AssetCategoryCollectible   AssetCategory = "COLLECTIBLE"
	AssetCategoryOther         AssetCategory = "OTHER"
)

// Asset is a single position in an account: a cash pool, a holding of an
// instrument, a property, a lump of metal. Each asset carries exactly one
// detail row matching its category; the detail pointers below are loaded
// on demand and at most one of them is non-nil for a well-formed asset.
type Asset struct {
	Base
	AccountID string         `gorm:"type:uuid;not null;index" json:"account_id"`
	Name      string         `gorm:"not null" json:"name"`
	Category  AssetCategory  `gorm:"not null;index" json:"category"`
	TypeID    *string        `gorm:"type:uuid" json:"type_id,omitempty"`
	Currency  string         `gorm:"size:3;not null;default:'USD'" json:"currency"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	Extra     datatypes.JSON `json:"extra,omitempty"`

	Account     Account               `gorm:"foreignKey:AccountID" json:"-"`
	Type        *AssetType            `gorm:"foreignKey:TypeID" json:"type,omitempty"`
	Investment  *InvestmentDetails    `gorm:"foreignKey:AssetID" json:"investment_details,omitempty"`
	Cash        *CashDetails          `gorm:"foreignKey:AssetID" json:"cash_details,omitempty"`
	RealEstate  *RealEstateDetails    `gorm:"foreignKey:AssetID" json:"real_estate_details,omitempty"`
	Metal       *PreciousMetalDetails `gorm:"foreignKey:AssetID" json:"metal_details,omitempty"`
	Collectible *CollectibleDetails   `gorm:"foreignKey:AssetID" json:"collectible_details,omitempty"`
	Other       *OtherDetails         `gorm:"foreignKey:AssetID" json:"other_details,omitempty"`

	Transactions []Transaction `gorm:"foreignKey:AssetID" json:"transactions,omitempty"`
}
