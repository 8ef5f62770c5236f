package models

import "github.com/shopspring/decimal"

// CashDetails describes a CASH asset. An account holds at most one.
type CashDetails struct {
	Base
	AssetID    string `gorm:"type:uuid;not null;uniqueIndex" json:"asset_id"`
	AccountRef string `json:"account_ref,omitempty"`
}

// RealEstateDetails describes a REAL_ESTATE asset.
type RealEstateDetails struct {
	Base
	AssetID     string              `gorm:"type:uuid;not null;uniqueIndex" json:"asset_id"`
	Address     string              `json:"address,omitempty"`
	Country     string              `gorm:"size:2" json:"country,omitempty"`
	CadastralID string              `json:"cadastral_id,omitempty"`
	AreaSqm     decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"area_sqm"`
}

// CollectibleDetails describes a COLLECTIBLE asset.
type CollectibleDetails struct {
	Base
	AssetID       string `gorm:"type:uuid;not null;uniqueIndex" json:"asset_id"`
	Category      string `json:"category,omitempty"`
	Year          int    `json:"year,omitempty"`
	CertificateID string `json:"certificate_id,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// OtherDetails describes an OTHER asset.
type OtherDetails struct {
	Base
	AssetID     string `gorm:"type:uuid;not null;uniqueIndex" json:"asset_id"`
	Description string `json:"description,omitempty"`
}
