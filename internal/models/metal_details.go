package models

import "github.com/shopspring/decimal"

// MetalCode identifies a precious metal.
type MetalCode string

const (
	MetalGold      MetalCode = "GOLD"
	MetalSilver    MetalCode = "SILVER"
	MetalPlatinum  MetalCode = "PLATINUM"
	MetalPalladium MetalCode = "PALLADIUM"
)

// CommodityName returns the catalog instrument name quotes for this metal
// are recorded under, or "" for an unknown code.
func (m MetalCode) CommodityName() string {
	switch m {
	case MetalGold:
		return "Gold"
	case MetalSilver:
		return "Silver"
	case MetalPlatinum:
		return "Platinum"
	case MetalPalladium:
		return "Palladium"
	}
	return ""
}

// PreciousMetalDetails describes a PRECIOUS_METAL asset. Purity is a
// fraction (0.999 for three-nines fine), weight is in grams.
type PreciousMetalDetails struct {
	Base
	AssetID     string          `gorm:"type:uuid;not null;uniqueIndex" json:"asset_id"`
	Metal       MetalCode       `gorm:"not null" json:"metal"`
	Purity      decimal.Decimal `gorm:"type:decimal(7,6);not null" json:"purity"`
	Form        string          `json:"form,omitempty"`
	WeightGrams decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"weight_grams"`
}
