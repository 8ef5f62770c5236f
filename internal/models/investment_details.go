package models

import (
	"gorm.io/gorm"

	apperrors "patrimo/internal/errors"
)

// InvestmentDetails describes an INVESTMENT asset. The position points at
// exactly one venue: a listing on an exchange or a token on a network.
// InstrumentID is always derived from the chosen venue and is never taken
// from the caller; the service layer re-derives it on every write.
type InvestmentDetails struct {
	Base
	AssetID      string  `gorm:"type:uuid;not null;uniqueIndex" json:"asset_id"`
	InstrumentID string  `gorm:"type:uuid;not null;index" json:"instrument_id"`
	ListingID    *string `gorm:"type:uuid;index" json:"listing_id,omitempty"`
	TokenID      *string `gorm:"type:uuid;index" json:"token_id,omitempty"`
	Memo         string  `json:"memo,omitempty"`

	Instrument Instrument `gorm:"foreignKey:InstrumentID" json:"instrument,omitempty"`
	Listing    *Listing   `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
	Token      *Token     `gorm:"foreignKey:TokenID" json:"token,omitempty"`
}

// BeforeSave rejects rows that do not reference exactly one of listing or token.
func (d *InvestmentDetails) BeforeSave(tx *gorm.DB) error {
	hasListing := d.ListingID != nil && *d.ListingID != ""
	hasToken := d.TokenID != nil && *d.TokenID != ""
	if hasListing == hasToken {
		return apperrors.ErrInvestmentTarget
	}
	return nil
}
