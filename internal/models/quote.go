package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "patrimo/internal/errors"
	"patrimo/internal/uuid"
)

// Quote is one price observation from a source, targeting exactly one of
// an instrument, a listing, or a token. This is immutable time-series
// data — no Base embed, no soft deletes. "Latest" reads order by
// (ts DESC, id DESC); ids are UUIDv7, so at equal ts the most recently
// ingested observation wins.
type Quote struct {
	ID           string          `gorm:"type:uuid;primaryKey" json:"id"`
	SourceID     string          `gorm:"type:uuid;not null;index;uniqueIndex:uq_quotes_source_target_ts" json:"source_id"`
	InstrumentID *string         `gorm:"type:uuid;index" json:"instrument_id,omitempty"`
	ListingID    *string         `gorm:"type:uuid;index;uniqueIndex:uq_quotes_source_target_ts" json:"listing_id,omitempty"`
	TokenID      *string         `gorm:"type:uuid;index;uniqueIndex:uq_quotes_source_target_ts" json:"token_id,omitempty"`
	TS           time.Time       `gorm:"not null;index;uniqueIndex:uq_quotes_source_target_ts" json:"ts"`
	Price        decimal.Decimal `gorm:"type:decimal(24,8);not null" json:"price"`
	Currency     string          `gorm:"size:3;not null" json:"currency"`

	Source PriceSource `gorm:"foreignKey:SourceID" json:"source,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (q *Quote) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.New()
	}
	return nil
}

// BeforeSave rejects quotes that do not target exactly one of
// instrument, listing, or token.
func (q *Quote) BeforeSave(tx *gorm.DB) error {
	targets := 0
	if q.InstrumentID != nil && *q.InstrumentID != "" {
		targets++
	}
	if q.ListingID != nil && *q.ListingID != "" {
		targets++
	}
	if q.TokenID != nil && *q.TokenID != "" {
		targets++
	}
	if targets != 1 {
		return apperrors.ErrQuoteTarget
	}
	return nil
}
