package models

// Listing is an instrument traded on an exchange under a ticker.
// A ticker is unique within its exchange.
type Listing struct {
	Base
	InstrumentID string `gorm:"type:uuid;not null;index" json:"instrument_id"`
	ExchangeID   string `gorm:"type:uuid;not null;uniqueIndex:uq_listings_exchange_ticker" json:"exchange_id"`
	Ticker       string `gorm:"not null;index;uniqueIndex:uq_listings_exchange_ticker" json:"ticker"`
	IsPrimary    bool   `gorm:"default:false" json:"is_primary"`

	Instrument Instrument `gorm:"foreignKey:InstrumentID" json:"instrument,omitempty"`
	Exchange   Exchange   `gorm:"foreignKey:ExchangeID" json:"exchange,omitempty"`
}
