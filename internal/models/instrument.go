package models

// InstrumentKind classifies what an instrument is.
type InstrumentKind string

const (
	InstrumentKindEquity    InstrumentKind = "EQUITY"
	InstrumentKindETF       InstrumentKind = "ETF"
	InstrumentKindCrypto    InstrumentKind = "CRYPTO"
	InstrumentKindCommodity InstrumentKind = "COMMODITY"
)

// Instrument is the abstract tradable thing in the catalog: one row per
// company, fund, crypto project, or commodity, independent of where it
// trades. Commodities are looked up by (kind, name): metal valuations
// resolve "Gold", "Silver", etc. against COMMODITY instruments.
type Instrument struct {
	Base
	Kind     InstrumentKind `gorm:"not null;index:idx_instruments_kind_active" json:"kind"`
	Name     string         `gorm:"not null;index" json:"name"`
	ISIN     string         `gorm:"size:12" json:"isin,omitempty"`
	Currency string         `gorm:"size:3" json:"currency,omitempty"`
	Sector   string         `json:"sector,omitempty"`
	Active   bool           `gorm:"default:true;index:idx_instruments_kind_active" json:"active"`

	Listings []Listing `gorm:"foreignKey:InstrumentID" json:"listings,omitempty"`
	Tokens   []Token   `gorm:"foreignKey:InstrumentID" json:"tokens,omitempty"`
}
