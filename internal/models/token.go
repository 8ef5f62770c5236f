package models

// Token is a crypto instrument's representation on a network. Symbols are
// unique per network, and so are contract addresses when present.
type Token struct {
	Base
	InstrumentID    string  `gorm:"type:uuid;not null;index" json:"instrument_id"`
	NetworkID       string  `gorm:"type:uuid;not null;uniqueIndex:uq_tokens_network_symbol;uniqueIndex:uq_tokens_network_contract" json:"network_id"`
	Symbol          string  `gorm:"not null;index;uniqueIndex:uq_tokens_network_symbol" json:"symbol"`
	ContractAddress *string `gorm:"uniqueIndex:uq_tokens_network_contract" json:"contract_address,omitempty"`

	Instrument Instrument `gorm:"foreignKey:InstrumentID" json:"instrument,omitempty"`
	Network    Network    `gorm:"foreignKey:NetworkID" json:"network,omitempty"`
}
