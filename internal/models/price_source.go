package models

// PriceSource identifies where a quote came from ("XIGNITE", "COINGECKO").
type PriceSource struct {
	Base
	Code string `gorm:"not null;uniqueIndex" json:"code"`
	Name string `gorm:"not null" json:"name"`
}
