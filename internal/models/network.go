package models

// Network is a blockchain tokens live on ("ETH", "SOL").
type Network struct {
	Base
	Code string `gorm:"not null;uniqueIndex" json:"code"`
	Name string `gorm:"not null" json:"name"`
}
