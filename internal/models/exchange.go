package models

// Exchange is a trading venue identified by its ISO 10383 MIC.
type Exchange struct {
	Base
	MIC      string `gorm:"size:4;not null;uniqueIndex" json:"mic"`
	Name     string `gorm:"not null" json:"name"`
	Country  string `gorm:"size:2" json:"country,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}
