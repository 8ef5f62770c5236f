package models

// AuditLog records sensitive user and pipeline operations for later review.
// UserID is empty for pipeline actions authenticated by API key.
type AuditLog struct {
	Base
	UserID       string `gorm:"index" json:"user_id,omitempty"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   string `json:"resource_id,omitempty"`
	IPAddress    string `json:"ip_address"`
	Changes      string `json:"changes,omitempty"`
}
