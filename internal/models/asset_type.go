package models

// AssetType is a node in the user-facing classification tree
// ("Equities > US Large Cap", "Metals > Bullion"). The tree is a plain
// adjacency list; slugs are globally unique.
type AssetType struct {
	Base
	Name     string  `gorm:"not null" json:"name"`
	Slug     string  `gorm:"not null;uniqueIndex" json:"slug"`
	ParentID *string `gorm:"type:uuid" json:"parent_id,omitempty"`

	Parent   *AssetType  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []AssetType `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}
