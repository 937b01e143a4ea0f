package domain

// Category Model
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"-"`                        // Primary key, never serialized
	Name string `gorm:"size:100;not null" json:"name"`              // Display name
	Slug string `gorm:"uniqueIndex;size:100;not null" json:"slug"`  // Unique URL-safe identifier
}
