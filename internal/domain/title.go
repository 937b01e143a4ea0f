package domain

// Title Model
type Title struct {
	ID          uint      `gorm:"primaryKey"`                                     // Primary key
	Name        string    `gorm:"uniqueIndex;size:100;not null"`                  // Unique work name
	Description *string   `gorm:"type:text"`                                      // Optional description
	Year        *int      // Optional release year, validated against the current year
	CategoryID  *uint     // Foreign key to Category, nil when uncategorized
	Category    *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"` // Deleting a category detaches its titles
	Genres      []Genre   `gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"` // Zero or more genres
}
