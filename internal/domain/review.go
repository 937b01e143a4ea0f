package domain

import "time"

// Review Model
type Review struct {
	ID        uint      `gorm:"primaryKey"`                                        // Primary key
	Text      string    `gorm:"type:text;not null"`                                // Review body
	Score     int       `gorm:"not null"`                                          // Score in [1,10]
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_reviews_author_title"`     // Foreign key to User
	Author    User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`     // Deleting a user removes their reviews
	TitleID   uint      `gorm:"not null;uniqueIndex:idx_reviews_author_title"`     // Foreign key to Title
	Title     *Title    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`     // Deleting a title removes its reviews
	CreatedAt time.Time `gorm:"autoCreateTime;index"`                              // Publication timestamp, immutable once set
}
