package domain

import "time"

// Comment Model
type Comment struct {
	ID        uint      `gorm:"primaryKey"`                                    // Primary key
	Text      string    `gorm:"type:text;not null"`                            // Comment body
	AuthorID  uint      `gorm:"not null;index"`                                // Foreign key to User
	Author    User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"` // Deleting a user removes their comments
	ReviewID  uint      `gorm:"not null;index"`                                // Foreign key to Review
	Review    *Review   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"` // Deleting a review removes its comments
	CreatedAt time.Time `gorm:"autoCreateTime;index"`                          // Publication timestamp
}
