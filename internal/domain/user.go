package domain

// User roles
const (
	RoleUser      = "user"      // Default role for everyone who signs up
	RoleModerator = "moderator" // May edit or delete any review or comment
	RoleAdmin     = "admin"     // Full control, including users and titles
)

// User Model
type User struct {
	ID               uint    `gorm:"primaryKey" json:"id"`                          // Primary key
	Username         string  `gorm:"uniqueIndex;size:150;not null" json:"username"` // Unique username (defaults to the email on signup)
	Email            string  `gorm:"uniqueIndex;size:254;not null" json:"email"`    // Unique email address
	FirstName        string  `gorm:"size:150" json:"first_name"`                    // First name
	LastName         string  `gorm:"size:150" json:"last_name"`                     // Last name
	Bio              string  `gorm:"type:text" json:"bio"`                          // Free-form profile text
	Role             string  `gorm:"size:9;not null;default:user" json:"role"`      // Role: user, moderator or admin
	ConfirmationCode *string `gorm:"size:100" json:"-"`                             // One-time login code, nil until the first code request
}

// IsAdmin reports whether the user holds the admin role.
// Derived from Role so the flag can never drift from the stored value.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsModerator reports whether the user holds the moderator role.
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}

// ValidRole reports whether role is one of the known role values.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleModerator || role == RoleAdmin
}
