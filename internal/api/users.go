package api

import (
	"errors"                   // Sentinel error checks
	"net/http"                 // HTTP status codes
	"reviewdb/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// UserResponse is the user shape returned by the API
type UserResponse struct {
	FirstName string `json:"first_name"` // First name
	LastName  string `json:"last_name"`  // Last name
	Username  string `json:"username"`   // Username
	Bio       string `json:"bio"`        // Profile text
	Email     string `json:"email"`      // Email address
	Role      string `json:"role"`       // Role
}

// userResponse maps a user to its API shape
func userResponse(u domain.User) UserResponse {
	return UserResponse{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Bio:       u.Bio,
		Email:     u.Email,
		Role:      u.Role,
	}
}

// UserPayload is the admin write shape: every field is writable
type UserPayload struct {
	FirstName string `json:"first_name"`              // First name
	LastName  string `json:"last_name"`               // Last name
	Username  string `json:"username" binding:"required"` // Username, required on create
	Bio       string `json:"bio"`                     // Profile text
	Email     string `json:"email" binding:"required,email"` // Email address
	Role      string `json:"role"`                    // Role, defaults to user
}

// UserUpdatePayload is the admin partial-update shape
type UserUpdatePayload struct {
	FirstName *string `json:"first_name"` // First name
	LastName  *string `json:"last_name"`  // Last name
	Username  *string `json:"username"`   // Username
	Bio       *string `json:"bio"`        // Profile text
	Email     *string `json:"email"`      // Email address
	Role      *string `json:"role"`       // Role
}

// SelfUpdatePayload is the self-service partial-update shape.
// Role and username are deliberately absent: they are read-only here and can
// only be changed by an admin through the user-management path.
type SelfUpdatePayload struct {
	FirstName *string `json:"first_name"` // First name
	LastName  *string `json:"last_name"`  // Last name
	Bio       *string `json:"bio"`        // Profile text
	Email     *string `json:"email"`      // Email address
}

// ListUsersHandler returns all users, paginated (admin only)
func ListUsersHandler(db *gorm.DB, defaultPageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		pp := parsePagination(c, defaultPageSize) // Pagination params
		var total int64                           // Total user count
		if err := db.Model(&domain.User{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
			return
		}
		var users []domain.User // Slice to hold users
		if err := db.Order("id").Offset(pp.Offset).Limit(pp.PageSize).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		// Map users to response format
		resp := make([]UserResponse, len(users))
		for i, u := range users {
			resp[i] = userResponse(u)
		}
		c.JSON(http.StatusOK, gin.H{
			"users":       resp,                            // List of users
			"page":        pp.Page,                         // Current page
			"page_size":   pp.PageSize,                     // Page size
			"total":       total,                           // Total number of users
			"total_pages": totalPages(total, pp.PageSize),  // Total pages
		})
	}
}

// CreateUserHandler creates a user account (admin only)
func CreateUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UserPayload // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username and a valid email are required"})
			return
		}
		if req.Role == "" {
			req.Role = domain.RoleUser // Default role
		}
		// Reject unknown roles
		if !domain.ValidRole(req.Role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be one of: user, moderator, admin"})
			return
		}
		user := domain.User{
			FirstName: req.FirstName, // First name
			LastName:  req.LastName,  // Last name
			Username:  req.Username,  // Username
			Bio:       req.Bio,       // Profile text
			Email:     req.Email,     // Email address
			Role:      req.Role,      // Role
		}
		if err := db.Create(&user).Error; err != nil {
			// Username or email already taken
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "A user with this username or email already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}
		// Log the account creation
		logrus.WithFields(logrus.Fields{
			"username": user.Username, // New username
			"role":     user.Role,     // Assigned role
		}).Info("User created")
		c.JSON(http.StatusCreated, userResponse(user))
	}
}

// GetUserHandler returns one user by username (admin only)
func GetUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user domain.User // Look up by the username path segment
		if err := db.Where("username = ?", c.Param("username")).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, userResponse(user))
	}
}

// UpdateUserHandler partially updates a user (admin only, every field writable)
func UpdateUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user domain.User // Look up by the username path segment
		if err := db.Where("username = ?", c.Param("username")).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		var req UserUpdatePayload // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Apply only the fields present in the payload
		if req.FirstName != nil {
			user.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			user.LastName = *req.LastName
		}
		if req.Username != nil {
			user.Username = *req.Username
		}
		if req.Bio != nil {
			user.Bio = *req.Bio
		}
		if req.Email != nil {
			user.Email = *req.Email
		}
		if req.Role != nil {
			// Reject unknown roles
			if !domain.ValidRole(*req.Role) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be one of: user, moderator, admin"})
				return
			}
			user.Role = *req.Role
		}
		if err := db.Save(&user).Error; err != nil {
			// New username or email collides with another account
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "A user with this username or email already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}
		c.JSON(http.StatusOK, userResponse(user))
	}
}

// DeleteUserHandler removes a user; their reviews and comments cascade away
func DeleteUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user domain.User // Look up by the username path segment
		if err := db.Where("username = ?", c.Param("username")).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if err := db.Delete(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
			return
		}
		// Log the account removal
		logrus.WithFields(logrus.Fields{
			"username": user.Username, // Removed username
		}).Info("User deleted")
		c.Status(http.StatusNoContent)
	}
}

// MeHandler returns the authenticated user's own profile
func MeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db) // Load the requester
		if !ok {
			return
		}
		c.JSON(http.StatusOK, userResponse(*user))
	}
}

// UpdateMeHandler partially updates the authenticated user's own profile.
// Role and username are not part of the payload shape, so they cannot be
// changed through this path no matter what the request body contains.
func UpdateMeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db) // Load the requester
		if !ok {
			return
		}
		var req SelfUpdatePayload // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Apply only the fields present in the payload
		if req.FirstName != nil {
			user.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			user.LastName = *req.LastName
		}
		if req.Bio != nil {
			user.Bio = *req.Bio
		}
		if req.Email != nil {
			user.Email = *req.Email
		}
		if err := db.Save(user).Error; err != nil {
			// New email collides with another account
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "A user with this email already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
		c.JSON(http.StatusOK, userResponse(*user))
	}
}
