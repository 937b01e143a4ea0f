package api

import (
	"net/http"                 // HTTP status codes
	"reviewdb/internal/domain" // Importing domain models
	"strconv"                  // String conversion

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// pageParams holds the parsed pagination query parameters
type pageParams struct {
	Page     int // Current page number, 1-based
	PageSize int // Rows per page
	Offset   int // Rows to skip
}

// parsePagination reads page/page_size query params with sane bounds
func parsePagination(c *gin.Context, defaultSize int) pageParams {
	page := 1               // Default page number
	pageSize := defaultSize // Default page size from configuration
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size
		}
	}
	return pageParams{Page: page, PageSize: pageSize, Offset: (page - 1) * pageSize}
}

// totalPages computes the page count for a pagination envelope
func totalPages(total int64, pageSize int) int {
	return (int(total) + pageSize - 1) / pageSize
}

// currentUser loads the authenticated user recorded by the JWT middleware.
// Responds 401 and returns false when the request carries no usable identity.
func currentUser(c *gin.Context, db *gorm.DB) (*domain.User, bool) {
	userID, exists := c.Get("userID") // Get userID from context
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	var user domain.User // Fetch user from database
	if err := db.First(&user, userID).Error; err != nil {
		// Token refers to a user that no longer exists
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	return &user, true
}
