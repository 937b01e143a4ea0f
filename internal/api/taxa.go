package api

import (
	"context"                  // Context for Redis operations
	"errors"                   // Sentinel error checks
	"net/http"                 // HTTP status codes
	"regexp"                   // Slug validation
	"reviewdb/internal/domain" // Importing domain models
	"reviewdb/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// TaxonPayload is the shared write shape for categories and genres
type TaxonPayload struct {
	Name string `json:"name" binding:"required"` // Display name
	Slug string `json:"slug" binding:"required"` // Unique URL-safe identifier
}

// slugPattern matches URL-safe slugs: letters, digits, hyphens and underscores
var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// invalidateTaxaCache drops cached title reads after a taxon write, since
// titles embed their category and genres in the read shape
func invalidateTaxaCache(rdb *redis.Client) {
	ctx := context.Background()
	_ = utils.DeleteCacheByPrefix(ctx, rdb, "titles:")
}

// ListCategoriesHandler returns categories, optionally filtered by name prefix
func ListCategoriesHandler(db *gorm.DB, defaultPageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		pp := parsePagination(c, defaultPageSize) // Pagination params
		query := db.Model(&domain.Category{})     // Start building the query
		if search := c.Query("search"); search != "" {
			query = query.Where("name LIKE ?", search+"%") // Name-prefix search
		}
		var total int64 // Total category count
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count categories"})
			return
		}
		var categories []domain.Category // Slice to hold categories
		if err := query.Order("id").Offset(pp.Offset).Limit(pp.PageSize).Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"categories":  categories,                     // List of categories
			"page":        pp.Page,                        // Current page
			"page_size":   pp.PageSize,                    // Page size
			"total":       total,                          // Total number of categories
			"total_pages": totalPages(total, pp.PageSize), // Total pages
		})
	}
}

// CreateCategoryHandler creates a category (admin only)
func CreateCategoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TaxonPayload // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name and slug are required"})
			return
		}
		// Reject slugs that would not survive in a URL
		if !slugPattern.MatchString(req.Slug) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Slug may contain only letters, digits, hyphens and underscores"})
			return
		}
		category := domain.Category{Name: req.Name, Slug: req.Slug}
		if err := db.Create(&category).Error; err != nil {
			// Slugs are unique
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "A category with this slug already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

// DeleteCategoryHandler removes a category; its titles are detached, not deleted
func DeleteCategoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var category domain.Category // Look up by the slug path segment
		if err := db.Where("slug = ?", c.Param("slug")).First(&category).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		if err := db.Delete(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
			return
		}
		invalidateTaxaCache(rdb) // Cached title reads embed the category
		c.Status(http.StatusNoContent)
	}
}

// ListGenresHandler returns genres, optionally filtered by name prefix
func ListGenresHandler(db *gorm.DB, defaultPageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		pp := parsePagination(c, defaultPageSize) // Pagination params
		query := db.Model(&domain.Genre{})        // Start building the query
		if search := c.Query("search"); search != "" {
			query = query.Where("name LIKE ?", search+"%") // Name-prefix search
		}
		var total int64 // Total genre count
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count genres"})
			return
		}
		var genres []domain.Genre // Slice to hold genres
		if err := query.Order("id").Offset(pp.Offset).Limit(pp.PageSize).Find(&genres).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch genres"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"genres":      genres,                         // List of genres
			"page":        pp.Page,                        // Current page
			"page_size":   pp.PageSize,                    // Page size
			"total":       total,                          // Total number of genres
			"total_pages": totalPages(total, pp.PageSize), // Total pages
		})
	}
}

// CreateGenreHandler creates a genre (admin only)
func CreateGenreHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TaxonPayload // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name and slug are required"})
			return
		}
		// Reject slugs that would not survive in a URL
		if !slugPattern.MatchString(req.Slug) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Slug may contain only letters, digits, hyphens and underscores"})
			return
		}
		genre := domain.Genre{Name: req.Name, Slug: req.Slug}
		if err := db.Create(&genre).Error; err != nil {
			// Slugs are unique
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "A genre with this slug already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create genre"})
			return
		}
		c.JSON(http.StatusCreated, genre)
	}
}

// DeleteGenreHandler removes a genre and its title associations
func DeleteGenreHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var genre domain.Genre // Look up by the slug path segment
		if err := db.Where("slug = ?", c.Param("slug")).First(&genre).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Genre not found"})
			return
		}
		// Drop join-table rows first so the delete works the same on every DB
		if err := db.Exec("DELETE FROM title_genres WHERE genre_id = ?", genre.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete genre"})
			return
		}
		if err := db.Delete(&genre).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete genre"})
			return
		}
		invalidateTaxaCache(rdb) // Cached title reads embed the genres
		c.Status(http.StatusNoContent)
	}
}
