package api

import (
	"context"                  // Context for Redis operations
	"errors"                   // Sentinel error checks
	"net/http"                 // HTTP status codes
	"reviewdb/internal/domain" // Importing domain models
	"reviewdb/internal/utils"  // Utility functions
	"strconv"                  // String conversion
	"strings"                  // String manipulation
	"time"                     // Cache TTLs

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// Cache key layout for titles. Listing pages share one prefix so a single
// prefix sweep invalidates every cached filter/page combination.
const titleListCachePrefix = "titles:list:"

// titleCacheTTL bounds staleness of cached title reads
const titleCacheTTL = 60 * time.Second

// titleDetailCacheKey builds the detail cache key for one title
func titleDetailCacheKey(id uint) string {
	return "titles:detail:" + strconv.Itoa(int(id))
}

// invalidateTitleCache drops the cached reads a title write made stale.
// Review writes call it too, since they change the computed rating.
func invalidateTitleCache(rdb *redis.Client, titleID uint) {
	ctx := context.Background()                                   // Context for Redis operations
	_ = utils.DeleteCache(ctx, rdb, titleDetailCacheKey(titleID)) // Drop the detail entry
	_ = utils.DeleteCacheByPrefix(ctx, rdb, titleListCachePrefix) // Drop every cached list page
}

// TitleResponse is the read shape: taxa expanded, rating computed
type TitleResponse struct {
	ID          uint             `json:"id"`          // Title ID
	Name        string           `json:"name"`        // Work name
	Year        *int             `json:"year"`        // Release year, null when unknown
	Rating      *float64         `json:"rating"`      // Mean review score, null without reviews
	Description *string          `json:"description"` // Description, null when absent
	Genres      []domain.Genre   `json:"genre"`       // Nested genre objects
	Category    *domain.Category `json:"category"`    // Nested category object or null
}

// titleResponse maps a title plus its computed rating to the read shape
func titleResponse(t domain.Title, rating *float64) TitleResponse {
	genres := t.Genres
	if genres == nil {
		genres = []domain.Genre{} // Serialize as an empty list, not null
	}
	return TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      rating,
		Description: t.Description,
		Genres:      genres,
		Category:    t.Category,
	}
}

// titleRatings computes the mean review score per title for the given IDs.
// Titles with no reviews are simply absent from the result map.
func titleRatings(db *gorm.DB, ids []uint) (map[uint]float64, error) {
	ratings := make(map[uint]float64, len(ids))
	if len(ids) == 0 {
		return ratings, nil // Nothing to aggregate
	}
	var rows []struct {
		TitleID uint    // Title the average belongs to
		Rating  float64 // Mean score
	}
	err := db.Model(&domain.Review{}).
		Select("title_id, AVG(score) AS rating").
		Where("title_id IN ?", ids).
		Group("title_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		ratings[row.TitleID] = row.Rating
	}
	return ratings, nil
}

// ratingFor looks up a title's rating in the aggregate map, nil when absent
func ratingFor(ratings map[uint]float64, id uint) *float64 {
	if r, ok := ratings[id]; ok {
		return &r
	}
	return nil
}

// TitlePayload is the write shape: taxa referenced by slug
type TitlePayload struct {
	Name        string   `json:"name" binding:"required"` // Work name
	Year        *int     `json:"year"`                    // Optional release year
	Description *string  `json:"description"`             // Optional description
	Category    *string  `json:"category"`                // Category slug
	Genre       []string `json:"genre"`                   // Genre slugs
}

// TitleUpdatePayload is the partial-update shape
type TitleUpdatePayload struct {
	Name        *string   `json:"name"`        // Work name
	Year        *int      `json:"year"`        // Release year
	Description *string   `json:"description"` // Description
	Category    *string   `json:"category"`    // Category slug
	Genre       *[]string `json:"genre"`       // Genre slugs, replaces the whole set
}

// resolveCategorySlug turns a category slug into the stored row.
// An unresolved slug is a validation failure, not a routing one.
func resolveCategorySlug(c *gin.Context, db *gorm.DB, slug string) (*domain.Category, bool) {
	var category domain.Category
	if err := db.Where("slug = ?", slug).First(&category).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category slug: " + slug})
		return nil, false
	}
	return &category, true
}

// resolveGenreSlugs turns genre slugs into stored rows, failing on the first unknown one
func resolveGenreSlugs(c *gin.Context, db *gorm.DB, slugs []string) ([]domain.Genre, bool) {
	genres := make([]domain.Genre, 0, len(slugs))
	for _, slug := range slugs {
		var genre domain.Genre
		if err := db.Where("slug = ?", slug).First(&genre).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown genre slug: " + slug})
			return nil, false
		}
		genres = append(genres, genre)
	}
	return genres, true
}

// ListTitlesHandler returns titles with computed ratings, filterable by
// category slug, genre slug, partial name and exact year. Open to anonymous
// requesters; responses are cached briefly in Redis.
func ListTitlesHandler(db *gorm.DB, rdb *redis.Client, defaultPageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		// Create a cache key covering every filter and pagination parameter
		var keyParts []string
		for _, k := range []string{"category", "genre", "name", "year", "page", "page_size"} {
			keyParts = append(keyParts, k+"="+c.DefaultQuery(k, ""))
		}
		cacheKey := titleListCachePrefix + strings.Join(keyParts, ":")
		// Try to get cached response
		var cached struct {
			Titles     []TitleResponse `json:"titles"`      // List of titles
			Page       int             `json:"page"`        // Current page
			PageSize   int             `json:"page_size"`   // Page size
			Total      int64           `json:"total"`       // Total number of titles
			TotalPages int             `json:"total_pages"` // Total pages
		}
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"titles":      cached.Titles,     // List of titles
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of titles
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		pp := parsePagination(c, defaultPageSize) // Pagination params
		query := db.Model(&domain.Title{})        // Start building the query
		if cat := c.Query("category"); cat != "" {
			// Filter by category slug
			query = query.Joins("JOIN categories ON categories.id = titles.category_id").
				Where("categories.slug = ?", cat)
		}
		if genre := c.Query("genre"); genre != "" {
			// Filter by genre slug through the join table
			query = query.Joins("JOIN title_genres ON title_genres.title_id = titles.id").
				Joins("JOIN genres ON genres.id = title_genres.genre_id").
				Where("genres.slug = ?", genre)
		}
		if name := c.Query("name"); name != "" {
			query = query.Where("titles.name LIKE ?", "%"+name+"%") // Partial name match
		}
		if year := c.Query("year"); year != "" {
			query = query.Where("titles.year = ?", year) // Exact year match
		}
		var total int64 // Total title count after filtering
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count titles"})
			return
		}
		var titles []domain.Title // Slice to hold titles
		if err := query.Preload("Category").Preload("Genres").
			Order("titles.id").Offset(pp.Offset).Limit(pp.PageSize).
			Find(&titles).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch titles"})
			return
		}
		// Aggregate ratings for the returned page in one query
		ids := make([]uint, len(titles))
		for i, t := range titles {
			ids[i] = t.ID
		}
		ratings, err := titleRatings(db, ids)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute ratings"})
			return
		}
		// Map titles to response format
		resp := make([]TitleResponse, len(titles))
		for i, t := range titles {
			resp[i] = titleResponse(t, ratingFor(ratings, t.ID))
		}
		respData := gin.H{
			"titles":      resp,                           // List of titles
			"page":        pp.Page,                        // Current page
			"page_size":   pp.PageSize,                    // Page size
			"total":       total,                          // Total number of titles
			"total_pages": totalPages(total, pp.PageSize), // Total pages
			"cached":      false,                          // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, titleCacheTTL)
		c.JSON(http.StatusOK, respData)
	}
}

// GetTitleHandler returns one title with its computed rating
func GetTitleHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("title_id")) // Parse the path segment
		if err != nil || id < 1 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Title not found"})
			return
		}
		ctx := context.Background()                                 // Context for Redis operations
		cacheKey := titleDetailCacheKey(uint(id))                   // Cache key for this title
		var cached TitleResponse                                    // Cached read shape
		found, cacheErr := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if cacheErr == nil && found {
			c.JSON(http.StatusOK, cached) // Return cached title
			return
		}
		var title domain.Title // Fetch with nested taxa
		if err := db.Preload("Category").Preload("Genres").First(&title, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Title not found"})
			return
		}
		ratings, err := titleRatings(db, []uint{title.ID}) // Compute the rating
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute rating"})
			return
		}
		resp := titleResponse(title, ratingFor(ratings, title.ID))
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, titleCacheTTL) // Cache the title
		c.JSON(http.StatusOK, resp)
	}
}

// CreateTitleHandler creates a title (admin only), taxa referenced by slug
func CreateTitleHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TitlePayload // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
			return
		}
		// A future year is invalid; there is no lower bound
		if req.Year != nil {
			if err := domain.ValidateYear(*req.Year); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		title := domain.Title{
			Name:        req.Name,        // Work name
			Year:        req.Year,        // Optional release year
			Description: req.Description, // Optional description
		}
		// Resolve the category slug, if given
		if req.Category != nil && *req.Category != "" {
			category, ok := resolveCategorySlug(c, db, *req.Category)
			if !ok {
				return
			}
			title.Category = category
		}
		// Resolve genre slugs, if given
		if len(req.Genre) > 0 {
			genres, ok := resolveGenreSlugs(c, db, req.Genre)
			if !ok {
				return
			}
			title.Genres = genres
		}
		if err := db.Create(&title).Error; err != nil {
			// Work names are unique
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "A title with this name already exists"})
				return
			}
			logrus.WithFields(logrus.Fields{
				"name":  req.Name,    // Title name
				"error": err.Error(), // Error message
			}).Error("Failed to create title")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create title"})
			return
		}
		invalidateTitleCache(rdb, title.ID) // Listing pages are stale now
		c.JSON(http.StatusCreated, titleResponse(title, nil))
	}
}

// UpdateTitleHandler partially updates a title (admin only)
func UpdateTitleHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("title_id")) // Parse the path segment
		if err != nil || id < 1 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Title not found"})
			return
		}
		var title domain.Title // Fetch the existing title
		if err := db.Preload("Category").Preload("Genres").First(&title, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Title not found"})
			return
		}
		var req TitleUpdatePayload // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Apply only the fields present in the payload
		if req.Name != nil {
			title.Name = *req.Name
		}
		if req.Year != nil {
			if err := domain.ValidateYear(*req.Year); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			title.Year = req.Year
		}
		if req.Description != nil {
			title.Description = req.Description
		}
		if req.Category != nil {
			if *req.Category == "" {
				// Explicit empty slug detaches the category
				title.Category = nil
				title.CategoryID = nil
			} else {
				category, ok := resolveCategorySlug(c, db, *req.Category)
				if !ok {
					return
				}
				title.Category = category
				title.CategoryID = &category.ID
			}
		}
		if err := db.Save(&title).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "A title with this name already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update title"})
			return
		}
		// Replace the genre set as a whole when one was supplied
		if req.Genre != nil {
			genres, ok := resolveGenreSlugs(c, db, *req.Genre)
			if !ok {
				return
			}
			if err := db.Model(&title).Association("Genres").Replace(genres); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update genres"})
				return
			}
			title.Genres = genres
		}
		invalidateTitleCache(rdb, title.ID) // Cached reads are stale now
		ratings, err := titleRatings(db, []uint{title.ID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute rating"})
			return
		}
		c.JSON(http.StatusOK, titleResponse(title, ratingFor(ratings, title.ID)))
	}
}

// DeleteTitleHandler removes a title; its reviews and their comments cascade away
func DeleteTitleHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("title_id")) // Parse the path segment
		if err != nil || id < 1 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Title not found"})
			return
		}
		var title domain.Title // Fetch the existing title
		if err := db.First(&title, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Title not found"})
			return
		}
		if err := db.Delete(&title).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete title"})
			return
		}
		// Log the removal
		logrus.WithFields(logrus.Fields{
			"title_id": title.ID,   // Removed title ID
			"name":     title.Name, // Removed title name
		}).Info("Title deleted")
		invalidateTitleCache(rdb, title.ID) // Cached reads are stale now
		c.Status(http.StatusNoContent)
	}
}
