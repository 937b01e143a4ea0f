package api

import (
	"errors"                   // Sentinel error checks
	"net/http"                 // HTTP status codes
	"reviewdb/internal/domain" // Importing domain models
	"reviewdb/internal/policy" // Authorization decisions
	"strconv"                  // String conversion
	"time"                     // Publication timestamps

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// ReviewResponse is the review shape returned by the API
type ReviewResponse struct {
	ID      uint      `json:"id"`       // Review ID
	Text    string    `json:"text"`     // Review body
	Author  string    `json:"author"`   // Author username
	Score   int       `json:"score"`    // Score in [1,10]
	Title   uint      `json:"title"`    // Parent title ID
	PubDate time.Time `json:"pub_date"` // Publication timestamp
}

// reviewResponse maps a review (with Author preloaded) to its API shape
func reviewResponse(r domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,
		Text:    r.Text,
		Author:  r.Author.Username,
		Score:   r.Score,
		Title:   r.TitleID,
		PubDate: r.CreatedAt,
	}
}

// ReviewPayload is the review write shape. The author never comes from the
// payload; it is always the authenticated requester.
type ReviewPayload struct {
	Text  string `json:"text" binding:"required"`  // Review body
	Score *int   `json:"score" binding:"required"` // Score in [1,10]
}

// ReviewUpdatePayload is the partial-update shape
type ReviewUpdatePayload struct {
	Text  *string `json:"text"`  // Review body
	Score *int    `json:"score"` // Score in [1,10]
}

// resolveTitle loads the title named by the title_id path segment.
// Every nested operation starts here: a missing parent is a 404 regardless
// of what the rest of the request looks like.
func resolveTitle(c *gin.Context, db *gorm.DB) (*domain.Title, bool) {
	id, err := strconv.Atoi(c.Param("title_id")) // Parse the path segment
	if err != nil || id < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Title not found"})
		return nil, false
	}
	var title domain.Title // Fetch the parent title
	if err := db.First(&title, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Title not found"})
		return nil, false
	}
	return &title, true
}

// findReview loads a review scoped to its parent title
func findReview(c *gin.Context, db *gorm.DB, titleID uint) (*domain.Review, bool) {
	id, err := strconv.Atoi(c.Param("review_id")) // Parse the path segment
	if err != nil || id < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return nil, false
	}
	var review domain.Review // Scoped to the parent so a foreign review 404s
	if err := db.Preload("Author").Where("title_id = ?", titleID).First(&review, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return nil, false
	}
	return &review, true
}

// ListReviewsHandler returns the reviews of one title, oldest first
func ListReviewsHandler(db *gorm.DB, defaultPageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		title, ok := resolveTitle(c, db) // Resolve the parent from the path
		if !ok {
			return
		}
		pp := parsePagination(c, defaultPageSize) // Pagination params
		var total int64                           // Total review count for this title
		if err := db.Model(&domain.Review{}).Where("title_id = ?", title.ID).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count reviews"})
			return
		}
		var reviews []domain.Review // Slice to hold reviews
		if err := db.Preload("Author").Where("title_id = ?", title.ID).
			Order("created_at").Offset(pp.Offset).Limit(pp.PageSize).
			Find(&reviews).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
			return
		}
		// Map reviews to response format
		resp := make([]ReviewResponse, len(reviews))
		for i, r := range reviews {
			resp[i] = reviewResponse(r)
		}
		c.JSON(http.StatusOK, gin.H{
			"reviews":     resp,                           // List of reviews
			"page":        pp.Page,                        // Current page
			"page_size":   pp.PageSize,                    // Page size
			"total":       total,                          // Total number of reviews
			"total_pages": totalPages(total, pp.PageSize), // Total pages
		})
	}
}

// CreateReviewHandler posts a review for the title in the path. One review
// per author per title: the pre-check gives the friendly message, the unique
// index catches the race the pre-check cannot.
func CreateReviewHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		title, ok := resolveTitle(c, db) // Resolve the parent from the path
		if !ok {
			return
		}
		user, ok := currentUser(c, db) // The author is always the requester
		if !ok {
			return
		}
		var req ReviewPayload // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Text and score are required"})
			return
		}
		// Scores live in [1,10]
		if err := domain.ValidateScore(*req.Score); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// Pre-check the one-review invariant for a friendly error
		var existing domain.Review
		if err := db.Where("author_id = ? AND title_id = ?", user.ID, title.ID).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "a user may leave only one review per target"})
			return
		}
		review := domain.Review{
			Text:     req.Text,   // Review body
			Score:    *req.Score, // Validated score
			AuthorID: user.ID,    // Forced to the requester, payload ignored
			TitleID:  title.ID,   // Forced to the path parent
		}
		if err := db.Create(&review).Error; err != nil {
			// A concurrent request won the unique-index race
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "A review for this title already exists"})
				return
			}
			logrus.WithFields(logrus.Fields{
				"author_id": user.ID,     // Review author
				"title_id":  title.ID,    // Target title
				"error":     err.Error(), // Error message
			}).Error("Failed to create review")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review"})
			return
		}
		review.Author = *user               // For the response shape
		invalidateTitleCache(rdb, title.ID) // The title's rating changed
		// Log the new review
		logrus.WithFields(logrus.Fields{
			"author":   user.Username, // Review author
			"title_id": title.ID,      // Target title
			"score":    review.Score,  // Given score
		}).Info("Review posted")
		c.JSON(http.StatusCreated, reviewResponse(review))
	}
}

// GetReviewHandler returns one review of one title
func GetReviewHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		title, ok := resolveTitle(c, db) // Resolve the parent from the path
		if !ok {
			return
		}
		review, ok := findReview(c, db, title.ID) // Scoped lookup
		if !ok {
			return
		}
		c.JSON(http.StatusOK, reviewResponse(*review))
	}
}

// UpdateReviewHandler partially updates a review. Only the author, a
// moderator or an admin may do so; the parent title is re-asserted from the
// path so a payload cannot move the review elsewhere.
func UpdateReviewHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		title, ok := resolveTitle(c, db) // Resolve the parent from the path
		if !ok {
			return
		}
		review, ok := findReview(c, db, title.ID) // Scoped lookup
		if !ok {
			return
		}
		user, ok := currentUser(c, db) // Load the requester for the policy check
		if !ok {
			return
		}
		if !policy.CanModifyContent(user, review.AuthorID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to modify this review"})
			return
		}
		var req ReviewUpdatePayload // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Apply only the fields present in the payload
		if req.Text != nil {
			review.Text = *req.Text
		}
		if req.Score != nil {
			if err := domain.ValidateScore(*req.Score); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			review.Score = *req.Score
		}
		review.TitleID = title.ID // Re-assert the parent from the path
		if err := db.Save(review).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update review"})
			return
		}
		invalidateTitleCache(rdb, title.ID) // The title's rating may have changed
		c.JSON(http.StatusOK, reviewResponse(*review))
	}
}

// DeleteReviewHandler removes a review; its comments cascade away
func DeleteReviewHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		title, ok := resolveTitle(c, db) // Resolve the parent from the path
		if !ok {
			return
		}
		review, ok := findReview(c, db, title.ID) // Scoped lookup
		if !ok {
			return
		}
		user, ok := currentUser(c, db) // Load the requester for the policy check
		if !ok {
			return
		}
		if !policy.CanModifyContent(user, review.AuthorID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to delete this review"})
			return
		}
		if err := db.Delete(review).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete review"})
			return
		}
		invalidateTitleCache(rdb, title.ID) // The title's rating changed
		// Log the removal
		logrus.WithFields(logrus.Fields{
			"review_id": review.ID,     // Removed review
			"by":        user.Username, // Requester
		}).Info("Review deleted")
		c.Status(http.StatusNoContent)
	}
}
