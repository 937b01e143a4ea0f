package api

import (
	"net/http"                 // HTTP status codes
	"reviewdb/internal/domain" // Importing domain models
	"reviewdb/internal/policy" // Authorization decisions
	"strconv"                  // String conversion
	"time"                     // Publication timestamps

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// CommentResponse is the comment shape returned by the API
type CommentResponse struct {
	ID      uint      `json:"id"`       // Comment ID
	Text    string    `json:"text"`     // Comment body
	Author  string    `json:"author"`   // Author username
	Review  uint      `json:"review"`   // Parent review ID
	PubDate time.Time `json:"pub_date"` // Publication timestamp
}

// commentResponse maps a comment (with Author preloaded) to its API shape
func commentResponse(cm domain.Comment) CommentResponse {
	return CommentResponse{
		ID:      cm.ID,
		Text:    cm.Text,
		Author:  cm.Author.Username,
		Review:  cm.ReviewID,
		PubDate: cm.CreatedAt,
	}
}

// CommentPayload is the comment write shape. Author and review come from the
// token and the path, never from the body.
type CommentPayload struct {
	Text string `json:"text" binding:"required"` // Comment body
}

// resolveReview loads the review named by the path, scoped to its title.
// Both parents have to resolve before any comment operation runs.
func resolveReview(c *gin.Context, db *gorm.DB) (*domain.Review, bool) {
	title, ok := resolveTitle(c, db) // The title segment resolves first
	if !ok {
		return nil, false
	}
	id, err := strconv.Atoi(c.Param("review_id")) // Parse the review segment
	if err != nil || id < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return nil, false
	}
	var review domain.Review // Scoped to the title so a foreign review 404s
	if err := db.Where("title_id = ?", title.ID).First(&review, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return nil, false
	}
	return &review, true
}

// findComment loads a comment scoped to its parent review
func findComment(c *gin.Context, db *gorm.DB, reviewID uint) (*domain.Comment, bool) {
	id, err := strconv.Atoi(c.Param("comment_id")) // Parse the path segment
	if err != nil || id < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return nil, false
	}
	var comment domain.Comment // Scoped to the parent so a foreign comment 404s
	if err := db.Preload("Author").Where("review_id = ?", reviewID).First(&comment, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return nil, false
	}
	return &comment, true
}

// ListCommentsHandler returns the comments of one review, oldest first
func ListCommentsHandler(db *gorm.DB, defaultPageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		review, ok := resolveReview(c, db) // Resolve both parents from the path
		if !ok {
			return
		}
		pp := parsePagination(c, defaultPageSize) // Pagination params
		var total int64                           // Total comment count for this review
		if err := db.Model(&domain.Comment{}).Where("review_id = ?", review.ID).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count comments"})
			return
		}
		var comments []domain.Comment // Slice to hold comments
		if err := db.Preload("Author").Where("review_id = ?", review.ID).
			Order("created_at").Offset(pp.Offset).Limit(pp.PageSize).
			Find(&comments).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
			return
		}
		// Map comments to response format
		resp := make([]CommentResponse, len(comments))
		for i, cm := range comments {
			resp[i] = commentResponse(cm)
		}
		c.JSON(http.StatusOK, gin.H{
			"comments":    resp,                           // List of comments
			"page":        pp.Page,                        // Current page
			"page_size":   pp.PageSize,                    // Page size
			"total":       total,                          // Total number of comments
			"total_pages": totalPages(total, pp.PageSize), // Total pages
		})
	}
}

// CreateCommentHandler posts a comment on the review in the path
func CreateCommentHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		review, ok := resolveReview(c, db) // Resolve both parents from the path
		if !ok {
			return
		}
		user, ok := currentUser(c, db) // The author is always the requester
		if !ok {
			return
		}
		var req CommentPayload // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Text is required"})
			return
		}
		comment := domain.Comment{
			Text:     req.Text,  // Comment body
			AuthorID: user.ID,   // Forced to the requester, payload ignored
			ReviewID: review.ID, // Forced to the path parent
		}
		if err := db.Create(&comment).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"author_id": user.ID,     // Comment author
				"review_id": review.ID,   // Target review
				"error":     err.Error(), // Error message
			}).Error("Failed to create comment")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
			return
		}
		comment.Author = *user // For the response shape
		c.JSON(http.StatusCreated, commentResponse(comment))
	}
}

// GetCommentHandler returns one comment of one review
func GetCommentHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		review, ok := resolveReview(c, db) // Resolve both parents from the path
		if !ok {
			return
		}
		comment, ok := findComment(c, db, review.ID) // Scoped lookup
		if !ok {
			return
		}
		c.JSON(http.StatusOK, commentResponse(*comment))
	}
}

// UpdateCommentHandler partially updates a comment per the content policy.
// The parent review is re-asserted from the path; the author never changes.
func UpdateCommentHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		review, ok := resolveReview(c, db) // Resolve both parents from the path
		if !ok {
			return
		}
		comment, ok := findComment(c, db, review.ID) // Scoped lookup
		if !ok {
			return
		}
		user, ok := currentUser(c, db) // Load the requester for the policy check
		if !ok {
			return
		}
		if !policy.CanModifyContent(user, comment.AuthorID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to modify this comment"})
			return
		}
		var req CommentPayload // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Text is required"})
			return
		}
		comment.Text = req.Text     // The body is the only mutable field
		comment.ReviewID = review.ID // Re-assert the parent from the path
		if err := db.Save(comment).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
			return
		}
		c.JSON(http.StatusOK, commentResponse(*comment))
	}
}

// DeleteCommentHandler removes a comment per the content policy
func DeleteCommentHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		review, ok := resolveReview(c, db) // Resolve both parents from the path
		if !ok {
			return
		}
		comment, ok := findComment(c, db, review.ID) // Scoped lookup
		if !ok {
			return
		}
		user, ok := currentUser(c, db) // Load the requester for the policy check
		if !ok {
			return
		}
		if !policy.CanModifyContent(user, comment.AuthorID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to delete this comment"})
			return
		}
		if err := db.Delete(comment).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
