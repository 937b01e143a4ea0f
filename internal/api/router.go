package api

import (
	"reviewdb/internal/config"     // Application configuration
	"reviewdb/internal/middleware" // Auth middleware
	"time"                         // Token lifetime

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// NewRouter wires every API route with its middleware chain. Reads are open
// to anonymous requesters; writes require a token and, where noted, the
// admin role.
func NewRouter(db *gorm.DB, rdb *redis.Client, sender Sender, cfg *config.Config) *gin.Engine {
	r := gin.Default() // Gin router instance

	auth := middleware.JWTAuthMiddleware(cfg.JWTSecret) // Required-auth middleware
	adminOnly := middleware.AdminOnlyMiddleware(db)     // Admin gate on top of auth
	ttl := time.Duration(cfg.JWTTTLHours) * time.Hour   // Access token lifetime

	v1 := r.Group("/api/v1") // Versioned prefix

	// Authentication handshake
	v1.POST("/auth/email", RequestCodeHandler(db, sender))
	v1.POST("/auth/token", IssueTokenHandler(db, cfg.JWTSecret, ttl))

	// User management: /me is self-service, the rest is admin-only
	users := v1.Group("/users", auth)
	users.GET("/me", MeHandler(db))
	users.PATCH("/me", UpdateMeHandler(db))
	users.GET("", adminOnly, ListUsersHandler(db, cfg.PageSize))
	users.POST("", adminOnly, CreateUserHandler(db))
	users.GET("/:username", adminOnly, GetUserHandler(db))
	users.PATCH("/:username", adminOnly, UpdateUserHandler(db))
	users.DELETE("/:username", adminOnly, DeleteUserHandler(db))

	// Categories: open reads, admin writes, no update operation
	categories := v1.Group("/categories")
	categories.GET("", ListCategoriesHandler(db, cfg.PageSize))
	categories.POST("", auth, adminOnly, CreateCategoryHandler(db, rdb))
	categories.DELETE("/:slug", auth, adminOnly, DeleteCategoryHandler(db, rdb))

	// Genres: open reads, admin writes, no update operation
	genres := v1.Group("/genres")
	genres.GET("", ListGenresHandler(db, cfg.PageSize))
	genres.POST("", auth, adminOnly, CreateGenreHandler(db, rdb))
	genres.DELETE("/:slug", auth, adminOnly, DeleteGenreHandler(db, rdb))

	// Titles: open reads with filters and cached ratings, admin writes
	titles := v1.Group("/titles")
	titles.GET("", ListTitlesHandler(db, rdb, cfg.PageSize))
	titles.GET("/:title_id", GetTitleHandler(db, rdb))
	titles.POST("", auth, adminOnly, CreateTitleHandler(db, rdb))
	titles.PATCH("/:title_id", auth, adminOnly, UpdateTitleHandler(db, rdb))
	titles.DELETE("/:title_id", auth, adminOnly, DeleteTitleHandler(db, rdb))

	// Reviews nested under titles: open reads, author/moderator/admin writes
	titles.GET("/:title_id/reviews", ListReviewsHandler(db, cfg.PageSize))
	titles.POST("/:title_id/reviews", auth, CreateReviewHandler(db, rdb))
	titles.GET("/:title_id/reviews/:review_id", GetReviewHandler(db))
	titles.PATCH("/:title_id/reviews/:review_id", auth, UpdateReviewHandler(db, rdb))
	titles.DELETE("/:title_id/reviews/:review_id", auth, DeleteReviewHandler(db, rdb))

	// Comments nested under reviews: same policy, scoped to the review
	titles.GET("/:title_id/reviews/:review_id/comments", ListCommentsHandler(db, cfg.PageSize))
	titles.POST("/:title_id/reviews/:review_id/comments", auth, CreateCommentHandler(db))
	titles.GET("/:title_id/reviews/:review_id/comments/:comment_id", GetCommentHandler(db))
	titles.PATCH("/:title_id/reviews/:review_id/comments/:comment_id", auth, UpdateCommentHandler(db))
	titles.DELETE("/:title_id/reviews/:review_id/comments/:comment_id", auth, DeleteCommentHandler(db))

	return r
}
