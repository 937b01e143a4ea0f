package api

import (
	"errors"                   // Sentinel error checks
	"net/http"                 // HTTP status codes
	"reviewdb/internal/domain" // Importing domain models
	"reviewdb/internal/utils"  // Utility functions
	"time"                     // Token lifetime

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Sender dispatches confirmation-code emails. Satisfied by mailer.Mailer;
// tests substitute a recording stub.
type Sender interface {
	Send(to, subject, body string) error
}

// EmailRequest is the body of the code-request endpoint
type EmailRequest struct {
	Email string `json:"email" binding:"required,email"` // Address to send the code to
}

// TokenRequest is the body of the token-exchange endpoint
type TokenRequest struct {
	Email            string `json:"email" binding:"required"`             // Registered email
	ConfirmationCode string `json:"confirmation_code" binding:"required"` // Code from the email
}

// AuthResponse carries the issued access token
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

// RequestCodeHandler issues a confirmation code for an email address.
// Unknown addresses get a fresh account with username equal to the email;
// known addresses get their previous code overwritten. The code itself only
// ever leaves the system by email, never in the response body.
func RequestCodeHandler(db *gorm.DB, sender Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req EmailRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// Missing or malformed email address
			c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email is required"})
			return
		}
		// Generate a fresh 6-character confirmation code
		code, err := utils.GenerateConfirmationCode()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate confirmation code"})
			return
		}
		var subject, body string // Email content, differs for new vs returning users
		var user domain.User
		err = db.Where("email = ?", req.Email).First(&user).Error
		switch {
		case err == nil:
			// Returning user: overwrite the previous code, invalidating it
			if err := db.Model(&user).Update("confirmation_code", code).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store confirmation code"})
				return
			}
			subject = "Your reviewdb confirmation code"
			body = "Confirmation code: " + code
		case errors.Is(err, gorm.ErrRecordNotFound):
			// New user: the username defaults to the email string, so a clash
			// means someone else already registered under that name
			var clash domain.User
			if err := db.Where("username = ?", req.Email).First(&clash).Error; err == nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Username derived from this email is already taken"})
				return
			}
			user = domain.User{
				Username:         req.Email,       // Username defaults to the email
				Email:            req.Email,       // Email address
				Role:             domain.RoleUser, // Everyone starts as a plain user
				ConfirmationCode: &code,           // Code for the first login
			}
			if err := db.Create(&user).Error; err != nil {
				// A concurrent request won the unique-email race
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					c.JSON(http.StatusConflict, gin.H{"error": "A user with this email already exists"})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
				return
			}
			subject = "Welcome to reviewdb"
			body = "Thanks for registering. Confirmation code: " + code
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up user"})
			return
		}
		// Best-effort delivery: a mail outage must never block the handshake
		if err := sender.Send(req.Email, subject, body); err != nil {
			logrus.WithFields(logrus.Fields{
				"email": req.Email,   // Recipient
				"error": err.Error(), // Delivery error
			}).Warn("Confirmation email not delivered")
		}
		// Echo the email back; the code itself is never returned
		c.JSON(http.StatusOK, gin.H{"email": req.Email})
	}
}

// IssueTokenHandler exchanges an email plus confirmation code for a JWT.
// The lookup matches both fields at once so a wrong code and an unknown email
// produce the same 404, disclosing nothing about which one was wrong.
func IssueTokenHandler(db *gorm.DB, jwtSecret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TokenRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email and confirmation code are required"})
			return
		}
		var user domain.User // Look up by both fields exactly
		if err := db.Where("email = ? AND confirmation_code = ?", req.Email, req.ConfirmationCode).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No user matches the given email and confirmation code"})
			return
		}
		// Generate the access token
		token, err := utils.GenerateJWT(user.ID, jwtSecret, ttl)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}
