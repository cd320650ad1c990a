package handlers

import (
	"backend/models"
	"backend/services"
	"backend/storage"
	"backend/utils"
	"database/sql"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthClaims validates the Authorization header and returns the token claims.
// On failure it writes the error response and returns ok = false.
func AuthClaims(c *gin.Context) (jwt.MapClaims, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
		return nil, false
	}

	claims, err := utils.TokenClaims(header)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
		return nil, false
	}
	return claims, true
}

// CreateUserFromIdentity syncs the signed-in identity-provider user into the
// local users table.
// @Summary Sync signed-in user
// @Description Validates the bearer token, fetches the provider profile and creates the local user row if missing. Idempotent.
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Success 201 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/auth/create-user [post]
func CreateUserFromIdentity(db *sql.DB, identity *services.IdentityClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := AuthClaims(c)
		if !ok {
			return
		}

		clerkID := utils.ClaimString(claims, "sub")
		if clerkID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is missing the user ID claim"})
			return
		}

		// Existing mapping: nothing to do beyond a sign-in touch.
		if _, err := storage.GetUserByClerkID(db, clerkID); err == nil {
			if err := storage.TouchLastSignIn(db, clerkID); err != nil {
				log.Printf("Failed to update last sign-in for %s: %v", clerkID, err)
			}
			c.JSON(http.StatusOK, gin.H{"message": "User already exists"})
			return
		} else if err != sql.ErrNoRows {
			log.Printf("Error looking up user by clerk_id: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up user"})
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		profile, err := identity.GetUser(ctx, clerkID)
		if err != nil {
			log.Printf("Identity provider lookup failed for %s: %v", clerkID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user profile"})
			return
		}

		now := time.Now()
		user := models.User{
			ID:             uuid.NewString(),
			ClerkID:        profile.ID,
			Email:          profile.Email,
			Name:           strings.TrimSpace(profile.FirstName + " " + profile.LastName),
			FirstName:      profile.FirstName,
			LastName:       profile.LastName,
			Username:       profile.Username,
			ProfilePicture: profile.ProfilePicture,
			EmailVerified:  profile.EmailVerified,
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		if _, err := storage.InsertUser(db, &user); err != nil {
			// A concurrent sync can win the race on the unique clerk_id.
			if strings.Contains(err.Error(), "duplicate key") {
				c.JSON(http.StatusOK, gin.H{"message": "User already exists"})
				return
			}
			log.Printf("Error inserting user: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}

		c.JSON(http.StatusCreated, user)

		logEntry := models.ActivityLog{
			EventContext:  "user",
			EventName:     "create",
			Description:   "Synced user from identity provider",
			UserName:      user.Name,
			IPAddress:     c.ClientIP(),
			CreatedAt:     time.Now(),
			AffectedName:  user.Name,
			AffectedEmail: user.Email,
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			log.Printf("Failed to log activity: %v", logErr)
		}
	}
}
