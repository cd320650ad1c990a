package handlers

import (
	"backend/models"
	"backend/repository"
	"backend/storage"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const userColumns = `id, COALESCE(clerk_id, ''), email, COALESCE(name, ''),
	COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(username, ''),
	COALESCE(profile_picture, ''), COALESCE(bio, ''), email_verified,
	last_sign_in_at, is_active, created_at, updated_at`

func scanUserRow(row interface{ Scan(...interface{}) error }, user *models.User) error {
	var lastSignIn sql.NullTime
	err := row.Scan(
		&user.ID, &user.ClerkID, &user.Email, &user.Name, &user.FirstName,
		&user.LastName, &user.Username, &user.ProfilePicture, &user.Bio,
		&user.EmailVerified, &lastSignIn, &user.IsActive, &user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if lastSignIn.Valid {
		user.LastSignInAt = &lastSignIn.Time
	}
	return nil
}

// GetUsersAdmin returns one user or all users.
// @Summary Admin: get users
// @Tags Users
// @Produce json
// @Param user_id query string false "User ID"
// @Success 200 {array} models.User
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/user [get]
func GetUsersAdmin(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.Query("user_id"); userID != "" {
			var user models.User
			row := db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
			if err := scanUserRow(row, &user); err != nil {
				if err == sql.ErrNoRows {
					c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user", "details": err.Error()})
				return
			}
			c.JSON(http.StatusOK, user)
			return
		}

		rows, err := db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users", "details": err.Error()})
			return
		}
		defer rows.Close()

		var users []models.User
		for rows.Next() {
			var user models.User
			if err := scanUserRow(rows, &user); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan user", "details": err.Error()})
				return
			}
			users = append(users, user)
		}

		if users == nil {
			users = []models.User{}
		}
		c.JSON(http.StatusOK, users)
	}
}

// CreateUserAdmin creates a user record directly, bypassing the identity bridge.
// @Summary Admin: create user
// @Tags Users
// @Accept json
// @Produce json
// @Param body body models.CreateUserRequest true "User details"
// @Success 201 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/user [post]
func CreateUserAdmin(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if err := repository.ValidateEmail(email); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		name := req.Name
		if name == "" {
			name = strings.TrimSpace(req.FirstName + " " + req.LastName)
		}

		now := time.Now()
		user := models.User{
			ID:             uuid.NewString(),
			ClerkID:        req.ClerkID,
			Email:          email,
			Name:           name,
			FirstName:      req.FirstName,
			LastName:       req.LastName,
			Username:       req.Username,
			ProfilePicture: req.ProfilePicture,
			Bio:            req.Bio,
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		if _, err := storage.InsertUser(db, &user); err != nil {
			if strings.Contains(err.Error(), "duplicate key") {
				c.JSON(http.StatusConflict, gin.H{"error": "A user with this email already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, user)

		logEntry := models.ActivityLog{
			EventContext:  "user",
			EventName:     "create",
			Description:   "Admin created user " + user.Email,
			UserName:      c.GetString("admin_email"),
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

// UpdateUserAdmin updates profile fields, including is_active for soft deactivation.
// @Summary Admin: update user
// @Tags Users
// @Accept json
// @Produce json
// @Param user_id query string true "User ID"
// @Param body body models.User true "Fields to update"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/user [put]
func UpdateUserAdmin(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		var req struct {
			Email          string `json:"email"`
			FirstName      string `json:"first_name"`
			LastName       string `json:"last_name"`
			Username       string `json:"username"`
			ProfilePicture string `json:"profile_picture"`
			Bio            string `json:"bio"`
			IsActive       *bool  `json:"is_active"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var existingID string
		err := db.QueryRow(`SELECT id FROM users WHERE id = $1`, userID).Scan(&existingID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var updates []string
		var fields []interface{}
		placeholderIndex := 1

		addField := func(column, value string) {
			if value != "" {
				updates = append(updates, fmt.Sprintf("%s = $%d", column, placeholderIndex))
				fields = append(fields, value)
				placeholderIndex++
			}
		}

		if req.Email != "" {
			email := strings.ToLower(strings.TrimSpace(req.Email))
			if err := repository.ValidateEmail(email); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			addField("email", email)
		}
		addField("first_name", req.FirstName)
		addField("last_name", req.LastName)
		addField("username", req.Username)
		addField("profile_picture", req.ProfilePicture)
		addField("bio", req.Bio)
		if req.FirstName != "" || req.LastName != "" {
			addField("name", strings.TrimSpace(req.FirstName+" "+req.LastName))
		}
		if req.IsActive != nil {
			updates = append(updates, fmt.Sprintf("is_active = $%d", placeholderIndex))
			fields = append(fields, *req.IsActive)
			placeholderIndex++
		}

		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
			return
		}

		updates = append(updates, fmt.Sprintf("updated_at = $%d", placeholderIndex))
		fields = append(fields, time.Now())
		placeholderIndex++

		sqlStatement := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(updates, ", "), placeholderIndex)
		fields = append(fields, userID)

		if _, err := db.Exec(sqlStatement, fields...); err != nil {
			if strings.Contains(err.Error(), "duplicate key") {
				c.JSON(http.StatusConflict, gin.H{"error": "Email is already in use"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "User updated successfully"})

		logEntry := models.ActivityLog{
			EventContext: "user",
			EventName:    "update",
			Description:  "Admin updated user profile",
			UserName:     c.GetString("admin_email"),
			IPAddress:    c.ClientIP(),
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			log.Printf("Failed to log activity: %v", logErr)
		}
	}
}

// DeleteUserAdmin removes a user and their associations.
// @Summary Admin: delete user
// @Tags Users
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/user [delete]
func DeleteUserAdmin(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		var name, email string
		err := db.QueryRow(`SELECT COALESCE(name, ''), email FROM users WHERE id = $1`, userID).Scan(&name, &email)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if _, err := db.Exec(`DELETE FROM user_msme WHERE user_id = $1`, userID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete associations", "details": err.Error()})
			return
		}

		result, err := db.Exec(`DELETE FROM users WHERE id = $1`, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user", "details": err.Error()})
			return
		}
		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})

		logEntry := models.ActivityLog{
			EventContext:  "user",
			EventName:     "delete",
			Description:   "Admin deleted user " + email,
			UserName:      c.GetString("admin_email"),
			IPAddress:     c.ClientIP(),
			CreatedAt:     time.Now(),
			AffectedName:  name,
			AffectedEmail: email,
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			log.Printf("Failed to log activity: %v", logErr)
		}
	}
}
