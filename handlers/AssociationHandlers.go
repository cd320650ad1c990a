package handlers

import (
	"backend/models"
	"backend/repository"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const userMsmeColumns = `id, COALESCE(user_id::text, ''), msme_id, COALESCE(email, ''),
	COALESCE(name, ''), COALESCE(department, ''), COALESCE(access_level, ''),
	COALESCE(status, ''), COALESCE(invited_by, ''), is_default, joined_at`

func scanUserMsmeRow(row interface{ Scan(...interface{}) error }, um *models.UserMsme) error {
	return row.Scan(
		&um.ID, &um.UserID, &um.MsmeID, &um.Email, &um.Name, &um.Department,
		&um.AccessLevel, &um.Status, &um.InvitedBy, &um.IsDefault, &um.JoinedAt,
	)
}

func validAccessLevel(level string) bool {
	switch level {
	case models.AccessLevelAdmin, models.AccessLevelEmployee, models.AccessLevelOperator:
		return true
	}
	return false
}

// GetAssociations lists user/organization associations, optionally filtered.
// @Summary List associations
// @Tags Associations
// @Produce json
// @Param user_id query string false "Filter by user ID"
// @Param msme_id query string false "Filter by organization ID"
// @Param association_id query string false "Fetch a single association"
// @Success 200 {array} models.UserMsme
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/usermsme [get]
func GetAssociations(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if associationID := c.Query("association_id"); associationID != "" {
			var um models.UserMsme
			row := db.QueryRow(`SELECT `+userMsmeColumns+` FROM user_msme WHERE id = $1`, associationID)
			if err := scanUserMsmeRow(row, &um); err != nil {
				if err == sql.ErrNoRows {
					c.JSON(http.StatusNotFound, gin.H{"error": "Association not found"})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch association", "details": err.Error()})
				return
			}
			c.JSON(http.StatusOK, um)
			return
		}

		query := `SELECT ` + userMsmeColumns + ` FROM user_msme`
		var conditions []string
		var args []interface{}
		placeholderIndex := 1

		if userID := c.Query("user_id"); userID != "" {
			conditions = append(conditions, fmt.Sprintf("user_id = $%d", placeholderIndex))
			args = append(args, userID)
			placeholderIndex++
		}
		if msmeID := c.Query("msme_id"); msmeID != "" {
			conditions = append(conditions, fmt.Sprintf("msme_id = $%d", placeholderIndex))
			args = append(args, msmeID)
			placeholderIndex++
		}
		if len(conditions) > 0 {
			query += " WHERE " + strings.Join(conditions, " AND ")
		}
		query += " ORDER BY joined_at DESC"

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch associations", "details": err.Error()})
			return
		}
		defer rows.Close()

		var associations []models.UserMsme
		for rows.Next() {
			var um models.UserMsme
			if err := scanUserMsmeRow(rows, &um); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan association", "details": err.Error()})
				return
			}
			associations = append(associations, um)
		}

		if associations == nil {
			associations = []models.UserMsme{}
		}
		c.JSON(http.StatusOK, associations)
	}
}

// CreateAssociation links a user to an organization.
// Setting is_default clears the default flag on the user's other associations.
// @Summary Create association
// @Tags Associations
// @Accept json
// @Produce json
// @Param body body models.CreateAssociationRequest true "Association details"
// @Success 201 {object} models.UserMsme
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/usermsme [post]
func CreateAssociation(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateAssociationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if req.UserID == "" || req.MsmeID == "" || req.AccessLevel == "" || req.Email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id, msme_id, email and access_level are required"})
			return
		}
		if err := repository.ValidateEmail(req.Email); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !validAccessLevel(req.AccessLevel) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "access_level must be admin, employee or operator"})
			return
		}

		if req.IsDefault {
			if _, err := db.Exec(`UPDATE user_msme SET is_default = false WHERE user_id = $1`, req.UserID); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear default association", "details": err.Error()})
				return
			}
		}

		um := models.UserMsme{
			ID:          uuid.NewString(),
			UserID:      req.UserID,
			MsmeID:      req.MsmeID,
			Email:       strings.ToLower(strings.TrimSpace(req.Email)),
			Name:        req.Name,
			Department:  req.Department,
			AccessLevel: req.AccessLevel,
			Status:      "active",
			InvitedBy:   req.InvitedBy,
			IsDefault:   req.IsDefault,
			JoinedAt:    time.Now(),
		}

		_, err := db.Exec(`
			INSERT INTO user_msme (id, user_id, msme_id, email, name, department, access_level, status, invited_by, is_default, joined_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			um.ID, um.UserID, um.MsmeID, um.Email, um.Name, um.Department,
			um.AccessLevel, um.Status, um.InvitedBy, um.IsDefault, um.JoinedAt,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create association", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, um)

		logEntry := models.ActivityLog{
			EventContext:  "user_msme",
			EventName:     "create",
			Description:   "Added " + um.Email + " with " + um.AccessLevel + " access",
			UserName:      um.InvitedBy,
			IPAddress:     c.ClientIP(),
			CreatedAt:     time.Now(),
			AffectedEmail: um.Email,
			MsmeID:        um.MsmeID,
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			log.Printf("Failed to log activity: %v", logErr)
		}
	}
}

// DeleteAssociation removes a user/organization link.
// @Summary Delete association
// @Tags Associations
// @Produce json
// @Param association_id query string true "Association ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/usermsme [delete]
func DeleteAssociation(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		associationID := c.Query("association_id")
		if associationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "association_id is required"})
			return
		}

		var email, msmeID string
		err := db.QueryRow(`SELECT COALESCE(email, ''), msme_id FROM user_msme WHERE id = $1`, associationID).Scan(&email, &msmeID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Association not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		result, err := db.Exec(`DELETE FROM user_msme WHERE id = $1`, associationID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete association", "details": err.Error()})
			return
		}
		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Association not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Association deleted successfully"})

		logEntry := models.ActivityLog{
			EventContext:  "user_msme",
			EventName:     "delete",
			Description:   "Removed " + email + " from organization",
			IPAddress:     c.ClientIP(),
			CreatedAt:     time.Now(),
			AffectedEmail: email,
			MsmeID:        msmeID,
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			log.Printf("Failed to log activity: %v", logErr)
		}
	}
}
