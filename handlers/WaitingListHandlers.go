package handlers

import (
	"backend/models"
	"backend/repository"
	"backend/storage"
	"database/sql"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JoinWaitingList records an interested company for later onboarding.
// Duplicate signups for the same email are accepted silently so the
// landing page form can be resubmitted without an error.
// @Summary Join the waiting list
// @Tags Waiting List
// @Accept json
// @Produce json
// @Param body body models.WaitingListRequest true "Company details"
// @Success 201 {object} models.MsmeWaitingList
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/msme/waiting-list [post]
func JoinWaitingList(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.WaitingListRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if err := repository.ValidateEmail(email); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		entry := models.MsmeWaitingListGorm{
			ID:             uuid.NewString(),
			CompanyName:    strings.TrimSpace(req.CompanyName),
			Email:          email,
			CompanyDetails: req.CompanyDetails,
			CreatedAt:      time.Now(),
		}

		var existing models.MsmeWaitingListGorm
		err := gdb.Where("email = ?", email).First(&existing).Error
		if err == nil {
			c.JSON(http.StatusCreated, existing)
			return
		}
		if err != gorm.ErrRecordNotFound {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check waiting list", "details": err.Error()})
			return
		}

		if err := gdb.Create(&entry).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join waiting list", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, entry)

		logEntry := models.ActivityLog{
			EventContext:  "waiting_list",
			EventName:     "create",
			Description:   "Company joined the waiting list",
			UserName:      entry.CompanyName,
			IPAddress:     c.ClientIP(),
			CreatedAt:     time.Now(),
			AffectedName:  entry.CompanyName,
			AffectedEmail: entry.Email,
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			log.Printf("Failed to log activity: %v", logErr)
		}
	}
}

// CheckSubdomainAvailability reports whether a subdomain is free to claim.
// Waiting list entries do not reserve a subdomain, so the check runs
// against registered organizations only.
// @Summary Check subdomain availability
// @Tags Waiting List
// @Produce json
// @Param subdomain query string true "Requested subdomain"
// @Success 200 {object} models.SubdomainCheckResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/msme/waiting-list [get]
func CheckSubdomainAvailability(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		subdomain := repository.NormalizeSubdomain(c.Query("subdomain"))
		if err := repository.ValidateSubdomain(subdomain); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		taken, err := storage.SubdomainTaken(db, subdomain)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check subdomain", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.SubdomainCheckResponse{
			Subdomain: subdomain,
			Available: !taken,
		})
	}
}

// GetWaitingListAdmin lists all waiting list entries for the admin console.
// @Summary Admin: list waiting list entries
// @Tags MSME Admin
// @Produce json
// @Success 200 {array} models.MsmeWaitingList
// @Failure 500 {object} models.ErrorResponse
// @Router /api/msme-admin/waiting-list [get]
func GetWaitingListAdmin(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var entries []models.MsmeWaitingListGorm
		if err := gdb.Order("created_at DESC").Find(&entries).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch waiting list", "details": err.Error()})
			return
		}

		if entries == nil {
			entries = []models.MsmeWaitingListGorm{}
		}
		c.JSON(http.StatusOK, entries)
	}
}
