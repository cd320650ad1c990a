package handlers

import (
	"backend/models"
	"database/sql"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SaveActivityLog appends an audit row. Failures are logged by callers, never
// surfaced to the client after the main response was written.
func SaveActivityLog(db *sql.DB, log models.ActivityLog) error {
	query := `
    INSERT INTO activity_logs (
        created_at, user_name, event_context, ip_address,
        description, event_name, affected_name, affected_email, msme_id
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''))`
	_, err := db.Exec(query,
		log.CreatedAt, log.UserName, log.EventContext, log.IPAddress,
		log.Description, log.EventName, log.AffectedName, log.AffectedEmail, log.MsmeID,
	)
	return err
}

// GetActivityLogsHandler godoc
// @Summary      Get activity logs
// @Tags         activity-logs
// @Param        page     query  int     false  "Page"
// @Param        limit    query  int     false  "Limit"
// @Param        msme_id  query  string  false  "Filter by organization"
// @Success      200      {object}  object
// @Router       /api/logs [get]
func GetActivityLogsHandler(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}

		limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if err != nil || limit < 1 {
			limit = 10
		}

		offset := (page - 1) * limit

		query := gdb.Model(&models.ActivityLogGorm{})
		if msmeID := c.Query("msme_id"); msmeID != "" {
			query = query.Where("msme_id = ?", msmeID)
		}
		if eventContext := c.Query("event_context"); eventContext != "" {
			query = query.Where("event_context = ?", eventContext)
		}

		var totalRecords int64
		if err := query.Count(&totalRecords).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting logs"})
			return
		}

		var logs []models.ActivityLogGorm
		if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&logs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error querying logs"})
			return
		}

		totalPages := int(math.Ceil(float64(totalRecords) / float64(limit)))

		c.JSON(http.StatusOK, gin.H{
			"logs": logs,
			"pagination": gin.H{
				"current_page":  page,
				"page_size":     limit,
				"total_records": totalRecords,
				"total_pages":   totalPages,
				"has_next":      page < totalPages,
				"has_prev":      page > 1,
			},
		})
	}
}
