package handlers

import (
	"backend/models"
	"backend/repository"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// GetMsmeAdmin returns one organization or all of them.
// @Summary Admin: get organizations
// @Tags MSME Admin
// @Accept json
// @Produce json
// @Param msme_id query string false "Organization ID"
// @Success 200 {array} models.Msme
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/msme-admin [get]
func GetMsmeAdmin(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if msmeID := c.Query("msme_id"); msmeID != "" {
			var msme models.Msme
			row := db.QueryRow(`SELECT `+msmeColumns+` FROM msme WHERE id = $1`, msmeID)
			if err := scanMsmeRow(row, &msme); err != nil {
				if err == sql.ErrNoRows {
					c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch organization", "details": err.Error()})
				return
			}
			c.JSON(http.StatusOK, msme)
			return
		}

		rows, err := db.Query(`SELECT ` + msmeColumns + ` FROM msme ORDER BY created_at DESC`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch organizations", "details": err.Error()})
			return
		}
		defer rows.Close()

		var msmes []models.Msme
		for rows.Next() {
			var msme models.Msme
			if err := scanMsmeRow(rows, &msme); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan organization", "details": err.Error()})
				return
			}
			msmes = append(msmes, msme)
		}

		if msmes == nil {
			msmes = []models.Msme{}
		}
		c.JSON(http.StatusOK, msmes)
	}
}

// UpdateMsmeAdmin updates an organization's profile fields.
// @Summary Admin: update organization
// @Tags MSME Admin
// @Accept json
// @Produce json
// @Param msme_id query string true "Organization ID"
// @Param body body models.Msme true "Fields to update"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/msme-admin [put]
func UpdateMsmeAdmin(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		msmeID := c.Query("msme_id")
		if msmeID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "msme_id is required"})
			return
		}

		var req models.Msme
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var existingID string
		err := db.QueryRow(`SELECT id FROM msme WHERE id = $1`, msmeID).Scan(&existingID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
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

		addField("name", req.Name)
		if req.Subdomain != "" {
			subdomain := repository.NormalizeSubdomain(req.Subdomain)
			if err := repository.ValidateSubdomain(subdomain); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			addField("subdomain", subdomain)
		}
		addField("description", req.Description)
		addField("address", req.Address)
		addField("city", req.City)
		addField("state", req.State)
		addField("country", req.Country)
		addField("zip_code", req.ZipCode)
		addField("contact_number", req.ContactNumber)
		addField("contact_email", req.ContactEmail)
		addField("year_established", req.YearEstablished)
		addField("working_hours", req.WorkingHours)
		addField("logo", req.Logo)
		addField("industry", req.Industry)
		addField("services", req.Services)
		addField("pricing", req.Pricing)
		addField("gst", req.GST)
		if req.Ratings > 0 {
			updates = append(updates, fmt.Sprintf("ratings = $%d", placeholderIndex))
			fields = append(fields, req.Ratings)
			placeholderIndex++
		}

		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
			return
		}

		sqlStatement := fmt.Sprintf("UPDATE msme SET %s WHERE id = $%d", strings.Join(updates, ", "), placeholderIndex)
		fields = append(fields, msmeID)

		if _, err := db.Exec(sqlStatement, fields...); err != nil {
			if strings.Contains(err.Error(), "duplicate key") {
				c.JSON(http.StatusConflict, gin.H{"error": "Subdomain is already in use"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Organization updated successfully"})

		logEntry := models.ActivityLog{
			EventContext: "msme",
			EventName:    "update",
			Description:  "Updated organization profile",
			UserName:     c.GetString("admin_email"),
			IPAddress:    c.ClientIP(),
			CreatedAt:    time.Now(),
			MsmeID:       msmeID,
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			log.Printf("Failed to log activity: %v", logErr)
		}
	}
}

// DeleteMsmeAdmin removes an organization and its associations.
// @Summary Admin: delete organization
// @Tags MSME Admin
// @Accept json
// @Produce json
// @Param msme_id query string true "Organization ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/msme-admin [delete]
func DeleteMsmeAdmin(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		msmeID := c.Query("msme_id")
		if msmeID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "msme_id is required"})
			return
		}

		var name, email string
		err := db.QueryRow(`SELECT name, COALESCE(contact_email, '') FROM msme WHERE id = $1`, msmeID).Scan(&name, &email)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if _, err := db.Exec(`DELETE FROM user_msme WHERE msme_id = $1`, msmeID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete associations", "details": err.Error()})
			return
		}

		result, err := db.Exec(`DELETE FROM msme WHERE id = $1`, msmeID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete organization", "details": err.Error()})
			return
		}
		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Organization deleted successfully"})

		logEntry := models.ActivityLog{
			EventContext:  "msme",
			EventName:     "delete",
			Description:   "Deleted organization " + name,
			UserName:      c.GetString("admin_email"),
			IPAddress:     c.ClientIP(),
			CreatedAt:     time.Now(),
			AffectedName:  name,
			AffectedEmail: email,
			MsmeID:        msmeID,
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			log.Printf("Failed to log activity: %v", logErr)
		}
	}
}

// ExportMsmesXLSX streams the organization register as an .xlsx workbook.
// @Summary Admin: export organizations
// @Tags MSME Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "Excel workbook"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/msme-admin/export [get]
func ExportMsmesXLSX(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := db.Query(`SELECT ` + msmeColumns + ` FROM msme ORDER BY created_at ASC`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch organizations", "details": err.Error()})
			return
		}
		defer rows.Close()

		f := excelize.NewFile()
		defer func() {
			if err := f.Close(); err != nil {
				log.Printf("Error closing Excel file: %v", err)
			}
		}()

		sheet := "Organizations"
		index, err := f.NewSheet(sheet)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating sheet"})
			return
		}
		f.SetActiveSheet(index)
		f.DeleteSheet("Sheet1")

		headers := []string{
			"ID", "Name", "Subdomain", "City", "State", "Country", "Contact Number",
			"Contact Email", "Year Established", "Industry", "Services", "Ratings",
			"GST", "Active", "Created At",
		}
		for i, header := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, header)
		}

		headerStyle, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
		})
		if err == nil {
			lastCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
			f.SetCellStyle(sheet, "A1", lastCell, headerStyle)
		}

		rowIdx := 2
		for rows.Next() {
			var msme models.Msme
			if err := scanMsmeRow(rows, &msme); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan organization", "details": err.Error()})
				return
			}

			values := []interface{}{
				msme.ID, msme.Name, msme.Subdomain, msme.City, msme.State, msme.Country,
				msme.ContactNumber, msme.ContactEmail, msme.YearEstablished, msme.Industry,
				msme.Services, msme.Ratings, msme.GST, msme.IsActive,
				msme.CreatedAt.Format("2006-01-02"),
			}
			for i, value := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, rowIdx)
				f.SetCellValue(sheet, cell, value)
			}
			rowIdx++
		}

		filename := fmt.Sprintf("organizations_export_%s.xlsx", time.Now().Format("20060102"))
		escaped := url.PathEscape(filename)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", filename, escaped))

		if err := f.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing Excel file"})
			return
		}
	}
}
