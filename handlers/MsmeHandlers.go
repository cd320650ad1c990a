package handlers

import (
	"backend/models"
	"backend/repository"
	"backend/services"
	"backend/storage"
	"backend/utils"
	"database/sql"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func scanMsmeRow(row interface{ Scan(...interface{}) error }, msme *models.Msme) error {
	return row.Scan(
		&msme.ID, &msme.Name, &msme.Subdomain, &msme.Description, &msme.Address,
		&msme.City, &msme.State, &msme.Country, &msme.ZipCode, &msme.ContactNumber,
		&msme.ContactEmail, &msme.YearEstablished, &msme.WorkingHours, &msme.Logo,
		&msme.Industry, &msme.Services, &msme.Ratings, &msme.Pricing, &msme.GST,
		&msme.IsActive, &msme.CreatedAt,
	)
}

const msmeColumns = `id, name, subdomain, COALESCE(description, ''), COALESCE(address, ''),
	COALESCE(city, ''), COALESCE(state, ''), COALESCE(country, ''), COALESCE(zip_code, ''),
	COALESCE(contact_number, ''), COALESCE(contact_email, ''), COALESCE(year_established, ''),
	COALESCE(working_hours, ''), COALESCE(logo, ''), COALESCE(industry, ''), COALESCE(services, ''),
	COALESCE(ratings, 0), COALESCE(pricing, ''), COALESCE(gst, ''), is_active, created_at`

// GetMsmes returns the organizations owned by the caller.
// @Summary Get own organizations
// @Description Returns organizations whose contact email matches the caller. Requires Authorization header.
// @Tags MSME
// @Accept json
// @Produce json
// @Param email query string false "Owner email (defaults to token email)"
// @Success 200 {array} models.Msme
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/msme [get]
func GetMsmes(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := AuthClaims(c)
		if !ok {
			return
		}

		email := c.Query("email")
		if email == "" {
			email = utils.ClaimString(claims, "email")
		}
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		rows, err := db.QueryContext(ctx,
			`SELECT `+msmeColumns+` FROM msme WHERE LOWER(contact_email) = LOWER($1) ORDER BY created_at DESC`,
			email)
		if err != nil {
			log.Printf("Error fetching organizations: %v", err)
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

// GetOwnMsme returns a single organization by owner email.
// @Summary Get organization by owner email
// @Tags MSME
// @Accept json
// @Produce json
// @Param email query string true "Owner email"
// @Success 200 {object} models.Msme
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/msme/own [get]
func GetOwnMsme(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := AuthClaims(c); !ok {
			return
		}

		email := c.Query("email")
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
			return
		}

		var msme models.Msme
		row := db.QueryRow(
			`SELECT `+msmeColumns+` FROM msme WHERE LOWER(contact_email) = LOWER($1) ORDER BY created_at ASC LIMIT 1`,
			email)
		if err := scanMsmeRow(row, &msme); err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch organization", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, msme)
	}
}

// CreateMsme registers a new organization and grants the creator an admin
// association.
// @Summary Create organization
// @Description Creates an organization. Subdomain is normalized to lowercase and must be unique. The creator receives a default admin association.
// @Tags MSME
// @Accept json
// @Produce json
// @Param body body models.CreateMsmeRequest true "Organization data"
// @Success 201 {object} models.Msme
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/msme/create [post]
func CreateMsme(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := AuthClaims(c)
		if !ok {
			return
		}

		var req models.CreateMsmeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}

		subdomain := repository.NormalizeSubdomain(req.Subdomain)
		if err := repository.ValidateSubdomain(subdomain); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		taken, err := storage.SubdomainTaken(db, subdomain)
		if err != nil {
			log.Printf("Error checking subdomain: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check subdomain", "details": err.Error()})
			return
		}
		if taken {
			c.JSON(http.StatusConflict, gin.H{"error": "Subdomain is already in use"})
			return
		}

		callerEmail := utils.ClaimString(claims, "email")
		if req.ContactEmail == "" {
			req.ContactEmail = callerEmail
		}

		msme := models.Msme{
			ID:              uuid.NewString(),
			Name:            req.Name,
			Subdomain:       subdomain,
			Description:     req.Description,
			Address:         req.Address,
			City:            req.City,
			State:           req.State,
			Country:         req.Country,
			ZipCode:         req.ZipCode,
			ContactNumber:   req.ContactNumber,
			ContactEmail:    req.ContactEmail,
			YearEstablished: req.YearEstablished,
			WorkingHours:    req.WorkingHours,
			Logo:            req.Logo,
			Industry:        req.Industry,
			Services:        req.Services,
			Ratings:         req.Ratings,
			Pricing:         req.Pricing,
			GST:             req.GST,
			IsActive:        true,
			CreatedAt:       time.Now(),
		}

		query := `
			INSERT INTO msme (id, name, subdomain, description, address, city, state, country,
				zip_code, contact_number, contact_email, year_established, working_hours, logo,
				industry, services, ratings, pricing, gst, is_active, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
			RETURNING id
		`
		err = db.QueryRow(query,
			msme.ID, msme.Name, msme.Subdomain, msme.Description, msme.Address, msme.City,
			msme.State, msme.Country, msme.ZipCode, msme.ContactNumber, msme.ContactEmail,
			msme.YearEstablished, msme.WorkingHours, msme.Logo, msme.Industry, msme.Services,
			msme.Ratings, msme.Pricing, msme.GST, msme.IsActive, msme.CreatedAt,
		).Scan(&msme.ID)
		if err != nil {
			// Duplicate subdomain race between the check and the insert.
			if strings.Contains(err.Error(), "duplicate key") {
				c.JSON(http.StatusConflict, gin.H{"error": "Subdomain is already in use"})
				return
			}
			log.Printf("Error inserting organization: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create organization", "details": err.Error()})
			return
		}

		// The creator becomes the default admin of the new organization. This
		// is a second write; a failure here leaves the organization without an
		// admin association and is only logged.
		creatorUserID := ""
		if user, err := storage.GetUserByEmail(db, callerEmail); err == nil {
			creatorUserID = user.ID
		}
		_, err = db.Exec(`
			INSERT INTO user_msme (id, user_id, msme_id, email, access_level, status, is_default, joined_at)
			VALUES ($1, NULLIF($2, ''), $3, $4, $5, 'active', true, $6)`,
			uuid.NewString(), creatorUserID, msme.ID, callerEmail, models.AccessLevelAdmin, time.Now())
		if err != nil {
			log.Printf("Failed to create admin association for organization %s: %v", msme.ID, err)
		}

		c.JSON(http.StatusCreated, msme)

		logEntry := models.ActivityLog{
			EventContext:  "msme",
			EventName:     "create",
			Description:   "Created organization " + msme.Name,
			UserName:      callerEmail,
			IPAddress:     c.ClientIP(),
			CreatedAt:     time.Now(),
			AffectedName:  msme.Name,
			AffectedEmail: msme.ContactEmail,
			MsmeID:        msme.ID,
		}
		if logErr := SaveActivityLog(db, logEntry); logErr != nil {
			log.Printf("Failed to log activity: %v", logErr)
		}
	}
}

// GetAvailableMsmes lists all organizations for subcontractor selection.
// @Summary List all organizations
// @Tags MSME
// @Accept json
// @Produce json
// @Success 200 {array} models.Msme
// @Failure 500 {object} models.ErrorResponse
// @Router /api/msme/available [get]
func GetAvailableMsmes(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := AuthClaims(c); !ok {
			return
		}

		rows, err := db.Query(`SELECT ` + msmeColumns + ` FROM msme WHERE is_active = true ORDER BY name ASC`)
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

// CreateMsmeFromEmail registers a minimal organization from an email address.
// @Summary Create organization from email
// @Description Registers an organization with only a name and contact email, used when inviting a subcontractor that has not onboarded. Sends a welcome email.
// @Tags MSME
// @Accept json
// @Produce json
// @Param body body models.CreateMsmeFromEmailRequest true "Email and name"
// @Success 201 {object} models.Msme
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/msme/available [post]
func CreateMsmeFromEmail(db *sql.DB, emailService *services.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := AuthClaims(c); !ok {
			return
		}

		var req models.CreateMsmeFromEmailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if err := repository.ValidateEmail(req.Email); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var existing int
		if err := db.QueryRow(`SELECT COUNT(*) FROM msme WHERE LOWER(contact_email) = LOWER($1)`, req.Email).Scan(&existing); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check organization", "details": err.Error()})
			return
		}
		if existing > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "An organization with this email already exists"})
			return
		}

		msme := models.Msme{
			ID:           uuid.NewString(),
			Name:         req.Name,
			Subdomain:    repository.NormalizeSubdomain(strings.ReplaceAll(req.Name, " ", "-")),
			ContactEmail: req.Email,
			IsActive:     true,
			CreatedAt:    time.Now(),
		}
		if err := repository.ValidateSubdomain(msme.Subdomain); err != nil {
			// Fall back to a handle derived from the row ID when the name does
			// not reduce to a clean handle.
			msme.Subdomain = "org-" + msme.ID[:8]
		}

		_, err := db.Exec(`
			INSERT INTO msme (id, name, subdomain, contact_email, is_active, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			msme.ID, msme.Name, msme.Subdomain, msme.ContactEmail, msme.IsActive, msme.CreatedAt)
		if err != nil {
			if strings.Contains(err.Error(), "duplicate key") {
				msme.Subdomain = "org-" + msme.ID[:8]
				_, err = db.Exec(`
					INSERT INTO msme (id, name, subdomain, contact_email, is_active, created_at)
					VALUES ($1, $2, $3, $4, $5, $6)`,
					msme.ID, msme.Name, msme.Subdomain, msme.ContactEmail, msme.IsActive, msme.CreatedAt)
			}
			if err != nil {
				log.Printf("Error inserting organization: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create organization", "details": err.Error()})
				return
			}
		}

		// Email-only association until the owner signs in for the first time.
		_, err = db.Exec(`
			INSERT INTO user_msme (id, msme_id, email, access_level, status, is_default, joined_at)
			VALUES ($1, $2, $3, $4, 'active', false, $5)`,
			uuid.NewString(), msme.ID, req.Email, models.AccessLevelAdmin, time.Now())
		if err != nil {
			log.Printf("Failed to create association for organization %s: %v", msme.ID, err)
		}

		c.JSON(http.StatusCreated, msme)

		go func() {
			mailErr := emailService.SendWelcomeMsmeEmail(services.WelcomeEmailData{
				CompanyName: msme.Name,
				Email:       msme.ContactEmail,
			})
			if mailErr != nil {
				log.Printf("Failed to send welcome email to %s: %v", msme.ContactEmail, mailErr)
			}
		}()
	}
}
