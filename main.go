// @title           FactorySpace API
// @version         1.0
// @description     FactorySpace Backend API - organization registry, RFQ workflow and subcontractor access.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    https://factoryspace.in

// @host      api.factoryspace.in

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes http https
package main

import (
	_ "backend/docs"
	"backend/handlers"
	"backend/services"
	"backend/storage"
	"backend/utils"
	"context"
	"database/sql"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func CORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"https://factoryspace.in",
		"https://app.factoryspace.in",
		"http://localhost:9000",
		"http://localhost:8080",
		"http://localhost:3000",
	}
	if frontend := os.Getenv("FRONTEND_BASE_URL"); frontend != "" {
		corsConfig.AllowOrigins = append(corsConfig.AllowOrigins, frontend)
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding", "X-XSRF-TOKEN",
		"Accept", "Origin", "X-Requested-With", "Authorization", "User-Agent",
		"Cache-Control", "Referer",
		"Access-Control-Request-Method", "Access-Control-Request-Headers",
		"Accept-Language", "Accept-Charset", "DNT", "Connection",
	}
	corsConfig.AllowMethods = []string{
		"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD", "PATCH",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length", "Authorization", "Content-Type", "Content-Disposition",
	}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

// adminRole resolves the privileged role once at startup. Every admin route
// compares the token's role claim against this single value.
func adminRole() string {
	role := os.Getenv("ADMIN_ROLE")
	if role == "" {
		role = "superadmin"
	}
	return role
}

// AdminOnly validates the bearer JWT and requires the configured admin role.
func AdminOnly(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := utils.TokenClaims(c.GetHeader("Authorization"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			c.Abort()
			return
		}

		role := utils.ClaimString(claims, "role")
		if !strings.EqualFold(role, requiredRole) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Set("admin_email", utils.ClaimString(claims, "email"))
		c.Next()
	}
}

// InviteRedirect bounces invite links into the OTP flow. Any GET /app/<path>
// carrying a token query param is redirected to the request-otp page with the
// original destination preserved in redirectUrl.
func InviteRedirect() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
			return
		}

		redirect := url.Values{}
		redirect.Set("token", token)
		redirect.Set("redirectUrl", "/app"+c.Param("path"))

		c.Redirect(http.StatusTemporaryRedirect, "/auth/request-otp?"+redirect.Encode())
	}
}

func HelloWorld(c *gin.Context) {
	c.JSON(200, gin.H{"message": "Hello, World!"})
}

var cronRunning int32

func runMaintenanceJobs(db *sql.DB) {
	if !atomic.CompareAndSwapInt32(&cronRunning, 0, 1) {
		log.Println("Previous maintenance run still in progress. Skipping this run.")
		return
	}
	defer atomic.StoreInt32(&cronRunning, 0)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in maintenance jobs: %v\n%s", r, debug.Stack())
		}
	}()

	log.Println("Starting daily maintenance jobs")

	waitingRemoved, err := storage.CleanupStaleWaitingList(db, 90*24*time.Hour)
	if err != nil {
		log.Printf("Waiting list cleanup failed: %v", err)
	} else {
		log.Printf("Waiting list cleanup removed %d stale entries", waitingRemoved)
	}

	logsRemoved, err := storage.CleanupOldActivityLogs(db, 180*24*time.Hour)
	if err != nil {
		log.Printf("Activity log cleanup failed: %v", err)
	} else {
		log.Printf("Activity log cleanup removed %d old entries", logsRemoved)
	}

	log.Println("Daily maintenance jobs completed")
}

func main() {
	db := storage.InitDB()
	gormDB := storage.InitGormDB()

	identityClient := services.NewIdentityClient()
	rfqClient := services.NewRFQClient()
	emailService := services.NewEmailService()

	requiredRole := adminRole()

	// Daily maintenance at 03:00
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))),
	)
	if _, err := c.AddFunc("0 3 * * *", func() {
		runMaintenanceJobs(db)
	}); err != nil {
		log.Fatalf("Failed to schedule maintenance jobs: %v", err)
	}
	c.Start()

	r := gin.Default()
	r.Use(cors.New(CORSConfig()))

	r.GET("/", HelloWorld)

	// ==================== 1. IDENTITY BRIDGE ====================
	r.POST("/api/auth/create-user", handlers.CreateUserFromIdentity(db, identityClient))

	// ==================== 2. ORGANIZATIONS ====================
	r.GET("/api/msme", handlers.GetMsmes(db))
	r.GET("/api/msme/own", handlers.GetOwnMsme(db))
	r.POST("/api/msme/create", handlers.CreateMsme(db))
	r.GET("/api/msme/available", handlers.GetAvailableMsmes(db))
	r.POST("/api/msme/available", handlers.CreateMsmeFromEmail(db, emailService))

	// ==================== 3. WAITING LIST ====================
	r.POST("/api/msme/waiting-list", handlers.JoinWaitingList(db, gormDB))
	r.GET("/api/msme/waiting-list", handlers.CheckSubdomainAvailability(db))

	// ==================== 4. ADMIN CONSOLE ====================
	admin := r.Group("/", AdminOnly(requiredRole))
	{
		admin.GET("/api/msme-admin", handlers.GetMsmeAdmin(db))
		admin.POST("/api/msme-admin", handlers.CreateMsme(db))
		admin.PUT("/api/msme-admin", handlers.UpdateMsmeAdmin(db))
		admin.DELETE("/api/msme-admin", handlers.DeleteMsmeAdmin(db))
		admin.GET("/api/msme-admin/export", handlers.ExportMsmesXLSX(db))
		admin.GET("/api/msme-admin/waiting-list", handlers.GetWaitingListAdmin(gormDB))

		admin.GET("/api/user", handlers.GetUsersAdmin(db))
		admin.POST("/api/user", handlers.CreateUserAdmin(db))
		admin.PUT("/api/user", handlers.UpdateUserAdmin(db))
		admin.DELETE("/api/user", handlers.DeleteUserAdmin(db))

		admin.GET("/api/logs", handlers.GetActivityLogsHandler(gormDB))
	}

	// ==================== 5. ASSOCIATIONS ====================
	r.GET("/api/usermsme", handlers.GetAssociations(db))
	r.POST("/api/usermsme", handlers.CreateAssociation(db))
	r.DELETE("/api/usermsme", handlers.DeleteAssociation(db))

	// ==================== 6. RFQ (ISSUER) ====================
	r.POST("/api/rfq", handlers.CreateRFQ(rfqClient))
	r.GET("/api/rfq", handlers.ListRFQs(rfqClient))
	r.GET("/api/rfq/quotation", handlers.GetQuotationPreview(rfqClient))
	r.GET("/api/rfq/invite-qr", handlers.GenerateInviteQRCode())
	r.GET("/api/rfq/:rfq_id", handlers.GetRFQ(rfqClient))
	r.POST("/api/rfq/:rfq_id/invite", handlers.InviteSubcontractors(rfqClient))
	r.GET("/api/rfq/:rfq_id/clarifications", handlers.GetRFQClarifications(rfqClient))
	r.POST("/api/rfq/:rfq_id/clarifications", handlers.PostRFQClarification(rfqClient))

	// ==================== 7. RFQ (SUBCONTRACTOR, TOKEN GATED) ====================
	sub := r.Group("/api/external/rfq/subcontractors/not-loggedin")
	{
		sub.GET("", handlers.ListInvitedRFQs(rfqClient))
		sub.GET("/get_by_id", handlers.GetInvitedRFQ(rfqClient))
		sub.POST("/respond", handlers.SubmitQuotation(rfqClient))
		sub.GET("/clarify", handlers.GetSubcontractorClarifications(rfqClient))
		sub.POST("/clarify", handlers.PostSubcontractorClarification(rfqClient))
	}

	// ==================== 8. OTP AUTH ====================
	r.POST("/api/external/email-otp-auth/send-otp", handlers.SendOTP(rfqClient))
	r.POST("/api/external/email-otp-auth/verify-otp", handlers.VerifyOTP(rfqClient))

	// ==================== 9. INVITE REDIRECT ====================
	r.GET("/app/*path", InviteRedirect())

	// ==================== 10. SWAGGER ====================
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}
	portInt, err := strconv.Atoi(port)
	if err != nil {
		log.Fatalf("Invalid PORT environment variable: %s. Must be a number.", port)
	}
	if portInt < 0 || portInt > 65535 {
		log.Fatalf("Invalid PORT: %d. Must be between 0 and 65535.", portInt)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}
