package storage

import (
	"backend/models"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

var db *sql.DB

func InitDB() *sql.DB {
	if err := godotenv.Load(); err != nil {
		log.Fatal("Error loading .env file")
	}
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")

	connStr := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%s sslmode=disable",
		user, password, dbname, host, port)

	var err error
	db, err = sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Pool sized for light server load
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	return db
}

func GetDB() *sql.DB {
	return db
}

// GetUserByClerkID looks up the local user row mapped to an identity-provider
// user ID. sql.ErrNoRows is passed through so callers can treat absence as
// "not yet synced" rather than a failure.
func GetUserByClerkID(db *sql.DB, clerkID string) (*models.User, error) {
	var user models.User
	var lastSignIn sql.NullTime
	query := `
		SELECT id, clerk_id, email, name, first_name, last_name, username,
		       profile_picture, bio, email_verified, last_sign_in_at, is_active,
		       created_at, updated_at
		FROM users WHERE clerk_id = $1`

	err := db.QueryRow(query, clerkID).Scan(
		&user.ID, &user.ClerkID, &user.Email, &user.Name, &user.FirstName,
		&user.LastName, &user.Username, &user.ProfilePicture, &user.Bio,
		&user.EmailVerified, &lastSignIn, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastSignIn.Valid {
		user.LastSignInAt = &lastSignIn.Time
	}
	return &user, nil
}

func GetUserByEmail(db *sql.DB, email string) (*models.User, error) {
	var user models.User
	var lastSignIn sql.NullTime
	query := `
		SELECT id, clerk_id, email, name, first_name, last_name, username,
		       profile_picture, bio, email_verified, last_sign_in_at, is_active,
		       created_at, updated_at
		FROM users WHERE LOWER(email) = LOWER($1)`

	err := db.QueryRow(query, email).Scan(
		&user.ID, &user.ClerkID, &user.Email, &user.Name, &user.FirstName,
		&user.LastName, &user.Username, &user.ProfilePicture, &user.Bio,
		&user.EmailVerified, &lastSignIn, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user with email %s not found", email)
		}
		return nil, fmt.Errorf("failed to query user: %v", err)
	}
	if lastSignIn.Valid {
		user.LastSignInAt = &lastSignIn.Time
	}
	return &user, nil
}

// InsertUser creates a local user row for a provider profile. Returns the new
// row ID. Duplicate clerk_id or email surfaces as a pq unique violation.
func InsertUser(db *sql.DB, user *models.User) (string, error) {
	query := `
		INSERT INTO users (id, clerk_id, email, name, first_name, last_name, username,
		                   profile_picture, bio, email_verified, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	var id string
	err := db.QueryRow(query,
		user.ID, user.ClerkID, user.Email, user.Name, user.FirstName, user.LastName,
		user.Username, user.ProfilePicture, user.Bio, user.EmailVerified,
		user.IsActive, user.CreatedAt, user.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert user: %v", err)
	}
	return id, nil
}

// TouchLastSignIn bumps last_sign_in_at after a successful identity sync.
func TouchLastSignIn(db *sql.DB, clerkID string) error {
	_, err := db.Exec(`UPDATE users SET last_sign_in_at = $1, updated_at = $1 WHERE clerk_id = $2`,
		time.Now(), clerkID)
	return err
}

// SubdomainTaken reports whether an organization already owns the handle.
func SubdomainTaken(db *sql.DB, subdomain string) (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM msme WHERE subdomain = $1`, subdomain).Scan(&count)
	return count > 0, err
}

// CleanupStaleWaitingList removes interest entries older than the given age.
// Returns the number of rows removed.
func CleanupStaleWaitingList(db *sql.DB, olderThan time.Duration) (int64, error) {
	threshold := time.Now().Add(-olderThan)
	res, err := db.Exec(`DELETE FROM msme_waiting_list WHERE created_at < $1`, threshold)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CleanupOldActivityLogs prunes audit rows older than the given age.
func CleanupOldActivityLogs(db *sql.DB, olderThan time.Duration) (int64, error) {
	threshold := time.Now().Add(-olderThan)
	res, err := db.Exec(`DELETE FROM activity_logs WHERE created_at < $1`, threshold)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
