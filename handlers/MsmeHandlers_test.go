package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend/models"
	"backend/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func bearerFor(t *testing.T, email, role string) string {
	t.Helper()
	token, err := utils.GenerateJWT(email, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(r *gin.Engine, method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var msmeRowColumns = []string{
	"id", "name", "subdomain", "description", "address",
	"city", "state", "country", "zip_code", "contact_number",
	"contact_email", "year_established", "working_hours", "logo",
	"industry", "services", "ratings", "pricing", "gst",
	"is_active", "created_at",
}

func addMsmeRow(rows *sqlmock.Rows, id, name, subdomain, email string) *sqlmock.Rows {
	return rows.AddRow(
		id, name, subdomain, "", "",
		"", "", "", "", "",
		email, "", "", "",
		"", "", 0.0, "", "",
		true, time.Now(),
	)
}

func TestGetMsmesRequiresAuth(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := gin.New()
	r.GET("/api/msme", GetMsmes(db))

	w := doJSON(r, http.MethodGet, "/api/msme", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization header is required")
}

func TestGetMsmesReturnsOwnedOrganizations(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := addMsmeRow(sqlmock.NewRows(msmeRowColumns), "m1", "Laxmi Fabrications", "laxmifab", "owner@laxmifab.in")
	mock.ExpectQuery(`FROM msme WHERE LOWER\(contact_email\)`).
		WithArgs("owner@laxmifab.in").
		WillReturnRows(rows)

	r := gin.New()
	r.GET("/api/msme", GetMsmes(db))

	w := doJSON(r, http.MethodGet, "/api/msme", bearerFor(t, "owner@laxmifab.in", "user"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []models.Msme
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "laxmifab", got[0].Subdomain)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMsmesEmptyResultIsEmptyArray(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM msme WHERE LOWER\(contact_email\)`).
		WillReturnRows(sqlmock.NewRows(msmeRowColumns))

	r := gin.New()
	r.GET("/api/msme", GetMsmes(db))

	w := doJSON(r, http.MethodGet, "/api/msme", bearerFor(t, "nobody@example.com", "user"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestGetOwnMsmeNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM msme WHERE LOWER\(contact_email\)`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	r := gin.New()
	r.GET("/api/msme/own", GetOwnMsme(db))

	w := doJSON(r, http.MethodGet, "/api/msme/own?email=ghost@example.com", bearerFor(t, "ghost@example.com", "user"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Organization not found")
}

func TestCreateMsmeRejectsInvalidSubdomain(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := gin.New()
	r.POST("/api/msme/create", CreateMsme(db))

	body := models.CreateMsmeRequest{Name: "Laxmi Fabrications", Subdomain: "-bad-handle"}
	w := doJSON(r, http.MethodPost, "/api/msme/create", bearerFor(t, "owner@laxmifab.in", "user"), body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateMsmeSubdomainConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM msme WHERE subdomain`).
		WithArgs("laxmifab").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	r := gin.New()
	r.POST("/api/msme/create", CreateMsme(db))

	body := models.CreateMsmeRequest{Name: "Laxmi Fabrications", Subdomain: "LaxmiFab"}
	w := doJSON(r, http.MethodPost, "/api/msme/create", bearerFor(t, "owner@laxmifab.in", "user"), body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Subdomain is already in use")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMsmeSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM msme WHERE subdomain`).
		WithArgs("laxmifab").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO msme`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("m1"))
	mock.ExpectQuery(`FROM users WHERE LOWER\(email\)`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO user_msme`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO activity_logs`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := gin.New()
	r.POST("/api/msme/create", CreateMsme(db))

	body := models.CreateMsmeRequest{
		Name:      "Laxmi Fabrications",
		Subdomain: "LaxmiFab",
		City:      "Pune",
	}
	w := doJSON(r, http.MethodPost, "/api/msme/create", bearerFor(t, "owner@laxmifab.in", "user"), body)
	require.Equal(t, http.StatusCreated, w.Code)

	var got models.Msme
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "m1", got.ID)
	assert.Equal(t, "laxmifab", got.Subdomain)
	// Creator email is used when no contact email was supplied.
	assert.Equal(t, "owner@laxmifab.in", got.ContactEmail)
	assert.True(t, got.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMsmeFromEmailRejectsBadEmail(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := gin.New()
	r.POST("/api/msme/available", CreateMsmeFromEmail(db, nil))

	body := models.CreateMsmeFromEmailRequest{Name: "Shakti Works", Email: "not-an-email"}
	w := doJSON(r, http.MethodPost, "/api/msme/available", bearerFor(t, "admin@factoryspace.in", "user"), body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAvailableMsmesListsActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(msmeRowColumns)
	rows = addMsmeRow(rows, "m1", "Laxmi Fabrications", "laxmifab", "owner@laxmifab.in")
	rows = addMsmeRow(rows, "m2", "Shakti Works", "shaktiworks", "ops@shaktiworks.in")
	mock.ExpectQuery(`FROM msme WHERE is_active = true`).WillReturnRows(rows)

	r := gin.New()
	r.GET("/api/msme/available", GetAvailableMsmes(db))

	w := doJSON(r, http.MethodGet, "/api/msme/available", bearerFor(t, "owner@laxmifab.in", "user"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []models.Msme
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}
