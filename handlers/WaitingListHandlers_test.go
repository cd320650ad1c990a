package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"backend/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinWaitingListRequiresFields(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := gin.New()
	r.POST("/api/msme/waiting-list", JoinWaitingList(db, nil))

	// company_details is required alongside name and email.
	w := doJSON(r, http.MethodPost, "/api/msme/waiting-list", "",
		map[string]string{"company_name": "Laxmi Fabricators", "email": "owner@laxmifab.in"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJoinWaitingListRejectsBadEmail(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := gin.New()
	r.POST("/api/msme/waiting-list", JoinWaitingList(db, nil))

	body := models.WaitingListRequest{
		CompanyName:    "Laxmi Fabricators",
		Email:          "not-an-email",
		CompanyDetails: "Sheet metal job shop, 12 people",
	}
	w := doJSON(r, http.MethodPost, "/api/msme/waiting-list", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckSubdomainAvailabilityRejectsInvalid(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := gin.New()
	r.GET("/api/msme/waiting-list", CheckSubdomainAvailability(db))

	w := doJSON(r, http.MethodGet, "/api/msme/waiting-list?subdomain=bad_handle!", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckSubdomainAvailabilityTaken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM msme WHERE subdomain`).
		WithArgs("laxmifab").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	r := gin.New()
	r.GET("/api/msme/waiting-list", CheckSubdomainAvailability(db))

	w := doJSON(r, http.MethodGet, "/api/msme/waiting-list?subdomain=LaxmiFab", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.SubdomainCheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "laxmifab", got.Subdomain)
	assert.False(t, got.Available)
}

func TestCheckSubdomainAvailabilityFree(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM msme WHERE subdomain`).
		WithArgs("shaktiworks").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	r := gin.New()
	r.GET("/api/msme/waiting-list", CheckSubdomainAvailability(db))

	w := doJSON(r, http.MethodGet, "/api/msme/waiting-list?subdomain=shaktiworks", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.SubdomainCheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.Available)
}
