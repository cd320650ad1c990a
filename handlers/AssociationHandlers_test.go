package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"backend/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userMsmeRowColumns = []string{
	"id", "user_id", "msme_id", "email",
	"name", "department", "access_level",
	"status", "invited_by", "is_default", "joined_at",
}

func addUserMsmeRow(rows *sqlmock.Rows, id, userID, msmeID, email, level string, isDefault bool) *sqlmock.Rows {
	return rows.AddRow(id, userID, msmeID, email, "", "", level, "active", "", isDefault, time.Now())
}

func TestGetAssociationsFiltered(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := addUserMsmeRow(sqlmock.NewRows(userMsmeRowColumns), "um1", "u1", "m1", "owner@laxmifab.in", models.AccessLevelAdmin, true)
	mock.ExpectQuery(`FROM user_msme WHERE user_id = \$1 AND msme_id = \$2`).
		WithArgs("u1", "m1").
		WillReturnRows(rows)

	r := gin.New()
	r.GET("/api/usermsme", GetAssociations(db))

	w := doJSON(r, http.MethodGet, "/api/usermsme?user_id=u1&msme_id=m1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []models.UserMsme
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, models.AccessLevelAdmin, got[0].AccessLevel)
	assert.True(t, got[0].IsDefault)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAssociationByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM user_msme WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	r := gin.New()
	r.GET("/api/usermsme", GetAssociations(db))

	w := doJSON(r, http.MethodGet, "/api/usermsme?association_id=missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateAssociationRejectsUnknownAccessLevel(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := gin.New()
	r.POST("/api/usermsme", CreateAssociation(db))

	body := models.CreateAssociationRequest{
		UserID:      "u1",
		MsmeID:      "m1",
		Email:       "worker@laxmifab.in",
		AccessLevel: "owner",
	}
	w := doJSON(r, http.MethodPost, "/api/usermsme", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "access_level must be admin, employee or operator")
}

func TestCreateAssociationDefaultClearsOthers(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE user_msme SET is_default = false WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO user_msme`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO activity_logs`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := gin.New()
	r.POST("/api/usermsme", CreateAssociation(db))

	body := models.CreateAssociationRequest{
		UserID:      "u1",
		MsmeID:      "m1",
		Email:       "Worker@LaxmiFab.in",
		AccessLevel: models.AccessLevelEmployee,
		IsDefault:   true,
	}
	w := doJSON(r, http.MethodPost, "/api/usermsme", "", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var got models.UserMsme
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "worker@laxmifab.in", got.Email)
	assert.Equal(t, "active", got.Status)
	assert.True(t, got.IsDefault)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAssociationNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COALESCE\(email, ''\), msme_id FROM user_msme`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	r := gin.New()
	r.DELETE("/api/usermsme", DeleteAssociation(db))

	w := doJSON(r, http.MethodDelete, "/api/usermsme?association_id=missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteAssociationSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COALESCE\(email, ''\), msme_id FROM user_msme`).
		WithArgs("um1").
		WillReturnRows(sqlmock.NewRows([]string{"email", "msme_id"}).AddRow("worker@laxmifab.in", "m1"))
	mock.ExpectExec(`DELETE FROM user_msme WHERE id = \$1`).
		WithArgs("um1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO activity_logs`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := gin.New()
	r.DELETE("/api/usermsme", DeleteAssociation(db))

	w := doJSON(r, http.MethodDelete, "/api/usermsme?association_id=um1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Association deleted successfully")
	assert.NoError(t, mock.ExpectationsWereMet())
}
