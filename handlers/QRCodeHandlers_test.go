package handlers

import (
	"bytes"
	"image/jpeg"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInviteQRCodeRequiresToken(t *testing.T) {
	r := gin.New()
	r.GET("/api/rfq/invite-qr", GenerateInviteQRCode())

	w := doJSON(r, http.MethodGet, "/api/rfq/invite-qr", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateInviteQRCodeReturnsJPEG(t *testing.T) {
	t.Setenv("FRONTEND_BASE_URL", "https://app.factoryspace.in")

	r := gin.New()
	r.GET("/api/rfq/invite-qr", GenerateInviteQRCode())

	w := doJSON(r, http.MethodGet, "/api/rfq/invite-qr?token=inv_9f8e7d6c", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))

	img, err := jpeg.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, img.Bounds().Dx(), 512)
}
