package handlers

import (
	"backend/repository"
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
)

// addLabel adds text to an image at the specified position with larger font
func addLabel(img *image.RGBA, x, y int, label string, fontSize float64) {
	col := color.RGBA{0, 0, 0, 255}

	// Use inconsolata font which is larger and more readable
	face := inconsolata.Regular8x16
	if fontSize > 16 {
		// Scale the font for larger sizes
		face = inconsolata.Bold8x16
	}

	point := fixed.Point26_6{
		X: fixed.Int26_6(x * 64),
		Y: fixed.Int26_6(y * 64),
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  point,
	}
	d.DrawString(label)
}

// addLabelBold adds bold text with larger font for labels
func addLabelBold(img *image.RGBA, x, y int, label string) {
	col := color.RGBA{30, 30, 30, 255} // Darker color for labels
	face := inconsolata.Bold8x16

	point := fixed.Point26_6{
		X: fixed.Int26_6(x * 64),
		Y: fixed.Int26_6(y * 64),
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  point,
	}
	d.DrawString(label)
}

// GenerateInviteQRCode renders the OTP request URL for an invite token as a
// printable QR JPEG with the landing URL captioned underneath. Scanning it
// takes a subcontractor straight into the token-gated OTP flow.
// @Summary Generate invite QR code as JPEG
// @Tags RFQ
// @Param token query string true "Invite token"
// @Success 200 {file} file "JPEG image"
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/rfq/invite-qr [get]
func GenerateInviteQRCode() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
			return
		}

		base := os.Getenv("FRONTEND_BASE_URL")
		inviteURL := repository.RequestOTPURL(base, token)

		qr, err := qrcode.New(inviteURL, qrcode.Medium)
		if err != nil {
			c.String(http.StatusInternalServerError, "QR code generation failed")
			return
		}

		qrImg := qr.Image(512)

		// Calculate dimensions for the combined image
		qrSize := qrImg.Bounds().Dy()
		padding := 30
		lineHeight := 28
		textAreaHeight := 2*lineHeight + padding
		totalHeight := qrSize + padding + textAreaHeight

		// Create a new RGBA image with white background
		combinedImg := image.NewRGBA(image.Rect(0, 0, qrSize, totalHeight))
		draw.Draw(combinedImg, combinedImg.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)

		// Draw QR code at the top
		qrRect := image.Rect(0, 0, qrSize, qrSize)
		draw.Draw(combinedImg, qrRect, qrImg, image.Point{}, draw.Src)

		// Draw a subtle separator line between QR code and text
		separatorY := qrSize + padding/2
		for x := 0; x < qrSize; x++ {
			combinedImg.Set(x, separatorY, color.RGBA{200, 200, 200, 255})
		}

		startY := qrSize + padding + lineHeight
		xPos := 20

		addLabelBold(combinedImg, xPos, startY, "Scan to respond:")

		// Truncate long URLs so the caption stays inside the image
		urlDisplay := inviteURL
		if len(urlDisplay) > 58 {
			urlDisplay = urlDisplay[:55] + "..."
		}
		addLabel(combinedImg, xPos, startY+lineHeight, urlDisplay, 16)

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, combinedImg, nil); err != nil {
			c.String(http.StatusInternalServerError, "JPEG encoding failed")
			return
		}

		c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
	}
}
