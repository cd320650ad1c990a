package handlers

import (
	"backend/models"
	"backend/repository"
	"backend/services"
	"backend/utils"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SendOTP asks the upstream to mail a one-time code to the invited address.
// On success the response carries a `next` URL so the client keeps the
// email/token pair through the verify step.
// @Summary Request OTP for invite token
// @Tags OTP Auth
// @Accept json
// @Produce json
// @Param body body models.SendOTPRequest true "Email and invite token"
// @Success 200 {object} models.SendOTPResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/external/email-otp-auth/send-otp [post]
func SendOTP(rfq *services.RFQClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SendOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Email == "" || req.InviteToken == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and invite_token are required"})
			return
		}
		if err := repository.ValidateEmail(req.Email); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		resp, err := rfq.Forward(ctx, "POST", "/rfq/auth/request_otp/", "", req)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "OTP service unavailable", "details": err.Error()})
			return
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			relayUpstream(c, resp)
			return
		}

		body := gin.H{
			"message": "OTP sent",
			"next":    repository.VerifyOTPNext(req.Email, req.InviteToken),
		}
		var upstream map[string]interface{}
		if err := json.Unmarshal(resp.Body, &upstream); err == nil {
			if msg, ok := upstream["message"].(string); ok && msg != "" {
				body["message"] = msg
			}
		}

		c.JSON(http.StatusOK, body)
	}
}

// VerifyOTP relays the code check. A successful upstream reply carries the
// access token the client persists for subcontractor calls.
// @Summary Verify OTP code
// @Tags OTP Auth
// @Accept json
// @Produce json
// @Param body body models.VerifyOTPRequest true "Email, code and invite token"
// @Success 200 {object} models.VerifyOTPResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/external/email-otp-auth/verify-otp [post]
func VerifyOTP(rfq *services.RFQClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.VerifyOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Email == "" || req.OTPCode == "" || req.InviteToken == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email, otp_code and invite_token are required"})
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		resp, err := rfq.Forward(ctx, "POST", "/rfq/auth/verify_otp/", "", req)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "OTP service unavailable", "details": err.Error()})
			return
		}
		relayUpstream(c, resp)
	}
}
