package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"backend/models"
	"backend/repository"
	"backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendOTPRequiresEmailAndToken(t *testing.T) {
	r := gin.New()
	r.POST("/send-otp", SendOTP(services.NewRFQClientWithBase("http://unused")))

	w := doJSON(r, http.MethodPost, "/send-otp", "", models.SendOTPRequest{Email: "owner@laxmifab.in"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email and invite_token are required")
}

func TestSendOTPRejectsBadEmail(t *testing.T) {
	r := gin.New()
	r.POST("/send-otp", SendOTP(services.NewRFQClientWithBase("http://unused")))

	w := doJSON(r, http.MethodPost, "/send-otp", "",
		models.SendOTPRequest{Email: "not-an-email", InviteToken: "inv_9f8e7d6c"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendOTPReturnsNextStep(t *testing.T) {
	var captured upstreamCapture
	upstream := fakeUpstream(t, http.StatusOK, `{"message":"code mailed"}`, &captured)
	defer upstream.Close()

	r := gin.New()
	r.POST("/send-otp", SendOTP(services.NewRFQClientWithBase(upstream.URL)))

	w := doJSON(r, http.MethodPost, "/send-otp", "",
		models.SendOTPRequest{Email: "Owner@LaxmiFab.in", InviteToken: "inv_9f8e7d6c"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/rfq/auth/request_otp/", captured.Path)
	// No caller credentials are forwarded to the OTP endpoint.
	assert.Empty(t, captured.Auth)

	var got map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "code mailed", got["message"])
	assert.Equal(t, repository.VerifyOTPNext("owner@laxmifab.in", "inv_9f8e7d6c"), got["next"])

	// The email is lowercased before forwarding.
	var forwarded models.SendOTPRequest
	require.NoError(t, json.Unmarshal(captured.Body, &forwarded))
	assert.Equal(t, "owner@laxmifab.in", forwarded.Email)
}

func TestSendOTPRelaysUpstreamRejection(t *testing.T) {
	upstream := fakeUpstream(t, http.StatusTooManyRequests, `{"error":"try again later"}`, nil)
	defer upstream.Close()

	r := gin.New()
	r.POST("/send-otp", SendOTP(services.NewRFQClientWithBase(upstream.URL)))

	w := doJSON(r, http.MethodPost, "/send-otp", "",
		models.SendOTPRequest{Email: "owner@laxmifab.in", InviteToken: "inv_9f8e7d6c"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestVerifyOTPRequiresAllFields(t *testing.T) {
	r := gin.New()
	r.POST("/verify-otp", VerifyOTP(services.NewRFQClientWithBase("http://unused")))

	w := doJSON(r, http.MethodPost, "/verify-otp", "",
		models.VerifyOTPRequest{Email: "owner@laxmifab.in", OTPCode: "482913"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyOTPRelaysAccessToken(t *testing.T) {
	var captured upstreamCapture
	upstream := fakeUpstream(t, http.StatusOK, `{"access":"tok_abc"}`, &captured)
	defer upstream.Close()

	r := gin.New()
	r.POST("/verify-otp", VerifyOTP(services.NewRFQClientWithBase(upstream.URL)))

	w := doJSON(r, http.MethodPost, "/verify-otp", "",
		models.VerifyOTPRequest{Email: "owner@laxmifab.in", OTPCode: "482913", InviteToken: "inv_9f8e7d6c"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/rfq/auth/verify_otp/", captured.Path)
	assert.JSONEq(t, `{"access":"tok_abc"}`, w.Body.String())
}
