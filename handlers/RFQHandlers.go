package handlers

import (
	"backend/models"
	"backend/repository"
	"backend/services"
	"backend/utils"
	"encoding/json"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// relayUpstream writes the upstream reply through unchanged.
func relayUpstream(c *gin.Context, resp *services.UpstreamResponse) {
	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(resp.StatusCode, contentType, resp.Body)
}

// requireBearer rejects requests without an Authorization header and hands
// back the raw header for upstream propagation.
func requireBearer(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if strings.TrimSpace(authHeader) == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
		return "", false
	}
	return authHeader, true
}

// CreateRFQ validates and forwards a new request for quotation.
// @Summary Create RFQ
// @Tags RFQ
// @Accept json
// @Produce json
// @Param body body models.RFQCreateRequest true "RFQ details"
// @Success 201 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/rfq [post]
func CreateRFQ(rfq *services.RFQClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader, ok := requireBearer(c)
		if !ok {
			return
		}

		var req models.RFQCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}
		if err := repository.ValidateRFQRequest(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		resp, err := rfq.Forward(ctx, "POST", "/rfq/", authHeader, req)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "RFQ service unavailable", "details": err.Error()})
			return
		}
		relayUpstream(c, resp)
	}
}

// ListRFQs forwards the issuer's RFQ listing.
// @Summary List RFQs
// @Tags RFQ
// @Produce json
// @Success 200 {array} object
// @Failure 401 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/rfq [get]
func ListRFQs(rfq *services.RFQClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader, ok := requireBearer(c)
		if !ok {
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		resp, err := rfq.Forward(ctx, "GET", "/rfq/", authHeader, nil)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "RFQ service unavailable", "details": err.Error()})
			return
		}
		relayUpstream(c, resp)
	}
}

// GetRFQ forwards a single RFQ fetch.
// @Summary Get RFQ by ID
// @Tags RFQ
// @Produce json
// @Param rfq_id path string true "RFQ ID"
// @Success 200 {object} object
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/rfq/{rfq_id} [get]
func GetRFQ(rfq *services.RFQClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader, ok := requireBearer(c)
		if !ok {
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		resp, err := rfq.Forward(ctx, "GET", "/rfq/"+url.PathEscape(c.Param("rfq_id"))+"/", authHeader, nil)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "RFQ service unavailable", "details": err.Error()})
			return
		}
		relayUpstream(c, resp)
	}
}

// InviteSubcontractors forwards an invite batch for an RFQ.
// @Summary Invite subcontractors to an RFQ
// @Tags RFQ
// @Accept json
// @Produce json
// @Param rfq_id path string true "RFQ ID"
// @Param body body models.RFQInviteRequest true "Subcontractor IDs"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/rfq/{rfq_id}/invite [post]
func InviteSubcontractors(rfq *services.RFQClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader, ok := requireBearer(c)
		if !ok {
			return
		}

		var req models.RFQInviteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}
		if len(req.SubcontractorIDs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "subcontractor_ids must not be empty"})
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		resp, err := rfq.Forward(ctx, "POST", "/rfq/"+url.PathEscape(c.Param("rfq_id"))+"/invite/", authHeader, req)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "RFQ service unavailable", "details": err.Error()})
			return
		}
		relayUpstream(c, resp)
	}
}

// GetRFQClarifications forwards the clarification thread for an RFQ.
// @Summary Get RFQ clarifications
// @Tags RFQ
// @Produce json
// @Param rfq_id path string true "RFQ ID"
// @Success 200 {array} object
// @Failure 401 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/rfq/{rfq_id}/clarifications [get]
func GetRFQClarifications(rfq *services.RFQClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader, ok := requireBearer(c)
		if !ok {
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		resp, err := rfq.Forward(ctx, "GET", "/rfq/"+url.PathEscape(c.Param("rfq_id"))+"/clarifications/", authHeader, nil)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "RFQ service unavailable", "details": err.Error()})
			return
		}
		relayUpstream(c, resp)
	}
}

// PostRFQClarification forwards a clarification message on an RFQ.
// @Summary Post RFQ clarification
// @Tags RFQ
// @Accept json
// @Produce json
// @Param rfq_id path string true "RFQ ID"
// @Param body body models.ClarificationRequest true "Clarification message"
// @Success 201 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/rfq/{rfq_id}/clarifications [post]
func PostRFQClarification(rfq *services.RFQClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader, ok := requireBearer(c)
		if !ok {
			return
		}

		var req models.ClarificationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message must not be empty"})
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		resp, err := rfq.Forward(ctx, "POST", "/rfq/"+url.PathEscape(c.Param("rfq_id"))+"/clarifications/", authHeader, req)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "RFQ service unavailable", "details": err.Error()})
			return
		}
		relayUpstream(c, resp)
	}
}

// GetQuotationPreview fetches one quotation and annotates it with computed
// subtotal, tax and grand total. The tax rate is parsed out of the free-text
// taxes field; an unparseable rate is treated as zero.
// @Summary Get annotated quotation
// @Tags RFQ
// @Produce json
// @Param quotation_id query string true "Quotation ID"
// @Success 200 {object} models.QuotationPreview
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/rfq/quotation [get]
func GetQuotationPreview(rfq *services.RFQClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader, ok := requireBearer(c)
		if !ok {
			return
		}

		quotationID := c.Query("quotation_id")
		if quotationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quotation_id is required"})
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		resp, err := rfq.Forward(ctx, "GET", "/rfq/quotation/?quotation_id="+url.QueryEscape(quotationID), authHeader, nil)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "RFQ service unavailable", "details": err.Error()})
			return
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			relayUpstream(c, resp)
			return
		}

		var form models.QuotationForm
		if err := json.Unmarshal(resp.Body, &form); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Invalid quotation payload from upstream", "details": err.Error()})
			return
		}

		var raw interface{}
		if err := json.Unmarshal(resp.Body, &raw); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Invalid quotation payload from upstream", "details": err.Error()})
			return
		}

		subtotal := repository.QuotationTotal(form.Lines)
		taxRate := repository.ParseTaxRate(form.Taxes)
		taxAmount := math.Round(subtotal*taxRate) / 100

		c.JSON(http.StatusOK, models.QuotationPreview{
			QuotationData: raw,
			Subtotal:      subtotal,
			TaxRate:       taxRate,
			TaxAmount:     taxAmount,
			GrandTotal:    math.Round((subtotal+taxAmount)*100) / 100,
		})
	}
}
