package handlers

import (
	"backend/models"
	"backend/repository"
	"backend/services"
	"backend/utils"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const subcontractorBasePath = "/rfq/subcontractors/not-loggedin"

// ListInvitedRFQs forwards the RFQ listing for the token bearer. The upstream
// scopes the result to RFQs the bearer was invited to.
// @Summary List invited RFQs
// @Tags Subcontractor
// @Produce json
// @Success 200 {array} object
// @Failure 401 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/external/rfq/subcontractors/not-loggedin [get]
func ListInvitedRFQs(rfq *services.RFQClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader, ok := requireBearer(c)
		if !ok {
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		resp, err := rfq.Forward(ctx, "GET", subcontractorBasePath+"/", authHeader, nil)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "RFQ service unavailable", "details": err.Error()})
			return
		}
		relayUpstream(c, resp)
	}
}

// GetInvitedRFQ forwards a single RFQ fetch. The upstream decides whether the
// bearer was invited and answers 404 otherwise; that status is relayed as is.
// @Summary Get invited RFQ by ID
// @Tags Subcontractor
// @Produce json
// @Param rfq_id query string true "RFQ ID"
// @Success 200 {object} object
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/external/rfq/subcontractors/not-loggedin/get_by_id [get]
func GetInvitedRFQ(rfq *services.RFQClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader, ok := requireBearer(c)
		if !ok {
			return
		}

		rfqID := c.Query("rfq_id")
		if rfqID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rfq_id is required"})
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		resp, err := rfq.Forward(ctx, "GET", subcontractorBasePath+"/get_by_id/?rfq_id="+url.QueryEscape(rfqID), authHeader, nil)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "RFQ service unavailable", "details": err.Error()})
			return
		}
		relayUpstream(c, resp)
	}
}

// SubmitQuotation validates a quotation submission and forwards it. The
// total_amount sent by the client is discarded; the server recomputes it from
// the quotation lines before forwarding.
// @Summary Submit quotation for an RFQ
// @Tags Subcontractor
// @Accept json
// @Produce json
// @Param rfq_id query string true "RFQ ID"
// @Param body body models.QuotationSubmission true "Quotation"
// @Success 201 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/external/rfq/subcontractors/not-loggedin/respond [post]
func SubmitQuotation(rfq *services.RFQClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader, ok := requireBearer(c)
		if !ok {
			return
		}

		rfqID := c.Query("rfq_id")
		if rfqID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rfq_id is required"})
			return
		}

		var submission models.QuotationSubmission
		if err := c.ShouldBindJSON(&submission); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}
		if err := repository.ValidateQuotationLines(submission.QuotationData.Lines); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		submission.QuotationData.TotalAmount = repository.QuotationTotal(submission.QuotationData.Lines)

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		resp, err := rfq.Forward(ctx, "POST", subcontractorBasePath+"/respond/?rfq_id="+url.QueryEscape(rfqID), authHeader, submission)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "RFQ service unavailable", "details": err.Error()})
			return
		}
		relayUpstream(c, resp)
	}
}

// GetSubcontractorClarifications forwards the clarification thread.
// @Summary Get clarifications for an invited RFQ
// @Tags Subcontractor
// @Produce json
// @Param rfq_id query string true "RFQ ID"
// @Success 200 {array} object
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/external/rfq/subcontractors/not-loggedin/clarify [get]
func GetSubcontractorClarifications(rfq *services.RFQClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader, ok := requireBearer(c)
		if !ok {
			return
		}

		rfqID := c.Query("rfq_id")
		if rfqID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rfq_id is required"})
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		resp, err := rfq.Forward(ctx, "GET", subcontractorBasePath+"/clarify/?rfq_id="+url.QueryEscape(rfqID), authHeader, nil)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "RFQ service unavailable", "details": err.Error()})
			return
		}
		relayUpstream(c, resp)
	}
}

// PostSubcontractorClarification forwards a clarification message.
// @Summary Post clarification on an invited RFQ
// @Tags Subcontractor
// @Accept json
// @Produce json
// @Param rfq_id query string true "RFQ ID"
// @Param body body models.ClarificationRequest true "Clarification message"
// @Success 201 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/external/rfq/subcontractors/not-loggedin/clarify [post]
func PostSubcontractorClarification(rfq *services.RFQClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader, ok := requireBearer(c)
		if !ok {
			return
		}

		rfqID := c.Query("rfq_id")
		if rfqID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rfq_id is required"})
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

		resp, err := rfq.Forward(ctx, "POST", subcontractorBasePath+"/clarify/?rfq_id="+url.QueryEscape(rfqID), authHeader, req)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "RFQ service unavailable", "details": err.Error()})
			return
		}
		relayUpstream(c, resp)
	}
}
