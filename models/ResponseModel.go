package models

// Swagger request/response envelopes shared across handlers.

// ErrorResponse is the generic error body for failed requests.
type ErrorResponse struct {
	Error   string `json:"error" example:"Invalid input"`
	Details string `json:"details,omitempty" example:""`
}

// MessageResponse is the generic success body when no entity is returned.
type MessageResponse struct {
	Message string `json:"message" example:"Success"`
}

// SuccessResponse wraps an entity with a message.
type SuccessResponse struct {
	Message string      `json:"message" example:"Success"`
	Data    interface{} `json:"data,omitempty"`
}

// SubdomainCheckResponse is returned by GET /api/msme/waiting-list.
type SubdomainCheckResponse struct {
	Subdomain string `json:"subdomain" example:"shree-precision"`
	Available bool   `json:"available" example:"true"`
}

// SendOTPResponse wraps the upstream acknowledgement with the verify step URL
// so the client can carry the email/token pair forward.
type SendOTPResponse struct {
	Message string `json:"message" example:"OTP sent"`
	Next    string `json:"next" example:"/auth/verify-otp?email=owner%40laxmifab.in&token=inv_9f8e7d6c"`
}

// VerifyOTPResponse carries the upstream-issued bearer for subcontractor calls.
type VerifyOTPResponse struct {
	Message     string `json:"message" example:"OTP verified"`
	AccessToken string `json:"access_token" example:"eyJhbGc..."`
}

// QuotationPreview is the annotated quotation returned by GET /api/rfq/quotation.
type QuotationPreview struct {
	QuotationData interface{} `json:"quotationData"`
	Subtotal      float64     `json:"subtotal" example:"21250"`
	TaxRate       float64     `json:"tax_rate" example:"18"`
	TaxAmount     float64     `json:"tax_amount" example:"3825"`
	GrandTotal    float64     `json:"grand_total" example:"25075"`
}

// Pagination describes a paginated listing window.
type Pagination struct {
	CurrentPage  int  `json:"current_page" example:"1"`
	PageSize     int  `json:"page_size" example:"10"`
	TotalRecords int  `json:"total_records" example:"120"`
	TotalPages   int  `json:"total_pages" example:"12"`
	HasNext      bool `json:"has_next" example:"true"`
	HasPrev      bool `json:"has_prev" example:"false"`
}
