package models

import (
	"time"

	_ "github.com/lib/pq"
)

// User is a platform account bridged from the external identity provider.
// ClerkID is the provider-side user ID and is the idempotency key for sign-in sync.
type User struct {
	ID             string     `json:"id" example:"a3f1c9d2-8b4e-4f6a-9c1d-2e5b7a8f0c3d"`
	ClerkID        string     `json:"clerk_id" example:"user_2abCdEfGhIjK"`
	Email          string     `json:"email" example:"maker@factoryspace.in"`
	Name           string     `json:"name" example:"Asha Patel"`
	FirstName      string     `json:"first_name" example:"Asha"`
	LastName       string     `json:"last_name" example:"Patel"`
	Username       string     `json:"username,omitempty" example:"asha.patel"`
	ProfilePicture string     `json:"profile_picture,omitempty"`
	Bio            string     `json:"bio,omitempty"`
	EmailVerified  bool       `json:"email_verified" example:"true"`
	LastSignInAt   *time.Time `json:"last_sign_in_at,omitempty"`
	IsActive       bool       `json:"is_active" example:"true"`
	CreatedAt      time.Time  `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt      time.Time  `json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// Msme is a registered manufacturing organization. Subdomain is the unique
// tenant handle, stored lowercase.
type Msme struct {
	ID              string    `json:"id" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	Name            string    `json:"name" example:"Shree Precision Works"`
	Subdomain       string    `json:"subdomain" example:"shree-precision"`
	Description     string    `json:"description,omitempty"`
	Address         string    `json:"address,omitempty"`
	City            string    `json:"city,omitempty" example:"Pune"`
	State           string    `json:"state,omitempty" example:"Maharashtra"`
	Country         string    `json:"country,omitempty" example:"India"`
	ZipCode         string    `json:"zip_code,omitempty" example:"411001"`
	ContactNumber   string    `json:"contact_number,omitempty" example:"+91 98220 12345"`
	ContactEmail    string    `json:"contact_email,omitempty" example:"contact@shreeprecision.in"`
	YearEstablished string    `json:"year_established,omitempty" example:"2008"`
	WorkingHours    string    `json:"working_hours,omitempty" example:"9:00-18:00"`
	Logo            string    `json:"logo,omitempty"`
	Industry        string    `json:"industry,omitempty" example:"CNC Machining"`
	Services        string    `json:"services,omitempty" example:"Milling, Turning, Surface Grinding"`
	Ratings         float64   `json:"ratings,omitempty" example:"4.5"`
	Pricing         string    `json:"pricing,omitempty"`
	GST             string    `json:"gst,omitempty" example:"27AABCS1234A1Z5"`
	IsActive        bool      `json:"is_active" example:"true"`
	CreatedAt       time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// UserMsme links a user to an organization with an access level.
// At most one association per user carries IsDefault = true.
type UserMsme struct {
	ID          string    `json:"id" example:"9b2f0d7e-6a1c-4e8b-b5d3-0f4a2c6e8d1b"`
	UserID      string    `json:"user_id,omitempty"`
	MsmeID      string    `json:"msme_id"`
	Email       string    `json:"email" example:"worker@shreeprecision.in"`
	Name        string    `json:"name,omitempty" example:"Ravi Kumar"`
	Department  string    `json:"department,omitempty" example:"Production"`
	AccessLevel string    `json:"access_level" example:"employee"`
	Status      string    `json:"status" example:"active"`
	InvitedBy   string    `json:"invited_by,omitempty"`
	IsDefault   bool      `json:"is_default" example:"false"`
	JoinedAt    time.Time `json:"joined_at" example:"2024-01-15T10:30:00Z"`
}

// Access levels allowed on a user/organization association.
const (
	AccessLevelAdmin    = "admin"
	AccessLevelEmployee = "employee"
	AccessLevelOperator = "operator"
)

// MsmeWaitingList is a pre-registration interest entry. It intentionally
// carries no subdomain; the handle is claimed at provisioning time.
type MsmeWaitingList struct {
	ID             string    `json:"id"`
	CompanyName    string    `json:"company_name" example:"Laxmi Fabricators"`
	Email          string    `json:"email" example:"owner@laxmifab.in"`
	CompanyDetails string    `json:"company_details,omitempty"`
	CreatedAt      time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

type ActivityLog struct {
	ID            int       `json:"id" example:"1"`
	CreatedAt     time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UserName      string    `json:"user_name" example:"Asha Patel"`
	EventContext  string    `json:"event_context" example:"msme"`
	EventName     string    `json:"event_name" example:"create"`
	Description   string    `json:"description" example:"Created organization"`
	IPAddress     string    `json:"ip_address" example:"192.168.1.1"`
	AffectedName  string    `json:"affected_name,omitempty" example:"Shree Precision Works"`
	AffectedEmail string    `json:"affected_email,omitempty" example:"contact@shreeprecision.in"`
	MsmeID        string    `json:"msme_id,omitempty"`
}

// CreateMsmeRequest is the body for POST /api/msme/create.
type CreateMsmeRequest struct {
	Name            string  `json:"name" binding:"required" example:"Shree Precision Works"`
	Subdomain       string  `json:"subdomain" binding:"required" example:"shree-precision"`
	Description     string  `json:"description,omitempty"`
	Address         string  `json:"address,omitempty"`
	City            string  `json:"city,omitempty"`
	State           string  `json:"state,omitempty"`
	Country         string  `json:"country,omitempty"`
	ZipCode         string  `json:"zip_code,omitempty"`
	ContactNumber   string  `json:"contact_number,omitempty"`
	ContactEmail    string  `json:"contact_email,omitempty"`
	YearEstablished string  `json:"year_established,omitempty"`
	WorkingHours    string  `json:"working_hours,omitempty"`
	Logo            string  `json:"logo,omitempty"`
	Industry        string  `json:"industry,omitempty"`
	Services        string  `json:"services,omitempty"`
	Ratings         float64 `json:"ratings,omitempty"`
	Pricing         string  `json:"pricing,omitempty"`
	GST             string  `json:"gst,omitempty"`
}

// CreateMsmeFromEmailRequest registers a lightweight organization on the fly,
// used when a subcontractor is invited before onboarding.
type CreateMsmeFromEmailRequest struct {
	Email string `json:"email" binding:"required" example:"owner@laxmifab.in"`
	Name  string `json:"name" binding:"required" example:"Laxmi Fabricators"`
}

// WaitingListRequest is the body for POST /api/msme/waiting-list.
type WaitingListRequest struct {
	CompanyName    string `json:"company_name" binding:"required" example:"Laxmi Fabricators"`
	Email          string `json:"email" binding:"required" example:"owner@laxmifab.in"`
	CompanyDetails string `json:"company_details" binding:"required"`
}

// CreateAssociationRequest is the body for POST /api/usermsme.
type CreateAssociationRequest struct {
	UserID      string `json:"user_id" example:"a3f1c9d2-8b4e-4f6a-9c1d-2e5b7a8f0c3d"`
	MsmeID      string `json:"msme_id" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	Email       string `json:"email" example:"worker@shreeprecision.in"`
	Name        string `json:"name,omitempty"`
	Department  string `json:"department,omitempty"`
	AccessLevel string `json:"access_level" example:"employee"`
	InvitedBy   string `json:"invited_by,omitempty"`
	IsDefault   bool   `json:"is_default,omitempty"`
}

// CreateUserRequest is the admin body for POST /api/user.
type CreateUserRequest struct {
	ClerkID        string `json:"clerk_id" binding:"required"`
	Email          string `json:"email" binding:"required" example:"maker@factoryspace.in"`
	Name           string `json:"name,omitempty"`
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	Username       string `json:"username,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	Bio            string `json:"bio,omitempty"`
	EmailVerified  bool   `json:"email_verified,omitempty"`
}

// RFQCreateRequest is the body for POST /api/rfq, validated locally before
// it is forwarded upstream.
type RFQCreateRequest struct {
	Title                  string `json:"title" example:"500x M8 stainless brackets"`
	Quantity               int    `json:"quantity" example:"500"`
	Deadline               string `json:"deadline" example:"2026-10-15"`
	MaterialSpecifications string `json:"material_specifications" example:"SS304, 3mm sheet, deburred"`
	DrawingLink            string `json:"drawing_link,omitempty" example:"https://drive.example.com/d/abc123"`
}

// QuotationLine is a single priced part inside a quotation.
type QuotationLine struct {
	Description string  `json:"description" example:"Bracket, laser cut + bent"`
	Quantity    int     `json:"minimum_quantity" example:"500"`
	UnitCost    float64 `json:"part_cost" example:"42.50"`
}

// QuotationForm is the subcontractor-entered quotation body. TotalAmount is
// always recomputed server-side before forwarding.
type QuotationForm struct {
	Notes       string          `json:"notes,omitempty"`
	LeadTime    string          `json:"lead_time,omitempty" example:"3 weeks"`
	Taxes       string          `json:"taxes,omitempty" example:"GST 18% extra"`
	Lines       []QuotationLine `json:"quotation_lines"`
	TotalAmount float64         `json:"total_amount" example:"21250"`
}

// QuotationSubmission is the payload forwarded to the upstream respond endpoint.
type QuotationSubmission struct {
	QuotationData    QuotationForm `json:"quotation_data"`
	SubcontractorIDs []string      `json:"subcontractor_ids"`
}

// RFQInviteRequest is the body for POST /api/rfq/:rfq_id/invite.
type RFQInviteRequest struct {
	SubcontractorIDs []string `json:"subcontractor_ids" binding:"required"`
}

// ClarificationRequest is a message on an RFQ clarification thread.
type ClarificationRequest struct {
	Message         string `json:"message" example:"Is anodizing required?"`
	ParentMessageID string `json:"parent_message_id,omitempty"`
}

// SendOTPRequest is the body for POST /api/external/email-otp-auth/send-otp.
type SendOTPRequest struct {
	Email       string `json:"email" example:"owner@laxmifab.in"`
	InviteToken string `json:"invite_token" example:"inv_9f8e7d6c"`
}

// VerifyOTPRequest is the body for POST /api/external/email-otp-auth/verify-otp.
type VerifyOTPRequest struct {
	Email       string `json:"email" example:"owner@laxmifab.in"`
	OTPCode     string `json:"otp_code" example:"482913"`
	InviteToken string `json:"invite_token" example:"inv_9f8e7d6c"`
}
