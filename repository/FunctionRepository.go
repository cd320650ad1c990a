package repository

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"backend/models"
)

var (
	subdomainRe = regexp.MustCompile(`^[a-z0-9-]+$`)
	emailRe     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	taxRateRe   = regexp.MustCompile(`(\d+(\.\d+)?)%`)
)

// NormalizeSubdomain lowercases and trims a tenant handle before validation.
func NormalizeSubdomain(subdomain string) string {
	return strings.ToLower(strings.TrimSpace(subdomain))
}

// ValidateSubdomain checks a normalized handle against the allowed charset.
func ValidateSubdomain(subdomain string) error {
	if subdomain == "" {
		return fmt.Errorf("subdomain is required")
	}
	if !subdomainRe.MatchString(subdomain) {
		return fmt.Errorf("subdomain may only contain lowercase letters, digits and hyphens")
	}
	return nil
}

// ValidateEmail checks the basic shape of an email address.
func ValidateEmail(email string) error {
	if !emailRe.MatchString(strings.TrimSpace(email)) {
		return fmt.Errorf("invalid email address: %s", email)
	}
	return nil
}

// ParseTaxRate extracts the first percentage figure from a free-text taxes
// field, e.g. "GST 18% extra" yields 18. Returns 0 when no rate is present.
func ParseTaxRate(taxes string) float64 {
	match := taxRateRe.FindStringSubmatch(taxes)
	if len(match) < 2 {
		return 0
	}
	rate, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0
	}
	return rate
}

// QuotationTotal computes the authoritative quotation amount as the sum of
// quantity times unit cost across all lines, rounded to two decimals.
func QuotationTotal(lines []models.QuotationLine) float64 {
	var total float64
	for _, line := range lines {
		total += float64(line.Quantity) * line.UnitCost
	}
	return math.Round(total*100) / 100
}

// ValidateQuotationLines checks every line of a submission. A quotation with
// no lines is rejected outright.
func ValidateQuotationLines(lines []models.QuotationLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("quotation must contain at least one line")
	}
	for i, line := range lines {
		if strings.TrimSpace(line.Description) == "" {
			return fmt.Errorf("line %d: description is required", i+1)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("line %d: minimum_quantity must be a positive integer", i+1)
		}
		if line.UnitCost <= 0 {
			return fmt.Errorf("line %d: part_cost must be positive", i+1)
		}
	}
	return nil
}

// ValidateRFQRequest applies the issuer-side constraints before an RFQ is
// forwarded upstream.
func ValidateRFQRequest(req models.RFQCreateRequest) error {
	if len(strings.TrimSpace(req.Title)) < 2 {
		return fmt.Errorf("title must be at least 2 characters")
	}
	if req.Quantity <= 0 {
		return fmt.Errorf("quantity must be a positive integer")
	}
	deadline, err := time.Parse("2006-01-02", req.Deadline)
	if err != nil {
		return fmt.Errorf("deadline must be a valid date (YYYY-MM-DD)")
	}
	today := time.Now().Truncate(24 * time.Hour)
	if deadline.Before(today) {
		return fmt.Errorf("deadline cannot be earlier than today")
	}
	if len(strings.TrimSpace(req.MaterialSpecifications)) < 5 {
		return fmt.Errorf("material_specifications must be at least 5 characters")
	}
	if req.DrawingLink != "" {
		u, err := url.Parse(req.DrawingLink)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("drawing_link must be a valid URL")
		}
	}
	return nil
}

// RequestOTPURL builds the invite landing URL carried inside QR codes and
// redirects.
func RequestOTPURL(base, token string) string {
	return strings.TrimRight(base, "/") + "/auth/request-otp?token=" + url.QueryEscape(token)
}

// VerifyOTPNext builds the verify step path returned after an OTP is sent,
// carrying the email/token pair forward.
func VerifyOTPNext(email, token string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", token)
	return "/auth/verify-otp?" + q.Encode()
}
