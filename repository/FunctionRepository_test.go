package repository

import (
	"testing"
	"time"

	"backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSubdomain(t *testing.T) {
	assert.Equal(t, "shree-precision", NormalizeSubdomain("  Shree-Precision "))
	assert.Equal(t, "acme42", NormalizeSubdomain("ACME42"))
}

func TestValidateSubdomain(t *testing.T) {
	assert.NoError(t, ValidateSubdomain("shree-precision"))
	assert.NoError(t, ValidateSubdomain("org-1234"))

	assert.Error(t, ValidateSubdomain(""))
	assert.Error(t, ValidateSubdomain("Shree"))
	assert.Error(t, ValidateSubdomain("has space"))
	assert.Error(t, ValidateSubdomain("dots.notallowed"))
	assert.Error(t, ValidateSubdomain("under_score"))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("owner@laxmifab.in"))
	assert.NoError(t, ValidateEmail("  padded@example.com  "))

	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("missing@tld"))
	assert.Error(t, ValidateEmail("two words@example.com"))
}

func TestParseTaxRate(t *testing.T) {
	assert.Equal(t, 18.0, ParseTaxRate("GST 18% extra"))
	assert.Equal(t, 12.5, ParseTaxRate("12.5% as applicable"))
	assert.Equal(t, 18.0, ParseTaxRate("18% + 5% cess"))
	assert.Equal(t, 0.0, ParseTaxRate("taxes included"))
	assert.Equal(t, 0.0, ParseTaxRate(""))
}

func TestQuotationTotal(t *testing.T) {
	lines := []models.QuotationLine{
		{Description: "Bracket", Quantity: 100, UnitCost: 12.5},
		{Description: "Shaft", Quantity: 10, UnitCost: 2000},
	}
	assert.Equal(t, 21250.0, QuotationTotal(lines))

	assert.Equal(t, 0.0, QuotationTotal(nil))

	// rounding to two decimals
	rounded := QuotationTotal([]models.QuotationLine{
		{Description: "Pin", Quantity: 3, UnitCost: 0.333},
	})
	assert.Equal(t, 1.0, rounded)
}

func TestValidateQuotationLines(t *testing.T) {
	valid := []models.QuotationLine{
		{Description: "Bracket", Quantity: 100, UnitCost: 12.5},
	}
	assert.NoError(t, ValidateQuotationLines(valid))

	assert.Error(t, ValidateQuotationLines(nil))
	assert.Error(t, ValidateQuotationLines([]models.QuotationLine{}))

	assert.Error(t, ValidateQuotationLines([]models.QuotationLine{
		{Description: "   ", Quantity: 1, UnitCost: 1},
	}))
	assert.Error(t, ValidateQuotationLines([]models.QuotationLine{
		{Description: "Bracket", Quantity: 0, UnitCost: 1},
	}))
	assert.Error(t, ValidateQuotationLines([]models.QuotationLine{
		{Description: "Bracket", Quantity: 1, UnitCost: -4},
	}))

	// the failing line index is reported
	err := ValidateQuotationLines([]models.QuotationLine{
		{Description: "Bracket", Quantity: 1, UnitCost: 1},
		{Description: "", Quantity: 1, UnitCost: 1},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestValidateRFQRequest(t *testing.T) {
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	valid := models.RFQCreateRequest{
		Title:                  "CNC machined brackets",
		Quantity:               500,
		Deadline:               tomorrow,
		MaterialSpecifications: "Aluminium 6061-T6, anodized",
		DrawingLink:            "https://drive.example.com/d/abc123",
	}
	assert.NoError(t, ValidateRFQRequest(valid))

	// drawing link is optional
	noLink := valid
	noLink.DrawingLink = ""
	assert.NoError(t, ValidateRFQRequest(noLink))

	tooShort := valid
	tooShort.Title = "x"
	assert.Error(t, ValidateRFQRequest(tooShort))

	badQty := valid
	badQty.Quantity = 0
	assert.Error(t, ValidateRFQRequest(badQty))

	badDate := valid
	badDate.Deadline = "31-12-2026"
	assert.Error(t, ValidateRFQRequest(badDate))

	pastDate := valid
	pastDate.Deadline = "2020-01-01"
	assert.Error(t, ValidateRFQRequest(pastDate))

	thinSpec := valid
	thinSpec.MaterialSpecifications = "alu"
	assert.Error(t, ValidateRFQRequest(thinSpec))

	badLink := valid
	badLink.DrawingLink = "not a url"
	assert.Error(t, ValidateRFQRequest(badLink))
}

func TestRequestOTPURL(t *testing.T) {
	assert.Equal(t,
		"https://factoryspace.in/auth/request-otp?token=inv_9f8e7d6c",
		RequestOTPURL("https://factoryspace.in/", "inv_9f8e7d6c"))
}

func TestVerifyOTPNext(t *testing.T) {
	next := VerifyOTPNext("owner@laxmifab.in", "inv_9f8e7d6c")
	assert.Equal(t, "/auth/verify-otp?email=owner%40laxmifab.in&token=inv_9f8e7d6c", next)
}
