package services

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"golang.org/x/net/html"
)

// convertHTMLToText converts HTML content to plain text for email sending
func convertHTMLToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		// If parsing fails, return the original content
		return htmlContent
	}

	var text strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
		case html.ElementNode:
			// Add line breaks for block elements
			switch n.Data {
			case "p", "div", "br", "h1", "h2", "h3", "h4", "h5", "h6":
				text.WriteString("\n")
			case "li":
				text.WriteString("- ")
			case "table", "tr":
				text.WriteString("\n")
			case "td", "th":
				text.WriteString(" | ")
			}
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			extractText(child)
		}
	}

	extractText(doc)

	result := text.String()
	result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	result = strings.TrimSpace(result)

	return result
}

// EmailService sends transactional mail over SMTP with simple {{var}}
// template substitution.
type EmailService struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewEmailService builds the service from SMTP_* environment variables.
func NewEmailService() *EmailService {
	return &EmailService{
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("SMTP_FROM"),
	}
}

// WelcomeEmailData carries the variables for the organization welcome mail.
type WelcomeEmailData struct {
	CompanyName  string
	Email        string
	LoginURL     string
	SupportEmail string
}

const welcomeMsmeTemplate = `
<div>
  <h2>Welcome to FactorySpace, {{company_name}}!</h2>
  <p>Your organization has been registered on FactorySpace.</p>
  <p>Sign in at {{login_url}} with {{email}} to complete your profile and
  start receiving requests for quotation.</p>
  <p>Questions? Write to {{support_email}}.</p>
</div>`

// SendWelcomeMsmeEmail notifies a newly registered organization. Used by the
// create-from-email flow where the owner has not onboarded yet.
func (es *EmailService) SendWelcomeMsmeEmail(data WelcomeEmailData) error {
	if data.LoginURL == "" {
		data.LoginURL = strings.TrimRight(os.Getenv("FRONTEND_BASE_URL"), "/") + "/login"
	}
	if data.SupportEmail == "" {
		data.SupportEmail = "support@factoryspace.in"
	}

	subject := es.processTemplate("Welcome to FactorySpace, {{company_name}}", data)
	body := convertHTMLToText(es.processTemplate(welcomeMsmeTemplate, data))

	return es.sendEmail(data.Email, subject, body)
}

// processTemplate substitutes {{var}} placeholders with the welcome data.
func (es *EmailService) processTemplate(templateStr string, data WelcomeEmailData) string {
	variables := map[string]string{
		"company_name":  data.CompanyName,
		"email":         data.Email,
		"login_url":     data.LoginURL,
		"support_email": data.SupportEmail,
	}

	result := templateStr
	for key, value := range variables {
		placeholder := fmt.Sprintf("{{%s}}", key)
		result = strings.ReplaceAll(result, placeholder, value)
	}

	return result
}

// sendEmail submits a plain-text message over SMTP.
func (es *EmailService) sendEmail(to, subject, body string) error {
	if es.host == "" || es.from == "" {
		return fmt.Errorf("SMTP is not configured")
	}

	auth := smtp.PlainAuth("", es.username, es.password, es.host)

	headers := []string{
		"From: " + es.from,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}
	msg := []byte(strings.Join(headers, "\r\n") + "\r\n")

	addr := es.host + ":" + es.port
	return smtp.SendMail(addr, auth, es.from, []string{to}, msg)
}
