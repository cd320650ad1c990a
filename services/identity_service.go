package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// IdentityProfile is the provider-side view of a user, fetched with the
// server secret during sign-in sync.
type IdentityProfile struct {
	ID             string `json:"id"`
	Email          string `json:"email_address"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Username       string `json:"username"`
	ProfilePicture string `json:"image_url"`
	EmailVerified  bool   `json:"email_verified"`
}

// IdentityClient fetches user profiles from the external identity provider.
type IdentityClient struct {
	client    *resty.Client
	baseURL   string
	secretKey string
}

// NewIdentityClient builds a client against IDENTITY_API_BASE_URL using
// IDENTITY_SECRET_KEY as the server credential.
func NewIdentityClient() *IdentityClient {
	client := resty.New()
	client.SetTimeout(15 * time.Second)

	return &IdentityClient{
		client:    client,
		baseURL:   strings.TrimRight(os.Getenv("IDENTITY_API_BASE_URL"), "/"),
		secretKey: os.Getenv("IDENTITY_SECRET_KEY"),
	}
}

// NewIdentityClientWithBase is used by tests to point at a fake provider.
func NewIdentityClientWithBase(baseURL, secretKey string) *IdentityClient {
	client := resty.New()
	client.SetTimeout(10 * time.Second)

	return &IdentityClient{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
	}
}

// GetUser fetches the provider profile for a provider user ID.
func (ic *IdentityClient) GetUser(ctx context.Context, providerUserID string) (*IdentityProfile, error) {
	if ic.baseURL == "" {
		return nil, fmt.Errorf("IDENTITY_API_BASE_URL is not configured")
	}

	resp, err := ic.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+ic.secretKey).
		Get(ic.baseURL + "/v1/users/" + providerUserID)
	if err != nil {
		return nil, fmt.Errorf("identity provider request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("identity provider returned status %d", resp.StatusCode())
	}

	var profile IdentityProfile
	if err := json.Unmarshal(resp.Body(), &profile); err != nil {
		return nil, fmt.Errorf("failed to decode identity profile: %w", err)
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("identity profile missing user ID")
	}
	return &profile, nil
}
