package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RFQClient talks to the external RFQ backend. The upstream system owns all
// RFQ, quotation and clarification state; this client only forwards requests
// and relays status codes verbatim.
type RFQClient struct {
	client  *resty.Client
	baseURL string
}

// NewRFQClient builds a client against RFQ_API_BASE_URL.
func NewRFQClient() *RFQClient {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &RFQClient{
		client:  client,
		baseURL: strings.TrimRight(os.Getenv("RFQ_API_BASE_URL"), "/"),
	}
}

// NewRFQClientWithBase is used by tests to point at a fake upstream.
func NewRFQClientWithBase(baseURL string) *RFQClient {
	client := resty.New()
	client.SetTimeout(10 * time.Second)

	return &RFQClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// UpstreamResponse carries the relayed upstream reply.
type UpstreamResponse struct {
	StatusCode  int
	Body        []byte
	ContentType string
}

// Forward sends a request upstream, propagating the caller's Authorization
// header. A non-2xx upstream status is not an error here; handlers relay it.
func (rc *RFQClient) Forward(ctx context.Context, method, path, authHeader string, body interface{}) (*UpstreamResponse, error) {
	if rc.baseURL == "" {
		return nil, fmt.Errorf("RFQ_API_BASE_URL is not configured")
	}

	req := rc.client.R().SetContext(ctx)
	if authHeader != "" {
		req.SetHeader("Authorization", authHeader)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json")
		req.SetBody(body)
	}

	url := rc.baseURL + path

	var resp *resty.Response
	var err error
	switch strings.ToUpper(method) {
	case "GET":
		resp, err = req.Get(url)
	case "POST":
		resp, err = req.Post(url)
	case "PUT":
		resp, err = req.Put(url)
	case "DELETE":
		resp, err = req.Delete(url)
	default:
		return nil, fmt.Errorf("unsupported method: %s", method)
	}
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}

	return &UpstreamResponse{
		StatusCode:  resp.StatusCode(),
		Body:        resp.Body(),
		ContentType: resp.Header().Get("Content-Type"),
	}, nil
}
