// Package services: services/activity_client.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"school-activities/logger"
	"school-activities/models"
)

const (
	// DefaultTimeout is used when the client is built with a zero timeout.
	DefaultTimeout = 10 * time.Second

	// MaxResponseSize caps how much of a response body is read (1 MiB).
	MaxResponseSize = 1 << 20

	// UserAgent is sent with every request to the activities API.
	UserAgent = "school-activities-portal/1.0"
)

// ActivityAPI is the activities backend as seen by the portal.
type ActivityAPI interface {
	FetchCatalog(ctx context.Context) (*models.Catalog, error)
	Signup(ctx context.Context, activity, email string) (*models.SignupResult, error)
	Unregister(ctx context.Context, activity, email string) (*models.SignupResult, error)
}

// HTTPActivityClient talks to the activities REST API.
type HTTPActivityClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPActivityClient creates a client for baseURL. A nil httpClient gets a fresh one
// with the given timeout (DefaultTimeout when zero).
func NewHTTPActivityClient(baseURL string, httpClient *http.Client, timeout time.Duration) *HTTPActivityClient {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Timeout == 0 {
		httpClient.Timeout = timeout
	}
	return &HTTPActivityClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}
}

// FetchCatalog performs GET /activities.
func (c *HTTPActivityClient) FetchCatalog(ctx context.Context) (*models.Catalog, error) {
	body, err := c.do(ctx, http.MethodGet, c.baseURL+"/activities")
	if err != nil {
		return nil, err
	}

	var catalog models.Catalog
	if err := json.Unmarshal(body, &catalog); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &catalog, nil
}

// Signup performs POST /activities/{activity}/signup?email={email}.
func (c *HTTPActivityClient) Signup(ctx context.Context, activity, email string) (*models.SignupResult, error) {
	return c.mutate(ctx, http.MethodPost, MembershipURL(c.baseURL, activity, "signup", email))
}

// Unregister performs DELETE /activities/{activity}/unregister?email={email}.
func (c *HTTPActivityClient) Unregister(ctx context.Context, activity, email string) (*models.SignupResult, error) {
	return c.mutate(ctx, http.MethodDelete, MembershipURL(c.baseURL, activity, "unregister", email))
}

func (c *HTTPActivityClient) mutate(ctx context.Context, method, target string) (*models.SignupResult, error) {
	body, err := c.do(ctx, method, target)
	if err != nil {
		return nil, err
	}

	var result models.SignupResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &result, nil
}

// do executes the request and returns the body of a 2xx response. Non-2xx answers
// become *APIError with the detail text when the body carries one.
func (c *HTTPActivityClient) do(ctx context.Context, method, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	logger.Debug.Printf("HTTPActivityClient: %s %s", method, target)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, target, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// +1 to detect if the limit was exceeded
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %v", ErrUnavailable, err)
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrMalformedResponse, MaxResponseSize)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewAPIError(resp.StatusCode, target, detailFrom(body))
	}
	return body, nil
}

func detailFrom(body []byte) string {
	var eb models.ErrorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	return eb.Detail
}

// MembershipURL builds {base}/activities/{activity}/{action}?email={email} with both
// identifiers percent-encoded the way encodeURIComponent does.
func MembershipURL(baseURL, activity, action, email string) string {
	return fmt.Sprintf("%s/activities/%s/%s?email=%s",
		strings.TrimRight(baseURL, "/"), EncodeComponent(activity), action, EncodeComponent(email))
}

// EncodeComponent percent-encodes s for use as a single path segment or query value.
// Spaces become %20, and '/', '?', '&', '=', '+' and '#' are all escaped.
func EncodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// IsUnavailable reports whether err is a transport failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
