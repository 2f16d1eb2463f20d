package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/homeplanner/homeplanner/internal/auth"
	"github.com/homeplanner/homeplanner/internal/dashboard"
	"github.com/homeplanner/homeplanner/internal/db"
)

// APIClient handles HTTP communication with the dashboard server.
type APIClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error (%d)", e.StatusCode)
}

// NewClient creates a new APIClient from stored credentials.
func NewClient() (*APIClient, error) {
	tokenData, err := LoadToken()
	if err != nil {
		return nil, err
	}
	c := NewClientWithURL(tokenData.Server)
	c.Token = tokenData.Token
	return c, nil
}

// NewClientWithURL creates a new APIClient with an explicit server URL (for login).
func NewClientWithURL(serverURL string) *APIClient {
	return &APIClient{
		BaseURL: strings.TrimRight(serverURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *APIClient) do(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	endpoint := c.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(respBody, apiErr)
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// LoginResponse is a successful login.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Label       string    `json:"label"`
	Role        auth.Role `json:"role"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Login exchanges an access code for a session token.
func (c *APIClient) Login(ctx context.Context, code string) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"password": code,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.AccessToken == "" {
		return nil, fmt.Errorf("server returned empty token")
	}
	return &resp, nil
}

// Logout tells the server the session is over.
func (c *APIClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
}

// SessionResponse describes the current session.
type SessionResponse struct {
	Label         string    `json:"label"`
	Role          auth.Role `json:"role"`
	ExpiresAt     time.Time `json:"expires_at"`
	Authenticated bool      `json:"authenticated"`
}

// Session returns the current session.
func (c *APIClient) Session(ctx context.Context) (*SessionResponse, error) {
	var resp SessionResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/session", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Dashboard fetches the server-computed dashboard.
func (c *APIClient) Dashboard(ctx context.Context, w dashboard.Window) (*dashboard.View, error) {
	var view dashboard.View
	path := "/api/v1/dashboard?window=" + url.QueryEscape(string(w))
	if err := c.do(ctx, http.MethodGet, path, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// LoginAttempts lists recent login attempts, newest first. Admin only.
func (c *APIClient) LoginAttempts(ctx context.Context, limit int) ([]db.LoginAttempt, error) {
	var resp []db.LoginAttempt
	path := "/api/v1/admin/login-attempts?limit=" + strconv.Itoa(limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// AccessCodes lists the configured access codes without their hashes. Admin only.
func (c *APIClient) AccessCodes(ctx context.Context) ([]auth.AccessCode, error) {
	var resp []auth.AccessCode
	if err := c.do(ctx, http.MethodGet, "/api/v1/admin/access-codes", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
