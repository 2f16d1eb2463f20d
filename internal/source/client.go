// Package source reads tasks, reminders, knowledge entries and the team
// roster from the planner data API.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/homeplanner/homeplanner/internal/model"
)

const defaultTimeout = 30 * time.Second

// Client is a read-only HTTP client for the planner data API.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// APIError represents a non-2xx response from the data API.
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
	Detail     string `json:"detail"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Detail
	}
	if msg != "" {
		return fmt.Sprintf("API error (%d): %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("API error (%d)", e.StatusCode)
}

// New creates a Client. A nil httpClient gets a 30s timeout default.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: httpClient,
	}
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.Token = token
	return &cp
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	url := c.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		// FastAPI sends {"detail": "..."}; this service sends {"error": "..."}.
		_ = json.Unmarshal(body, apiErr)
		if apiErr.Message == "" && apiErr.Detail == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decoding response from %s: %w", url, err)
	}
	return nil
}

// Tasks returns every task.
func (c *Client) Tasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.get(ctx, "/tasks/", &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpcomingReminders returns active reminders due from now on, as ordered by
// the server.
func (c *Client) UpcomingReminders(ctx context.Context) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := c.get(ctx, "/reminders/upcoming", &reminders); err != nil {
		return nil, err
	}
	return reminders, nil
}

// Knowledge returns every knowledge-base entry.
func (c *Client) Knowledge(ctx context.Context) ([]model.KnowledgeEntry, error) {
	var entries []model.KnowledgeEntry
	if err := c.get(ctx, "/knowledge/", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Team returns the household roster.
func (c *Client) Team(ctx context.Context) ([]model.TeamMember, error) {
	var resp struct {
		Team []model.TeamMember `json:"team"`
	}
	if err := c.get(ctx, "/team/", &resp); err != nil {
		return nil, err
	}
	return resp.Team, nil
}
