// Package client talks to the family tree HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"familytree/internal/domain"
	"familytree/internal/domain/models"
)

// Client is a member store backed by the HTTP API. It satisfies familytree.MemberStore.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the server at baseURL (e.g. http://localhost:5001).
// token may be empty when the server does not require auth.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithHTTPClient replaces the underlying http.Client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// SetToken sets the bearer token sent with every request
func (c *Client) SetToken(token string) {
	c.token = token
}

// APIError is a non-2xx response. Unwrap returns the domain sentinel for Code,
// so errors.Is(err, domain.ErrHasChildren) works on this side of the wire.
type APIError struct {
	Status int
	Code   string
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s (%d)", e.Code, e.Status)
}

func (e *APIError) Unwrap() error {
	return domain.ErrorForCode(e.Code)
}

func (c *Client) ListMembers(ctx context.Context) ([]models.Member, error) {
	var resp struct {
		Members []models.Member `json:"members"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/members", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Members, nil
}

func (c *Client) CreateMember(ctx context.Context, req *models.CreateMemberRequest) (*models.Member, error) {
	var resp struct {
		Member models.Member `json:"member"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/members", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Member, nil
}

func (c *Client) UpdateMember(ctx context.Context, id string, req *models.UpdateMemberRequest) (*models.Member, error) {
	var resp struct {
		Member models.Member `json:"member"`
	}
	if err := c.do(ctx, http.MethodPatch, "/api/members/"+url.PathEscape(id), req, &resp); err != nil {
		return nil, err
	}
	return &resp.Member, nil
}

func (c *Client) DeleteMember(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/members/"+url.PathEscape(id), nil, nil)
}

// GetTree fetches the server-built tree, rooted at rootID when non-empty
func (c *Client) GetTree(ctx context.Context, rootID string) (*models.TreeNode, error) {
	path := "/api/tree"
	if rootID != "" {
		path += "?root=" + url.QueryEscape(rootID)
	}
	var resp struct {
		Tree *models.TreeNode `json:"tree"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tree, nil
}

func (c *Client) GetSettings(ctx context.Context) (*models.SettingsView, error) {
	var view models.SettingsView
	if err := c.do(ctx, http.MethodGet, "/api/settings", nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Signin exchanges credentials for a session and keeps its token for later calls
func (c *Client) Signin(ctx context.Context, email, password string) (*models.SessionResponse, error) {
	var resp models.SessionResponse
	body := &models.SessionRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/signin", body, &resp); err != nil {
		return nil, err
	}
	if resp.Token != "" {
		c.token = resp.Token
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeError reads the problem body; bodies without a code fall back to the status mapping
func decodeError(status int, data []byte) error {
	var problem struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &problem); err != nil || problem.Error == "" {
		problem.Error = codeForStatus(status)
		if problem.Detail == "" {
			problem.Detail = strings.TrimSpace(string(data))
		}
	}
	return &APIError{Status: status, Code: problem.Error, Detail: problem.Detail}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return domain.CodeBadRequest
	case http.StatusUnauthorized:
		return domain.CodeAuthInvalid
	case http.StatusForbidden:
		return domain.CodeForbidden
	case http.StatusNotFound:
		return domain.CodeNotFound
	case http.StatusConflict:
		return domain.CodeConflict
	case http.StatusTooManyRequests:
		return domain.CodeRateLimited
	default:
		return domain.CodeStorage
	}
}
