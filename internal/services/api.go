// JSON API client shared by the token-authenticated providers
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/multilink/internal/shared"
)

const maxAPIBytes = 4 << 20

// APIClient makes authenticated GET requests against a provider's JSON API.
type APIClient struct {
	baseURL       string
	authorization string
	httpClient    *http.Client
}

// NewAPIClient creates a client for baseURL. An empty authorization sends no Authorization header.
func NewAPIClient(baseURL, authorization string, client *http.Client) *APIClient {
	if client == nil {
		client = http.DefaultClient
	}

	return &APIClient{
		baseURL:       baseURL,
		authorization: authorization,
		httpClient:    client,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
}

// OK reports whether the status code is 2xx.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIClient) Get(ctx context.Context, path string) (*APIResponse, error) {
	fullURL := a.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if a.authorization != "" {
		req.Header.Set("Authorization", a.authorization)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAPIBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
		IsJSON:     json.Valid(body),
	}, nil
}

// GetJSON performs a GET request and decodes a 2xx JSON body into v.
func (a *APIClient) GetJSON(ctx context.Context, path string, v any) error {
	resp, err := a.Get(ctx, path)
	if err != nil {
		return err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", shared.ErrAuthFailed, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: status %d", shared.ErrTrackNotFound, resp.StatusCode)
	case !resp.OK():
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	case !resp.IsJSON:
		return fmt.Errorf("%w: body is not JSON", shared.ErrUnexpectedPayload)
	}

	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrUnexpectedPayload, err)
	}
	return nil
}
