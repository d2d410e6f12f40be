// Package mc is a client for the observability platform's GraphQL API.
//
// Only the operations the migration pipeline needs are implemented. Auth is
// the static API key pair from the active profile, sent as request headers
// on every call.
package mc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Batch is the page size for paginated list queries.
const Batch = 500

// Client talks to one workspace's GraphQL endpoint.
type Client struct {
	endpoint string
	apiID    string
	apiToken string
	httpc    *http.Client
}

// NewClient creates a client for the given endpoint and API key pair.
func NewClient(endpoint, apiID, apiToken string) *Client {
	return &Client{
		endpoint: endpoint,
		apiID:    apiID,
		apiToken: apiToken,
		httpc:    &http.Client{Timeout: 60 * time.Second},
	}
}

// SetHTTPClient overrides the underlying HTTP client. Used by tests.
func (c *Client) SetHTTPClient(httpc *http.Client) {
	c.httpc = httpc
}

// APIError is a failed GraphQL call: transport-level (non-2xx) or a
// response carrying GraphQL errors.
type APIError struct {
	HTTPStatus int
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("API error: HTTP %d", e.HTTPStatus)
	}
	return fmt.Sprintf("API error: %s", strings.Join(e.Messages, "; "))
}

// graphQLRequest is the POST body for every call.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// do posts one GraphQL operation and decodes the data payload into out.
func (c *Client) do(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-mcd-id", c.apiID)
	req.Header.Set("x-mcd-token", c.apiToken)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", c.endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{HTTPStatus: resp.StatusCode}
		var gr graphQLResponse
		if json.Unmarshal(respBody, &gr) == nil {
			for _, e := range gr.Errors {
				apiErr.Messages = append(apiErr.Messages, e.Message)
			}
		}
		return apiErr
	}

	var gr graphQLResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if len(gr.Errors) > 0 {
		apiErr := &APIError{HTTPStatus: resp.StatusCode}
		for _, e := range gr.Errors {
			apiErr.Messages = append(apiErr.Messages, e.Message)
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(gr.Data, out); err != nil {
			return fmt.Errorf("parse data: %w", err)
		}
	}
	return nil
}
