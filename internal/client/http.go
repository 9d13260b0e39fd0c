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

	"github.com/groblegark/dockhand/internal/model"
)

// HTTPClient talks to the receiving server's REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Scan submits one terminal scan or command.
func (c *HTTPClient) Scan(ctx context.Context, req *model.ScanRequest) (*model.ScanResponse, error) {
	var resp model.ScanResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/scan", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSession fetches the live session state for an operator.
func (c *HTTPClient) GetSession(ctx context.Context, operator string) (*model.Session, error) {
	var sess model.Session
	if err := c.doJSON(ctx, http.MethodGet, "/v1/sessions/"+url.PathEscape(operator), nil, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// DeleteSession forcibly clears an operator's session.
func (c *HTTPClient) DeleteSession(ctx context.Context, operator string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/sessions/"+url.PathEscape(operator), nil, nil)
}

// GetBatch fetches a receiving batch by number.
func (c *HTTPClient) GetBatch(ctx context.Context, number string) (*model.Batch, error) {
	var batch model.Batch
	if err := c.doJSON(ctx, http.MethodGet, "/v1/batches/"+url.PathEscape(number), nil, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// ListPallets fetches the pallets committed against a batch.
func (c *HTTPClient) ListPallets(ctx context.Context, number string) (*PalletsResponse, error) {
	var resp PalletsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/batches/"+url.PathEscape(number)+"/pallets", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Receivers fetches the on-shift operators currently scanning a batch.
func (c *HTTPClient) Receivers(ctx context.Context, number string) (*ReceiversResponse, error) {
	var resp ReceiversResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/batches/"+url.PathEscape(number)+"/receivers", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Roster fetches every operator the server has seen this shift.
func (c *HTTPClient) Roster(ctx context.Context) (*RosterResponse, error) {
	var resp RosterResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/operators", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health checks whether the server is up.
func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
