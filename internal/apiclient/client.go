// Package apiclient is a typed client for the Glassroot edge API.
package apiclient

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

	"github.com/glassroot/glassroot/internal/models"
)

// DefaultBaseURL is the address of a locally running server.
const DefaultBaseURL = "http://localhost:8787"

const timestampLayout = "2006-01-02T15:04:05.000Z"

// APIError is a failed call. Status is 0 when the server could not be reached.
type APIError struct {
	Message       string `json:"error"`
	Status        int    `json:"status"`
	Timestamp     string `json:"timestamp,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Client calls the edge API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the API at baseURL. An empty baseURL uses DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health reports server liveness and which bindings are configured.
func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	var out models.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateDocument stores and embeds a document.
func (c *Client) CreateDocument(ctx context.Context, in models.DocumentInput) (*models.CreatedDocument, error) {
	var out models.CreatedDocument
	if err := c.do(ctx, http.MethodPost, "/api/documents", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDocuments returns the most recent documents, newest first.
func (c *Client) ListDocuments(ctx context.Context) ([]models.DocumentSummary, error) {
	var out models.DocumentList
	if err := c.do(ctx, http.MethodGet, "/api/documents", nil, &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

// GetDocument fetches one document by id.
func (c *Client) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var out models.Document
	if err := c.do(ctx, http.MethodGet, "/api/documents/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search runs a semantic search. A limit of 0 leaves the server default.
func (c *Client) Search(ctx context.Context, query string, limit int) (*models.SearchResponse, error) {
	params := url.Values{"q": {query}}
	if limit != 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var out models.SearchResponse
	if err := c.do(ctx, http.MethodGet, "/api/search?"+params.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return c.networkError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return c.networkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.networkError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) networkError(err error) *APIError {
	return &APIError{
		Message:   "Network error: " + err.Error(),
		Timestamp: c.now().UTC().Format(timestampLayout),
	}
}

// decodeError reads the error envelope, falling back to the raw body or status text.
func decodeError(resp *http.Response, data []byte) *APIError {
	apiErr := &APIError{}
	if json.Unmarshal(data, apiErr) != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	apiErr.Status = resp.StatusCode
	if apiErr.CorrelationID == "" {
		apiErr.CorrelationID = resp.Header.Get("X-Correlation-Id")
	}
	return apiErr
}
