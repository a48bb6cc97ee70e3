package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/glassroot/glassroot/internal/apperr"
)

// DependencyName identifies the chat completions API in upstream errors.
const DependencyName = "chat completions"

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL string
	Referer string // sent as HTTP-Referer
	Title   string // sent as X-Title
	Timeout time.Duration
}

// Client talks to an OpenAI compatible chat completions API such as OpenRouter.
type Client struct {
	baseURL string
	referer string
	title   string
	http    *http.Client
}

// NewClient creates a client. A zero timeout leaves streams unbounded.
func NewClient(cfg ClientConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		referer: cfg.Referer,
		title:   cfg.Title,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// WireMessage is a message in the completions request body.
type WireMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the body of POST /chat/completions.
type CompletionRequest struct {
	APIKey      string        `json:"-"`
	Model       string        `json:"model"`
	Messages    []WireMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature *float64      `json:"temperature,omitempty"`
}

// Stream posts req with stream enabled and returns the event stream body.
// The caller must close it. Non-2xx responses become an *apperr.UpstreamError.
func (c *Client) Stream(ctx context.Context, req CompletionRequest) (io.ReadCloser, error) {
	req.Stream = true
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode completion request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if req.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	}
	if c.referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		httpReq.Header.Set("X-Title", c.title)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, responseError(resp)
	}
	return resp.Body, nil
}

// Model is an entry of the model catalogue.
type Model struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContextLength int    `json:"context_length"`
}

// ListModels returns the models offered by the API.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, responseError(resp)
	}
	var out struct {
		Data []Model `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode models: %w", err)
	}
	return out.Data, nil
}

// responseError builds an upstream error from a failed response, preferring the
// error.message field of a JSON body over the raw text.
func responseError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := strings.TrimSpace(string(data))
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil && body.Error.Message != "" {
		msg = body.Error.Message
	}
	if msg == "" {
		msg = resp.Status
	}
	return &apperr.UpstreamError{
		Dependency: DependencyName,
		StatusCode: resp.StatusCode,
		Err:        errors.New(msg),
	}
}
