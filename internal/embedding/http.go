package embedding

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

	"golang.org/x/time/rate"

	"github.com/glassroot/glassroot/internal/apperr"
)

const maxResponseBytes = 8 << 20

// HTTPConfig configures an HTTPEmbedder.
type HTTPConfig struct {
	URL     string
	Model   string
	APIKey  string
	Timeout time.Duration
	// RequestsPerSecond throttles outgoing calls; 0 disables throttling.
	RequestsPerSecond float64
}

// HTTPEmbedder calls a remote inference endpoint and normalizes its response.
type HTTPEmbedder struct {
	url     string
	model   string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPEmbedder returns an embedder posting to cfg.URL.
func NewHTTPEmbedder(cfg HTTPConfig) (*HTTPEmbedder, error) {
	if cfg.URL == "" {
		return nil, errors.New("embedding url is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	e := &HTTPEmbedder{
		url:    cfg.URL,
		model:  cfg.Model,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
	}
	if cfg.RequestsPerSecond > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return e, nil
}

type embedRequest struct {
	Model string `json:"model,omitempty"`
	Text  string `json:"text"`
	Input string `json:"input"`
}

// Embed posts text and returns the normalized vector. Non-2xx responses become
// an *apperr.UpstreamError carrying the status code.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	body, err := json.Marshal(embedRequest{Model: e.model, Text: text, Input: text})
	if err != nil {
		return nil, fmt.Errorf("failed to encode embedding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(data))
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return nil, &apperr.UpstreamError{
			Dependency: "inference",
			StatusCode: resp.StatusCode,
			Err:        errors.New(msg),
		}
	}
	return Normalize(data)
}

// Close releases idle connections.
func (e *HTTPEmbedder) Close() error {
	e.client.CloseIdleConnections()
	return nil
}
