package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// payloadIDKey holds the caller's ID in each point's payload. Qdrant point IDs must be
// unsigned integers or UUIDs, so other IDs are mapped onto a name-based UUID.
const payloadIDKey = "_glassroot_id"

// QdrantConfig holds connection details for NewQdrantIndex.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// QdrantIndex is a minimal REST client to a Qdrant collection using cosine distance.
// The collection is created on the first upsert if it does not exist.
type QdrantIndex struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client

	mu    sync.Mutex
	ready bool
}

// NewQdrantIndex creates a client for cfg.Collection at cfg.URL.
func NewQdrantIndex(cfg QdrantConfig) (*QdrantIndex, error) {
	if cfg.URL == "" {
		return nil, errors.New("qdrant url is required")
	}
	if cfg.Collection == "" {
		return nil, errors.New("qdrant collection is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &QdrantIndex{
		url:        strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

type qdrantError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *qdrantError) Error() string {
	return fmt.Sprintf("qdrant %s %s failed with status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

func isStatus(err error, status int) bool {
	var qe *qdrantError
	return errors.As(err, &qe) && qe.Status == status
}

func (q *QdrantIndex) ensureCollection(ctx context.Context, dimension int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.ready {
		return nil
	}
	err := q.do(ctx, http.MethodGet, q.collectionPath(""), nil, nil)
	if isStatus(err, http.StatusNotFound) {
		body := map[string]any{
			"vectors": map[string]any{
				"size":     dimension,
				"distance": "Cosine",
			},
		}
		err = q.do(ctx, http.MethodPut, q.collectionPath(""), body, nil)
		if isStatus(err, http.StatusConflict) {
			err = nil
		}
	}
	if err != nil {
		return fmt.Errorf("failed to ensure collection %s: %w", q.collection, err)
	}
	q.ready = true
	return nil
}

// Upsert writes entries as points and waits for the write to be applied.
func (q *QdrantIndex) Upsert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := q.ensureCollection(ctx, len(entries[0].Values)); err != nil {
		return err
	}
	points := make([]map[string]any, len(entries))
	for i, e := range entries {
		payload := make(map[string]any, len(e.Metadata)+1)
		for k, v := range e.Metadata {
			payload[k] = v
		}
		payload[payloadIDKey] = e.ID
		points[i] = map[string]any{
			"id":      pointID(e.ID),
			"vector":  e.Values,
			"payload": payload,
		}
	}
	return q.do(ctx, http.MethodPut, q.collectionPath("/points?wait=true"), map[string]any{"points": points}, nil)
}

// Query runs a nearest-neighbour search. A missing collection yields no matches.
func (q *QdrantIndex) Query(ctx context.Context, values []float32, opts QueryOptions) ([]Match, error) {
	matches := make([]Match, 0)
	if opts.TopK <= 0 {
		return matches, nil
	}
	req := map[string]any{
		"vector":       values,
		"limit":        opts.TopK,
		"with_payload": true,
		"with_vector":  opts.ReturnValues,
	}
	var resp struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
			Vector  []float32      `json:"vector"`
		} `json:"result"`
	}
	err := q.do(ctx, http.MethodPost, q.collectionPath("/points/search"), req, &resp)
	if isStatus(err, http.StatusNotFound) {
		return matches, nil
	}
	if err != nil {
		return nil, err
	}
	for _, r := range resp.Result {
		m := Match{Score: r.Score}
		if id, ok := r.Payload[payloadIDKey].(string); ok {
			m.ID = id
		} else {
			m.ID = fmt.Sprint(r.ID)
		}
		if opts.ReturnValues {
			m.Values = r.Vector
		}
		if opts.ReturnMetadata {
			m.Metadata = payloadMetadata(r.Payload)
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// Delete removes points by ID.
func (q *QdrantIndex) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	points := make([]string, len(ids))
	for i, id := range ids {
		points[i] = pointID(id)
	}
	err := q.do(ctx, http.MethodPost, q.collectionPath("/points/delete?wait=true"), map[string]any{"points": points}, nil)
	if isStatus(err, http.StatusNotFound) {
		return nil
	}
	return err
}

// Count returns the exact number of points in the collection.
func (q *QdrantIndex) Count(ctx context.Context) (int64, error) {
	var resp struct {
		Result struct {
			Count int64 `json:"count"`
		} `json:"result"`
	}
	err := q.do(ctx, http.MethodPost, q.collectionPath("/points/count"), map[string]any{"exact": true}, &resp)
	if isStatus(err, http.StatusNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

// Close releases idle connections.
func (q *QdrantIndex) Close() error {
	q.client.CloseIdleConnections()
	return nil
}

func (q *QdrantIndex) collectionPath(suffix string) string {
	return "/collections/" + q.collection + suffix
}

func (q *QdrantIndex) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode qdrant request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, q.url+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &qdrantError{Method: method, Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func pointID(id string) string {
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("glassroot:"+id)).String()
}

func payloadMetadata(payload map[string]any) map[string]string {
	meta := make(map[string]string, len(payload))
	for k, v := range payload {
		if k == payloadIDKey {
			continue
		}
		if s, ok := v.(string); ok {
			meta[k] = s
		} else {
			meta[k] = fmt.Sprint(v)
		}
	}
	return meta
}
