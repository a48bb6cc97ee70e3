package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glassroot/glassroot/internal/apperr"
)

func TestHTTPEmbedder_Embed(t *testing.T) {
	var got embedRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"shape":[1,3],"data":[[0.1,0.2,0.3]]}`))
	}))
	defer srv.Close()

	e, err := NewHTTPEmbedder(HTTPConfig{URL: srv.URL, Model: "bge", APIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}
	vec, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) != 3 {
		t.Errorf("len = %d, want 3", len(vec))
	}
	if got.Text != "hello" || got.Input != "hello" || got.Model != "bge" {
		t.Errorf("unexpected request body %+v", got)
	}
	if auth != "Bearer k" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestHTTPEmbedder_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e, _ := NewHTTPEmbedder(HTTPConfig{URL: srv.URL})
	_, err := e.Embed(context.Background(), "hello")
	var ue *apperr.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.StatusCode != http.StatusServiceUnavailable || ue.Dependency != "inference" {
		t.Errorf("unexpected error %+v", ue)
	}
}

func TestHTTPEmbedder_UnexpectedShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result": "ok"}`))
	}))
	defer srv.Close()

	e, _ := NewHTTPEmbedder(HTTPConfig{URL: srv.URL})
	if _, err := e.Embed(context.Background(), "hello"); !errors.Is(err, ErrUnexpectedShape) {
		t.Errorf("expected ErrUnexpectedShape, got %v", err)
	}
}

func TestHTTPEmbedder_RateLimitHonoursContext(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`[1]`))
	}))
	defer srv.Close()

	e, _ := NewHTTPEmbedder(HTTPConfig{URL: srv.URL, RequestsPerSecond: 0.01})
	if _, err := e.Embed(context.Background(), "first"); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := e.Embed(ctx, "second"); err == nil {
		t.Error("expected throttled call to fail once the context expires")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("server saw %d calls, want 1", n)
	}
}

func TestNewHTTPEmbedder_RequiresURL(t *testing.T) {
	if _, err := NewHTTPEmbedder(HTTPConfig{}); err == nil {
		t.Error("expected error for empty url")
	}
}
