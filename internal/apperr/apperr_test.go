package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestRedact(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short words untouched", "embedding failed", "embedding failed"},
		{"api key masked", "bad key sk-or-v1-abcdefghijklmnopqrstuvwxyz", "bad key •••redacted•••"},
		{"exactly 20 chars", strings.Repeat("a", 20), "•••redacted•••"},
		{"19 chars kept", strings.Repeat("a", 19), strings.Repeat("a", 19)},
		{"underscores count", "token=" + strings.Repeat("x_", 12), "token=•••redacted•••"},
		{"two tokens", strings.Repeat("A", 25) + " and " + strings.Repeat("9", 30), "•••redacted••• and •••redacted•••"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Redact(tt.in); got != tt.want {
				t.Errorf("Redact(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", Validation("title", "required"), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("create: %w", Validation("title", "required")), http.StatusBadRequest},
		{"not found", &NotFoundError{Resource: "document", ID: "x"}, http.StatusNotFound},
		{"upstream", Upstream("storage", errors.New("disk full")), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUpstream_KeepsExisting(t *testing.T) {
	inner := &UpstreamError{Dependency: "inference", StatusCode: 502}
	got := Upstream("vector index", inner)
	var ue *UpstreamError
	if !errors.As(got, &ue) || ue.Dependency != "inference" {
		t.Errorf("Upstream() rewrapped an upstream error: %v", got)
	}
}

func TestNewEnvelope(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 45, 123_000_000, time.UTC)
	env := NewEnvelope(errors.New("key "+strings.Repeat("k", 32)+" rejected"), 500, "corr-1", now)
	if env.Error != "key •••redacted••• rejected" {
		t.Errorf("Error = %q", env.Error)
	}
	if env.Status != 500 || env.CorrelationID != "corr-1" {
		t.Errorf("unexpected envelope %+v", env)
	}
	if env.Timestamp != "2024-03-01T12:30:45.123Z" {
		t.Errorf("Timestamp = %q", env.Timestamp)
	}
}

func TestNotFoundError_Message(t *testing.T) {
	if got := (&NotFoundError{}).Error(); got != "Not Found" {
		t.Errorf("got %q", got)
	}
	if got := (&NotFoundError{Resource: "document", ID: "abc"}).Error(); got != "document not found: abc" {
		t.Errorf("got %q", got)
	}
}
