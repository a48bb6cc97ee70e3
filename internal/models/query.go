package models

import (
	"math"
	"strconv"
	"strings"

	"github.com/glassroot/glassroot/internal/apperr"
)

// Search limit bounds.
const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 20
)

// SearchQuery is a validated semantic search request.
type SearchQuery struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// ParseSearchQuery builds a SearchQuery from the raw q and limit parameters.
// hasLimit reports whether the limit parameter was present at all.
// Returns a ValidationError if q is empty after trimming. The limit defaults to 10,
// falls back to 10 when it is not a finite number, and is clamped to [1, 20].
func ParseSearchQuery(q, rawLimit string, hasLimit bool) (*SearchQuery, error) {
	query := strings.TrimSpace(q)
	if query == "" {
		return nil, apperr.Validation("", "Missing query parameter: q")
	}
	return &SearchQuery{Query: query, Limit: parseLimit(rawLimit, hasLimit)}, nil
}

func parseLimit(raw string, present bool) int {
	if !present {
		return DefaultSearchLimit
	}
	raw = strings.TrimSpace(raw)
	n := 0.0
	if raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return DefaultSearchLimit
		}
		n = f
	}
	n = math.Floor(n)
	if n < 1 {
		return 1
	}
	if n > MaxSearchLimit {
		return MaxSearchLimit
	}
	return int(n)
}
