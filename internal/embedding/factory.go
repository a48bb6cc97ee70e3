package embedding

import (
	"fmt"
	"os"
	"time"

	"github.com/glassroot/glassroot/internal/config"
)

// NewEmbedder creates the embedder selected by cfg.Type, wrapped in a cache when
// cfg.CacheSize is positive. It returns a nil embedder and nil error for "none".
func NewEmbedder(cfg config.EmbeddingConfig) (Embedder, error) {
	var e Embedder
	switch cfg.Type {
	case config.EmbeddingHTTP:
		h, err := NewHTTPEmbedder(HTTPConfig{
			URL:               cfg.URL,
			Model:             cfg.Model,
			APIKey:            os.Getenv(cfg.APIKeyEnv),
			Timeout:           time.Duration(cfg.TimeoutSecs) * time.Second,
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
		if err != nil {
			return nil, err
		}
		e = h
	case config.EmbeddingMock:
		e = NewMockEmbedder(cfg.Dimensions)
	case config.EmbeddingNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown embedding type: %s (supported: http, mock, none)", cfg.Type)
	}
	if cfg.CacheSize > 0 {
		e = NewCachedEmbedder(e, cfg.CacheSize)
	}
	return e, nil
}
