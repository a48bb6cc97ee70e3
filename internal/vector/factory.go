package vector

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/glassroot/glassroot/internal/config"
)

// NewVectorIndex creates the vector index selected by cfg.IndexType. It returns a nil index
// and nil error for "none", leaving the binding unconfigured. A memory index with an
// IndexPath is a FileIndex, loaded from and written through to that file.
func NewVectorIndex(ctx context.Context, cfg config.VectorConfig) (VectorIndex, error) {
	switch cfg.IndexType {
	case config.IndexMemory, "":
		if cfg.IndexPath == "" {
			return NewMemoryIndex(), nil
		}
		idx, err := NewFileIndex(cfg.IndexPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load vector index: %w", err)
		}
		return idx, nil
	case config.IndexQdrant:
		idx, err := NewQdrantIndex(QdrantConfig{
			URL:        cfg.Qdrant.URL,
			APIKey:     os.Getenv(cfg.Qdrant.APIKeyEnv),
			Collection: cfg.Qdrant.Collection,
			Timeout:    time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		return idx, nil
	case config.IndexPGVector:
		idx, err := NewPGVectorIndex(ctx, os.Getenv(cfg.PGVector.DSNEnv), cfg.PGVector.Table)
		if err != nil {
			return nil, err
		}
		return idx, nil
	case config.IndexNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown index type: %s (supported: memory, qdrant, pgvector, none)", cfg.IndexType)
	}
}
