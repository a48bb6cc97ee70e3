package vector

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glassroot/glassroot/internal/config"
)

func TestNewVectorIndex_Memory(t *testing.T) {
	ctx := context.Background()
	idx, err := NewVectorIndex(ctx, config.VectorConfig{IndexType: config.IndexMemory})
	if err != nil {
		t.Fatalf("NewVectorIndex(memory): %v", err)
	}
	defer idx.Close()

	if err := idx.Upsert(ctx, []Entry{{ID: "a", Values: []float32{1, 0, 0}}}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if n, _ := idx.Count(ctx); n != 1 {
		t.Errorf("Count=%d, want 1", n)
	}
}

func TestNewVectorIndex_MemoryLoadsPersistedFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vectors.idx")
	seed := NewMemoryIndex()
	_ = seed.Upsert(ctx, []Entry{{ID: "a", Values: []float32{1, 0}}})
	if err := seed.Save(path); err != nil {
		t.Fatal(err)
	}

	idx, err := NewVectorIndex(ctx, config.VectorConfig{IndexType: config.IndexMemory, IndexPath: path})
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := idx.Count(ctx); n != 1 {
		t.Errorf("Count=%d, want 1", n)
	}
}

func TestNewVectorIndex_None(t *testing.T) {
	idx, err := NewVectorIndex(context.Background(), config.VectorConfig{IndexType: config.IndexNone})
	if err != nil || idx != nil {
		t.Errorf("expected nil index and nil error, got %v, %v", idx, err)
	}
}

func TestNewVectorIndex_Unknown(t *testing.T) {
	if _, err := NewVectorIndex(context.Background(), config.VectorConfig{IndexType: "faiss"}); err == nil {
		t.Error("expected error for unknown index type")
	}
}

func TestNewVectorIndex_QdrantRequiresURL(t *testing.T) {
	cfg := config.VectorConfig{IndexType: config.IndexQdrant, Qdrant: config.QdrantConfig{Collection: "c"}}
	if _, err := NewVectorIndex(context.Background(), cfg); err == nil {
		t.Error("expected error for missing qdrant url")
	}
}

func TestNewVectorIndex_PGVectorRequiresDSN(t *testing.T) {
	t.Setenv("GLASSROOT_TEST_EMPTY_DSN", "")
	cfg := config.VectorConfig{
		IndexType: config.IndexPGVector,
		PGVector:  config.PGVectorConfig{DSNEnv: "GLASSROOT_TEST_EMPTY_DSN", Table: "vectors"},
	}
	if _, err := NewVectorIndex(context.Background(), cfg); err == nil {
		t.Error("expected error for missing dsn")
	}
}
