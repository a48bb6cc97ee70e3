package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/glassroot/glassroot/internal/config"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(16)
	ctx := context.Background()
	a, _ := e.Embed(ctx, "glassroot")
	b, _ := e.Embed(ctx, "glassroot")
	c, _ := e.Embed(ctx, "something else")
	if len(a) != 16 {
		t.Fatalf("len = %d, want 16", len(a))
	}
	same, differs := true, false
	for i := range a {
		if a[i] != b[i] {
			same = false
		}
		if a[i] != c[i] {
			differs = true
		}
	}
	if !same {
		t.Error("same text produced different embeddings")
	}
	if !differs {
		t.Error("different texts produced identical embeddings")
	}
	var sum float64
	for _, v := range a {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1) > 1e-4 {
		t.Errorf("embedding not unit length: |v|^2 = %v", sum)
	}
}

func TestNewEmbedder(t *testing.T) {
	e, err := NewEmbedder(config.EmbeddingConfig{Type: config.EmbeddingNone})
	if err != nil || e != nil {
		t.Errorf("none: got %v, %v", e, err)
	}

	e, err = NewEmbedder(config.EmbeddingConfig{Type: config.EmbeddingMock, Dimensions: 8, CacheSize: 4})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*CachedEmbedder); !ok {
		t.Errorf("expected cache wrapper, got %T", e)
	}

	if _, err := NewEmbedder(config.EmbeddingConfig{Type: "onnx"}); err == nil {
		t.Error("expected error for unknown type")
	}
	if _, err := NewEmbedder(config.EmbeddingConfig{Type: config.EmbeddingHTTP}); err == nil {
		t.Error("expected error for http without url")
	}
}
