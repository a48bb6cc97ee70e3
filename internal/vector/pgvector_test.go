package vector

import (
	"context"
	"os"
	"testing"
)

func TestNewPGVectorIndex_RejectsBadTableName(t *testing.T) {
	for _, table := range []string{"", "1vectors", "vectors; DROP TABLE x", "my-table"} {
		if _, err := NewPGVectorIndex(context.Background(), "postgres://localhost/db", table); err == nil {
			t.Errorf("table %q should be rejected", table)
		}
	}
}

// Runs against a real Postgres with the vector extension when GLASSROOT_TEST_PGVECTOR_DSN is set.
func TestPGVectorIndex_Integration(t *testing.T) {
	dsn := os.Getenv("GLASSROOT_TEST_PGVECTOR_DSN")
	if dsn == "" {
		t.Skip("GLASSROOT_TEST_PGVECTOR_DSN not set")
	}
	ctx := context.Background()
	idx, err := NewPGVectorIndex(ctx, dsn, "glassroot_test_vectors")
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	defer func() { _ = idx.Delete(ctx, []string{"pg-a", "pg-b"}) }()

	err = idx.Upsert(ctx, []Entry{
		{ID: "pg-a", Values: []float32{1, 0, 0}, Metadata: map[string]string{"title": "A"}},
		{ID: "pg-b", Values: []float32{0, 1, 0}},
	})
	if err != nil {
		t.Fatal(err)
	}
	matches, err := idx.Query(ctx, []float32{1, 0, 0}, QueryOptions{TopK: 1, ReturnMetadata: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].ID != "pg-a" || matches[0].Metadata["title"] != "A" {
		t.Errorf("unexpected matches %+v", matches)
	}
}
