package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glassroot/glassroot/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStorage_CreateAndGet(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	doc := &models.Document{ID: "doc1", Title: "Title", Content: "Content"}
	if err := store.CreateDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}
	if doc.Created == 0 {
		t.Error("Created should be set")
	}
	if doc.VectorID != "doc1" {
		t.Errorf("VectorID = %q, want doc1", doc.VectorID)
	}

	got, err := store.GetDocument(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Title" || got.Content != "Content" || got.VectorID != "doc1" || got.Created != doc.Created {
		t.Errorf("got %+v", got)
	}
}

func TestSQLiteStorage_GetMissing(t *testing.T) {
	store := newTestStorage(t)
	_, err := store.GetDocument(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStorage_DuplicateID(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	if err := store.CreateDocument(ctx, &models.Document{ID: "a", Title: "t", Content: "c"}); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateDocument(ctx, &models.Document{ID: "a", Title: "t", Content: "c"}); err == nil {
		t.Error("expected primary key violation")
	}
}

func TestSQLiteStorage_ListOrdering(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	docs := []*models.Document{
		{ID: "old", Title: "old", Content: "c", Created: base},
		{ID: "tie-first", Title: "tie-first", Content: "c", Created: base + 10},
		{ID: "tie-second", Title: "tie-second", Content: "c", Created: base + 10},
		{ID: "new", Title: "new", Content: "c", Created: base + 20},
	}
	for _, d := range docs {
		if err := store.CreateDocument(ctx, d); err != nil {
			t.Fatal(err)
		}
	}

	list, err := store.ListDocuments(ctx, 50)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"new", "tie-second", "tie-first", "old"}
	if len(list) != len(want) {
		t.Fatalf("got %d docs, want %d", len(list), len(want))
	}
	for i, id := range want {
		if list[i].ID != id {
			t.Errorf("list[%d] = %s, want %s", i, list[i].ID, id)
		}
	}

	limited, err := store.ListDocuments(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 || limited[0].ID != "new" {
		t.Errorf("limit not applied: %+v", limited)
	}
}

func TestSQLiteStorage_ListEmpty(t *testing.T) {
	store := newTestStorage(t)
	list, err := store.ListDocuments(context.Background(), 50)
	if err != nil {
		t.Fatal(err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", list)
	}
}

func TestSQLiteStorage_Count(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if err := store.CreateDocument(ctx, &models.Document{ID: id, Title: id, Content: id}); err != nil {
			t.Fatal(err)
		}
	}
	n, err := store.CountDocuments(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("CountDocuments() = %d, want 3", n)
	}
}
