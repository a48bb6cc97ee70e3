// Package vector provides vector index implementations and similarity search.
package vector

import "context"

// VectorIndex stores embeddings keyed by document ID and answers nearest-neighbour queries.
type VectorIndex interface {
	// Upsert inserts entries, replacing any existing entry with the same ID.
	Upsert(ctx context.Context, entries []Entry) error
	// Query returns up to opts.TopK matches ordered by descending score.
	Query(ctx context.Context, values []float32, opts QueryOptions) ([]Match, error)
	Delete(ctx context.Context, ids []string) error
	Count(ctx context.Context) (int64, error)
	Close() error
}

// Persister is implemented by indexes that keep their state in a local file.
type Persister interface {
	Save(path string) error
	Load(path string) error
}

// Entry is a single stored vector.
type Entry struct {
	ID       string
	Values   []float32
	Metadata map[string]string
}

// QueryOptions controls a Query.
type QueryOptions struct {
	TopK           int
	ReturnValues   bool
	ReturnMetadata bool
}

// Match is a single query hit. Score is cosine similarity, higher is closer.
type Match struct {
	ID       string
	Score    float64
	Values   []float32
	Metadata map[string]string
}
