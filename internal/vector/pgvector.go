package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PGVectorIndex stores vectors in a Postgres table using the pgvector extension.
type PGVectorIndex struct {
	db    *sql.DB
	table string
}

// NewPGVectorIndex connects to dsn and creates the extension and table if needed.
func NewPGVectorIndex(ctx context.Context, dsn, table string) (*PGVectorIndex, error) {
	if dsn == "" {
		return nil, errors.New("pgvector dsn is required")
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid pgvector table name %q", table)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	idx := &PGVectorIndex{db: db, table: pq.QuoteIdentifier(table)}
	if err := idx.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize pgvector schema: %w", err)
	}
	return idx, nil
}

func (p *PGVectorIndex) initSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return err
	}
	_, err := p.db.ExecContext(ctx, fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		embedding vector NOT NULL,
		metadata JSONB
	)`, p.table))
	return err
}

// Upsert inserts or replaces entries in one transaction.
func (p *PGVectorIndex) Upsert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, embedding, metadata) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET embedding = EXCLUDED.embedding, metadata = EXCLUDED.metadata`, p.table))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		meta, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, e.ID, pgvector.NewVector(e.Values), string(meta)); err != nil {
			return fmt.Errorf("failed to upsert vector %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

// Query orders rows by cosine distance and reports 1 - distance as the score.
func (p *PGVectorIndex) Query(ctx context.Context, values []float32, opts QueryOptions) ([]Match, error) {
	matches := make([]Match, 0)
	if opts.TopK <= 0 {
		return matches, nil
	}
	rows, err := p.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT id, 1 - (embedding <=> $1) AS score, embedding, metadata
		 FROM %s ORDER BY embedding <=> $1 LIMIT $2`, p.table),
		pgvector.NewVector(values), opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("pgvector search failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			m    Match
			vec  pgvector.Vector
			meta []byte
		)
		if err := rows.Scan(&m.ID, &m.Score, &vec, &meta); err != nil {
			return nil, err
		}
		if opts.ReturnValues {
			m.Values = vec.Slice()
		}
		if opts.ReturnMetadata && len(meta) > 0 {
			if err := json.Unmarshal(meta, &m.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// Delete removes rows by ID.
func (p *PGVectorIndex) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := p.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, p.table), pq.Array(ids))
	return err
}

// Count returns the number of rows in the table.
func (p *PGVectorIndex) Count(ctx context.Context) (int64, error) {
	var n int64
	err := p.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, p.table)).Scan(&n)
	return n, err
}

// Close closes the database connection.
func (p *PGVectorIndex) Close() error {
	return p.db.Close()
}
