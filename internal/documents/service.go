// Package documents implements document creation, retrieval and semantic search over the
// relational store, the vector index and the inference binding.
package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glassroot/glassroot/internal/apperr"
	"github.com/glassroot/glassroot/internal/embedding"
	"github.com/glassroot/glassroot/internal/models"
	"github.com/glassroot/glassroot/internal/storage"
	"github.com/glassroot/glassroot/internal/vector"
)

// ListLimit is the number of documents returned by List.
const ListLimit = 50

// DefaultMinDimensions is the smallest embedding length accepted when none is configured.
const DefaultMinDimensions = 8

// Dependency names used in upstream errors.
const (
	DependencyStorage   = "storage"
	DependencyVectors   = "vector index"
	DependencyInference = "inference"
)

// Service coordinates the three bindings. Any of them may be nil, in which case the
// operations that need it fail with an upstream error.
type Service struct {
	store         storage.Storage
	index         vector.VectorIndex
	embedder      embedding.Embedder
	minDimensions int
	logger        *zap.Logger
	newID         func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMinDimensions sets the smallest embedding length accepted by Create.
func WithMinDimensions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minDimensions = n
		}
	}
}

// WithIDGenerator overrides document ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// NewService creates a document service over the given bindings.
func NewService(store storage.Storage, index vector.VectorIndex, embedder embedding.Embedder, opts ...Option) *Service {
	s := &Service{
		store:         store,
		index:         index,
		embedder:      embedder,
		minDimensions: DefaultMinDimensions,
		logger:        zap.NewNop(),
		newID:         func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func notConfigured(dependency string) error {
	return &apperr.UpstreamError{Dependency: dependency, Err: errors.New("binding not configured")}
}

// Bindings reports which dependencies are configured.
func (s *Service) Bindings() models.Bindings {
	return models.Bindings{
		DB:      s.store != nil,
		Vectors: s.index != nil,
		AI:      s.embedder != nil,
	}
}

// Create validates input, embeds the content, upserts the vector and inserts the row.
// Validation failures have no side effects. If the row insert fails, the vector entry
// is removed again on a best-effort basis.
func (s *Service) Create(ctx context.Context, input models.DocumentInput) (*models.CreatedDocument, error) {
	in, err := input.Validate()
	if err != nil {
		return nil, err
	}
	if err := s.require(true, true, true); err != nil {
		return nil, err
	}

	id := s.newID()
	values, err := s.embed(ctx, in.Content)
	if err != nil {
		return nil, err
	}
	if len(values) < s.minDimensions {
		return nil, apperr.Upstream(DependencyInference,
			fmt.Errorf("embedding has %d dimensions, need at least %d", len(values), s.minDimensions))
	}

	entry := vector.Entry{ID: id, Values: values, Metadata: map[string]string{"title": in.Title}}
	if err := s.index.Upsert(ctx, []vector.Entry{entry}); err != nil {
		return nil, apperr.Upstream(DependencyVectors, err)
	}

	doc := &models.Document{ID: id, Title: in.Title, Content: in.Content, VectorID: id}
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		if derr := s.index.Delete(context.WithoutCancel(ctx), []string{id}); derr != nil {
			s.logger.Warn("failed to remove orphaned vector", zap.String("id", id), zap.Error(derr))
		}
		return nil, apperr.Upstream(DependencyStorage, err)
	}

	s.logger.Debug("document created", zap.String("id", id), zap.Int("dimensions", len(values)))
	return &models.CreatedDocument{ID: id, Title: in.Title, Content: in.Content}, nil
}

// List returns the most recent documents, newest first.
func (s *Service) List(ctx context.Context) (*models.DocumentList, error) {
	if err := s.require(true, false, false); err != nil {
		return nil, err
	}
	docs, err := s.store.ListDocuments(ctx, ListLimit)
	if err != nil {
		return nil, apperr.Upstream(DependencyStorage, err)
	}
	return &models.DocumentList{Documents: docs}, nil
}

// Get returns the document with id, or a NotFoundError.
func (s *Service) Get(ctx context.Context, id string) (*models.Document, error) {
	if err := s.require(true, false, false); err != nil {
		return nil, err
	}
	doc, err := s.store.GetDocument(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &apperr.NotFoundError{Resource: "document"}
	}
	if err != nil {
		return nil, apperr.Upstream(DependencyStorage, err)
	}
	return doc, nil
}

// Search embeds the query text and returns its nearest documents.
func (s *Service) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	if err := s.require(false, true, true); err != nil {
		return nil, err
	}
	values, err := s.embed(ctx, query.Query)
	if err != nil {
		return nil, err
	}
	matches, err := s.index.Query(ctx, values, vector.QueryOptions{
		TopK:           query.Limit,
		ReturnValues:   false,
		ReturnMetadata: true,
	})
	if err != nil {
		return nil, apperr.Upstream(DependencyVectors, err)
	}

	results := make([]models.SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, models.SearchResult{
			ID:         m.ID,
			Title:      m.Metadata["title"],
			Similarity: m.Score,
		})
	}
	return &models.SearchResponse{Query: query.Query, Results: results}, nil
}

func (s *Service) embed(ctx context.Context, text string) ([]float32, error) {
	values, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, apperr.Upstream(DependencyInference, err)
	}
	return values, nil
}

func (s *Service) require(db, vectors, ai bool) error {
	switch {
	case db && s.store == nil:
		return notConfigured(DependencyStorage)
	case vectors && s.index == nil:
		return notConfigured(DependencyVectors)
	case ai && s.embedder == nil:
		return notConfigured(DependencyInference)
	}
	return nil
}
