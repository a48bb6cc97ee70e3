// Package storage defines the persistence interface for documents.
package storage

import (
	"context"
	"errors"

	"github.com/glassroot/glassroot/internal/models"
)

// ErrNotFound is returned when a document row does not exist.
var ErrNotFound = errors.New("document not found")

// Storage defines document persistence operations.
type Storage interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	// ListDocuments returns up to limit summaries, newest first.
	ListDocuments(ctx context.Context, limit int) ([]models.DocumentSummary, error)
	CountDocuments(ctx context.Context) (int64, error)

	Close() error
}
