// Package models defines the wire and storage shapes for documents, search and health.
package models

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/glassroot/glassroot/internal/apperr"
)

// Length bounds for DocumentInput, in UTF-16 code units after trimming.
const (
	MaxTitleLength   = 256
	MaxContentLength = 32000
)

// Document is a stored document row. VectorID always equals ID.
type Document struct {
	ID       string `json:"id" db:"id"`
	Title    string `json:"title" db:"title"`
	Content  string `json:"content" db:"content"`
	VectorID string `json:"vector_id" db:"vector_id"`
	Created  int64  `json:"created" db:"created"` // Unix milliseconds
}

// DocumentSummary is the list projection of a Document.
type DocumentSummary struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Created int64  `json:"created"`
}

// DocumentInput is the body of POST /api/documents.
type DocumentInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate trims title and content and checks their length bounds.
// The returned input holds the trimmed values.
func (in DocumentInput) Validate() (DocumentInput, error) {
	out := DocumentInput{
		Title:   strings.TrimSpace(in.Title),
		Content: strings.TrimSpace(in.Content),
	}
	if err := checkLength("title", out.Title, MaxTitleLength); err != nil {
		return DocumentInput{}, err
	}
	if err := checkLength("content", out.Content, MaxContentLength); err != nil {
		return DocumentInput{}, err
	}
	return out, nil
}

func checkLength(field, value string, max int) error {
	n := utf16Len(value)
	if n == 0 {
		return apperr.Validation(field, "must not be empty")
	}
	if n > max {
		return apperr.Validation(field, fmt.Sprintf("must be at most %d characters, got %d", max, n))
	}
	return nil
}

// CreatedDocument is the response of POST /api/documents.
type CreatedDocument struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// DocumentList is the response of GET /api/documents.
type DocumentList struct {
	Documents []DocumentSummary `json:"documents"`
}

// utf16Len counts s the way browser clients measure string length: runes outside the
// basic multilingual plane count twice.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += len(utf16.AppendRune(nil, r))
	}
	return n
}
