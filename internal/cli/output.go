// Package cli renders API results and errors for the glassroot command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/glassroot/glassroot/internal/models"
	"github.com/glassroot/glassroot/pkg/utils"
)

// OutputFormat selects how results are written.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --format flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

const (
	rule           = "─────────────────────────────────────────────────────────"
	previewLength  = 200
	createdDisplay = "2006-01-02 15:04"
)

// WriteSearchResults writes search results to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintf(w, "\n%d results for %q\n\n", len(response.Results), response.Query)
	for i, r := range response.Results {
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "%d. %s (similarity %.4f)\n", i+1, displayTitle(r.Title), r.Similarity)
		fmt.Fprintf(w, "   ID: %s\n", r.ID)
	}
	if len(response.Results) > 0 {
		fmt.Fprintln(w, rule)
	}
	return nil
}

// WriteDocuments writes a document listing to w.
func WriteDocuments(w io.Writer, docs []models.DocumentSummary, format OutputFormat) error {
	if format == OutputJSON {
		if docs == nil {
			docs = []models.DocumentSummary{}
		}
		return writeJSON(w, models.DocumentList{Documents: docs})
	}
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents yet.")
		return nil
	}
	for _, d := range docs {
		fmt.Fprintf(w, "%s  %s  %s\n", formatCreated(d.Created), d.ID, displayTitle(d.Title))
	}
	return nil
}

// WriteDocument writes a single document to w. Text output shows a preview of the content
// unless full is set.
func WriteDocument(w io.Writer, doc *models.Document, format OutputFormat, full bool) error {
	if format == OutputJSON {
		return writeJSON(w, doc)
	}
	fmt.Fprintf(w, "ID:      %s\n", doc.ID)
	fmt.Fprintf(w, "Title:   %s\n", displayTitle(doc.Title))
	fmt.Fprintf(w, "Created: %s\n", formatCreated(doc.Created))
	fmt.Fprintln(w, rule)
	content := doc.Content
	if !full {
		content = utils.Truncate(utils.OneLine(content), previewLength)
	}
	fmt.Fprintln(w, content)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func displayTitle(title string) string {
	if title == "" {
		return "(untitled)"
	}
	return title
}

func formatCreated(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return time.UnixMilli(ms).UTC().Format(createdDisplay)
}
