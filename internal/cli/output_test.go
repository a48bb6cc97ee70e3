package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glassroot/glassroot/internal/models"
)

func TestParseOutputFormat(t *testing.T) {
	for in, want := range map[string]OutputFormat{"": OutputText, "text": OutputText, "json": OutputJSON} {
		got, err := ParseOutputFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseOutputFormat("yaml")
	assert.Error(t, err)
}

func TestWriteSearchResults(t *testing.T) {
	resp := &models.SearchResponse{
		Query: "gophers",
		Results: []models.SearchResult{
			{ID: "a", Title: "Go", Similarity: 0.91234},
			{ID: "b", Similarity: 0.5},
		},
	}

	var text bytes.Buffer
	require.NoError(t, WriteSearchResults(&text, resp, OutputText))
	out := text.String()
	assert.Contains(t, out, `2 results for "gophers"`)
	assert.Contains(t, out, "1. Go (similarity 0.9123)")
	assert.Contains(t, out, "2. (untitled) (similarity 0.5000)")
	assert.Contains(t, out, "ID: b")

	var js bytes.Buffer
	require.NoError(t, WriteSearchResults(&js, resp, OutputJSON))
	var decoded models.SearchResponse
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, *resp, decoded)
}

func TestWriteDocuments(t *testing.T) {
	var empty bytes.Buffer
	require.NoError(t, WriteDocuments(&empty, nil, OutputText))
	assert.Equal(t, "No documents yet.\n", empty.String())

	var emptyJSON bytes.Buffer
	require.NoError(t, WriteDocuments(&emptyJSON, nil, OutputJSON))
	assert.JSONEq(t, `{"documents":[]}`, emptyJSON.String())

	var text bytes.Buffer
	docs := []models.DocumentSummary{{ID: "doc-1", Title: "Go", Created: 1700000000000}}
	require.NoError(t, WriteDocuments(&text, docs, OutputText))
	assert.Equal(t, "2023-11-14 22:13  doc-1  Go\n", text.String())
}

func TestWriteDocument(t *testing.T) {
	doc := &models.Document{ID: "doc-1", Title: "Go", Content: "line one\nline two " + strings.Repeat("x", 300), Created: 1}

	var preview bytes.Buffer
	require.NoError(t, WriteDocument(&preview, doc, OutputText, false))
	assert.Contains(t, preview.String(), "line one line two")
	assert.Contains(t, preview.String(), "...")
	assert.NotContains(t, preview.String(), strings.Repeat("x", 300))

	var full bytes.Buffer
	require.NoError(t, WriteDocument(&full, doc, OutputText, true))
	assert.Contains(t, full.String(), "line one\nline two "+strings.Repeat("x", 300))

	var js bytes.Buffer
	require.NoError(t, WriteDocument(&js, doc, OutputJSON, false))
	assert.Contains(t, js.String(), `"vector_id"`)
}

func TestStreamPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewStreamPrinter(&buf)
	p.Update("Hel")
	p.Update("Hello")
	p.Update("Hello")
	p.Update("Hello, wörld")
	p.Finish()
	assert.Equal(t, "Hello, wörld\n", buf.String())

	buf.Reset()
	p.Finish()
	assert.Empty(t, buf.String())
	p.Update("again")
	assert.Equal(t, "again", buf.String())
}
