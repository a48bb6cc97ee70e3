// Package extract turns local document files into the plain text sent to the edge API.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrNoText is returned when a file yields no text after extraction.
var ErrNoText = errors.New("no text found")

// Document is the text content of a file with a title derived from its name.
type Document struct {
	Title   string
	Content string
}

type textFunc func(content []byte) (string, error)

var byExtension = map[string]textFunc{
	".pdf":  pdfText,
	".docx": wordText,
	".pptx": slideText,
	".xlsx": sheetText,
}

// File reads path and extracts its text. The title is the file name without extension.
func File(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	text, err := Bytes(content, ext)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", filepath.Base(path), err)
	}
	return &Document{
		Title:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Content: text,
	}, nil
}

// Bytes extracts text from content by extension (with leading dot). Unknown extensions
// are read as UTF-8 text with invalid sequences replaced.
func Bytes(content []byte, ext string) (string, error) {
	fn, ok := byExtension[strings.ToLower(ext)]
	if !ok {
		fn = plainText
	}
	text, err := fn(content)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func plainText(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return strings.ToValidUTF8(string(content), "�"), nil
	}
	return string(content), nil
}
