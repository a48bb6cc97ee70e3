package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/glassroot/glassroot/internal/apperr"
)

func TestDocumentInput_Validate(t *testing.T) {
	tests := []struct {
		name      string
		input     DocumentInput
		wantErr   bool
		wantField string
	}{
		{"valid", DocumentInput{Title: "T", Content: "C"}, false, ""},
		{"empty title", DocumentInput{Title: "", Content: "C"}, true, "title"},
		{"blank title", DocumentInput{Title: " \t\n", Content: "C"}, true, "title"},
		{"empty content", DocumentInput{Title: "T", Content: ""}, true, "content"},
		{"title at bound", DocumentInput{Title: strings.Repeat("t", 256), Content: "C"}, false, ""},
		{"title too long", DocumentInput{Title: strings.Repeat("t", 257), Content: "C"}, true, "title"},
		{"content at bound", DocumentInput{Title: "T", Content: strings.Repeat("c", 32000)}, false, ""},
		{"content too long", DocumentInput{Title: "T", Content: strings.Repeat("c", 32001)}, true, "content"},
		{"multibyte counted as characters", DocumentInput{Title: strings.Repeat("é", 256), Content: "C"}, false, ""},
		{"emoji count as two units", DocumentInput{Title: strings.Repeat("🌍", 128), Content: "C"}, false, ""},
		{"emoji over title bound", DocumentInput{Title: strings.Repeat("🌍", 129), Content: "C"}, true, "title"},
		{"emoji over content bound", DocumentInput{Title: "T", Content: strings.Repeat("😀", 16001)}, true, "content"},
		{"padding trimmed before bound", DocumentInput{Title: "  " + strings.Repeat("t", 256) + "  ", Content: "C"}, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.input.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var ve *apperr.ValidationError
				if !errors.As(err, &ve) || ve.Field != tt.wantField {
					t.Errorf("expected ValidationError on %q, got %v", tt.wantField, err)
				}
			}
		})
	}
}

func TestDocumentInput_ValidateTrims(t *testing.T) {
	got, err := DocumentInput{Title: "  Title ", Content: "\nBody\n"}.Validate()
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Title" || got.Content != "Body" {
		t.Errorf("got %+v", got)
	}
}
