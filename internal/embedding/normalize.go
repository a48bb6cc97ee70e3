package embedding

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrUnexpectedShape is returned when an inference response holds no usable vector.
var ErrUnexpectedShape = errors.New("embedding returned unexpected shape")

// shapeKeys are checked in order; the first key present selects the candidate.
var shapeKeys = []string{"data", "embedding", "embeddings"}

// Normalize extracts a vector from the varying response shapes of inference endpoints:
// a bare array, or an object whose data, embedding or embeddings field holds it.
// A candidate that is a single-element batch, either [[...]] or [{"embedding": [...]}],
// is unwrapped once.
func Normalize(raw []byte) ([]float32, error) {
	return normalize(raw, true)
}

func normalize(raw []byte, unwrap bool) ([]float32, error) {
	candidate := json.RawMessage(raw)
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		for _, key := range shapeKeys {
			if v, ok := obj[key]; ok {
				candidate = v
				break
			}
		}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(candidate, &items); err != nil || len(items) == 0 {
		return nil, ErrUnexpectedShape
	}
	if values, ok := numbers(items); ok {
		return values, nil
	}
	if unwrap && len(items) == 1 {
		return normalize(items[0], false)
	}
	return nil, ErrUnexpectedShape
}

func numbers(items []json.RawMessage) ([]float32, bool) {
	values := make([]float32, len(items))
	for i, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || (item[0] != '-' && (item[0] < '0' || item[0] > '9')) {
			return nil, false
		}
		var f float64
		if err := json.Unmarshal(item, &f); err != nil {
			return nil, false
		}
		values[i] = float32(f)
	}
	return values, true
}
