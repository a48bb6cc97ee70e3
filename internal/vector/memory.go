package vector

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// MemoryIndex is an in-process vector index using brute-force cosine similarity.
// Its dimension is fixed by the first vector stored.
type MemoryIndex struct {
	mu         sync.RWMutex
	dimensions int
	entries    []Entry
	pos        map[string]int
}

// NewMemoryIndex creates an empty in-memory vector index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{pos: make(map[string]int)}
}

// Dimensions returns the vector dimension, or 0 before the first upsert.
func (m *MemoryIndex) Dimensions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dimensions
}

// Upsert stores entries, replacing any with the same ID. The batch is rejected as a whole
// if any vector is empty or of the wrong dimension.
func (m *MemoryIndex) Upsert(ctx context.Context, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dim := m.dimensions
	for _, e := range entries {
		if e.ID == "" {
			return errors.New("vector id must not be empty")
		}
		if len(e.Values) == 0 {
			return fmt.Errorf("vector %s is empty", e.ID)
		}
		if dim == 0 {
			dim = len(e.Values)
		}
		if len(e.Values) != dim {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(e.Values), dim)
		}
	}
	m.dimensions = dim

	for _, e := range entries {
		stored := Entry{ID: e.ID, Values: copyValues(e.Values), Metadata: copyMetadata(e.Metadata)}
		if i, ok := m.pos[e.ID]; ok {
			m.entries[i] = stored
			continue
		}
		m.pos[e.ID] = len(m.entries)
		m.entries = append(m.entries, stored)
	}
	return nil
}

// Query returns the top matches by cosine similarity. Ties keep insertion order.
func (m *MemoryIndex) Query(ctx context.Context, values []float32, opts QueryOptions) ([]Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]Match, 0)
	if opts.TopK <= 0 || len(m.entries) == 0 {
		return matches, nil
	}
	if len(values) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(values), m.dimensions)
	}

	for _, e := range m.entries {
		match := Match{ID: e.ID, Score: CosineSimilarity(values, e.Values)}
		if opts.ReturnValues {
			match.Values = copyValues(e.Values)
		}
		if opts.ReturnMetadata {
			match.Metadata = copyMetadata(e.Metadata)
		}
		matches = append(matches, match)
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > opts.TopK {
		matches = matches[:opts.TopK]
	}
	return matches, nil
}

// Delete removes entries by ID. Unknown IDs are ignored.
func (m *MemoryIndex) Delete(ctx context.Context, ids []string) error {
	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		if !remove[e.ID] {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	m.reindex()
	return nil
}

func (m *MemoryIndex) reindex() {
	m.pos = make(map[string]int, len(m.entries))
	for i, e := range m.entries {
		m.pos[e.ID] = i
	}
}

// Count returns the number of stored vectors.
func (m *MemoryIndex) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.entries)), nil
}

// Close is a no-op for MemoryIndex.
func (m *MemoryIndex) Close() error {
	return nil
}

// Save persists the index to path, replacing the file atomically. Format, little endian:
// dimension (4), n (4), then per entry: idLen (4), id, vector (dimension*4),
// metadata count (4), then per pair: keyLen (4), key, valueLen (4), value.
func (m *MemoryIndex) Save(path string) error {
	if path == "" {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := m.encode(w); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("flush index file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close index file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace index file: %w", err)
	}
	return nil
}

func (m *MemoryIndex) encode(w io.Writer) error {
	if err := writeUint32(w, m.dimensions); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := writeUint32(w, len(m.entries)); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for _, e := range m.entries {
		if err := writeString(w, e.ID); err != nil {
			return fmt.Errorf("write id: %w", err)
		}
		if _, err := w.Write(float32SliceToBytes(e.Values)); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
		keys := make([]string, 0, len(e.Metadata))
		for k := range e.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if err := writeUint32(w, len(keys)); err != nil {
			return fmt.Errorf("write metadata count: %w", err)
		}
		for _, k := range keys {
			if err := writeString(w, k); err != nil {
				return fmt.Errorf("write metadata key: %w", err)
			}
			if err := writeString(w, e.Metadata[k]); err != nil {
				return fmt.Errorf("write metadata value: %w", err)
			}
		}
	}
	return nil
}

// Load reads the index from path and replaces the in-memory contents.
// If the file does not exist, no error is returned and the index is unchanged.
func (m *MemoryIndex) Load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	dim, err := readUint32(r)
	if err != nil {
		return fmt.Errorf("read dimensions: %w", err)
	}
	n, err := readUint32(r)
	if err != nil {
		return fmt.Errorf("read count: %w", err)
	}

	entries := make([]Entry, 0, n)
	buf := make([]byte, int(dim)*4)
	for i := uint32(0); i < n; i++ {
		id, err := readString(r)
		if err != nil {
			return fmt.Errorf("read id: %w", err)
		}
		if _, err := io.ReadFull(r, buf); err != nil {
			return fmt.Errorf("read vector: %w", err)
		}
		metaCount, err := readUint32(r)
		if err != nil {
			return fmt.Errorf("read metadata count: %w", err)
		}
		var meta map[string]string
		if metaCount > 0 {
			meta = make(map[string]string, metaCount)
		}
		for j := uint32(0); j < metaCount; j++ {
			k, err := readString(r)
			if err != nil {
				return fmt.Errorf("read metadata key: %w", err)
			}
			v, err := readString(r)
			if err != nil {
				return fmt.Errorf("read metadata value: %w", err)
			}
			meta[k] = v
		}
		entries = append(entries, Entry{ID: id, Values: bytesToFloat32Slice(buf), Metadata: meta})
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.dimensions = int(dim)
	m.entries = entries
	m.reindex()
	return nil
}

func writeUint32(w io.Writer, v int) error {
	return binary.Write(w, binary.LittleEndian, uint32(v))
}

func readUint32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func writeString(w io.Writer, s string) error {
	if err := writeUint32(w, len(s)); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}

func copyValues(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}

func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
