package vector

import (
	"context"
	"fmt"
	"sync"
)

// FileIndex is a MemoryIndex that rewrites its backing file after every successful
// Upsert or Delete, so committed document rows never outlive their vectors.
type FileIndex struct {
	*MemoryIndex
	path string
	mu   sync.Mutex // serializes mutation + save so snapshots land in order
}

// NewFileIndex loads path into a new MemoryIndex and keeps it in sync with the file.
func NewFileIndex(path string) (*FileIndex, error) {
	idx := NewMemoryIndex()
	if err := idx.Load(path); err != nil {
		return nil, err
	}
	return &FileIndex{MemoryIndex: idx, path: path}, nil
}

// Path returns the backing file.
func (f *FileIndex) Path() string {
	return f.path
}

func (f *FileIndex) Upsert(ctx context.Context, entries []Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.MemoryIndex.Upsert(ctx, entries); err != nil {
		return err
	}
	return f.persist()
}

func (f *FileIndex) Delete(ctx context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.MemoryIndex.Delete(ctx, ids); err != nil {
		return err
	}
	return f.persist()
}

func (f *FileIndex) persist() error {
	if err := f.MemoryIndex.Save(f.path); err != nil {
		return fmt.Errorf("persist vector index: %w", err)
	}
	return nil
}
