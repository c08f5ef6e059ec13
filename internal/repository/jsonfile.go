package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const (
	AccountsFile     = "accounts.json"
	TransactionsFile = "transactions.json"
)

// jsonFile is a whole-collection JSON array on disk. Reads and writes are
// serialized per file so a reader never sees a half-written collection.
type jsonFile[T any] struct {
	path string
	mu   sync.Mutex
}

func newJSONFile[T any](dir, name string) *jsonFile[T] {
	return &jsonFile[T]{path: filepath.Join(dir, name)}
}

func (f *jsonFile[T]) load(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := f.writeLocked([]T{}); err != nil {
			return nil, fmt.Errorf("init %s: %w", filepath.Base(f.path), err)
		}
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(f.path), err)
	}

	items := []T{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(f.path), err)
	}
	return items, nil
}

func (f *jsonFile[T]) store(ctx context.Context, items []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeLocked(items)
}

func (f *jsonFile[T]) append(ctx context.Context, item T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	items := []T{}
	data, err := os.ReadFile(f.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read %s: %w", filepath.Base(f.path), err)
	default:
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decode %s: %w", filepath.Base(f.path), err)
		}
	}

	return f.writeLocked(append(items, item))
}

// writeLocked replaces the file via a temp file and rename, so a failed
// write leaves the previous collection in place.
func (f *jsonFile[T]) writeLocked(items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(f.path), err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(f.path), err)
	}
	return nil
}
