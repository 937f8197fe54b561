// Package metadata persists mapping configuration documents and the
// synchronization watermarks of incremental reconciliation runs. Documents
// are addressed by name; the engines never care where they live.
package metadata

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store is a named document repository.
type Store interface {
	// Fetch opens the named document for reading.
	Fetch(ctx context.Context, name string) (io.ReadCloser, error)
	// Put stores the named document, replacing an existing one.
	Put(ctx context.Context, name string, content []byte) error
	// List returns the names of all stored documents, sorted.
	List(ctx context.Context) ([]string, error)
}

// DirStore keeps documents as files below one directory.
type DirStore struct {
	root string
}

func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

func (s *DirStore) path(name string) (string, error) {
	clean := filepath.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("metadata: illegal document name %q", name)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *DirStore) Fetch(_ context.Context, name string) (io.ReadCloser, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("metadata: fetch %s: %w", name, err)
	}
	return f, nil
}

func (s *DirStore) Put(_ context.Context, name string, content []byte) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("metadata: put %s: %w", name, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("metadata: put %s: %w", name, err)
	}
	return nil
}

func (s *DirStore) List(_ context.Context) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("metadata: list: %w", err)
	}
	sort.Strings(names)
	return names, nil
}
