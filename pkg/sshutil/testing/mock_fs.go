// Package testing provides SSH mock utilities for testing.
// This package simulates a secondary entry node with an in-memory filesystem.
package testing

import (
	"errors"
	"path/filepath"
	"sync"
)

// MockFS simulates an in-memory remote filesystem holding uploaded and
// copied files.
type MockFS struct {
	mu    sync.RWMutex
	files map[string][]byte // path -> content
}

// NewMockFS creates a new empty mock filesystem.
func NewMockFS() *MockFS {
	return &MockFS{
		files: make(map[string][]byte),
	}
}

// WriteFile writes content to a file, replacing any previous content.
func (fs *MockFS) WriteFile(path string, content []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.files[filepath.Clean(path)] = append([]byte(nil), content...)
	return nil
}

// ReadFile reads the content of a file. Returns error if file doesn't exist.
func (fs *MockFS) ReadFile(path string) ([]byte, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	content, exists := fs.files[filepath.Clean(path)]
	if !exists {
		return nil, errors.New("file not found")
	}
	return content, nil
}

// Copy duplicates src to dst, mimicking `cp src dst`.
func (fs *MockFS) Copy(src, dst string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	content, exists := fs.files[filepath.Clean(src)]
	if !exists {
		return errors.New("file not found")
	}
	fs.files[filepath.Clean(dst)] = append([]byte(nil), content...)
	return nil
}

// IsFile returns true if the path exists and is a file.
func (fs *MockFS) IsFile(path string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	_, exists := fs.files[filepath.Clean(path)]
	return exists
}
