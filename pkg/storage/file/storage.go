// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-sskr.
//
// go-sskr is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.


// Package file stores share sets as files beneath a root directory.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jeremyhahn/go-sskr/pkg/storage"
)

const (
	defaultDirPerms  = 0700
	defaultFilePerms = 0600
)

// FileStorage is a storage.Backend rooted at a directory. Keys map to
// relative file paths using forward slashes.
type FileStorage struct {
	mu      sync.RWMutex
	rootDir string
	closed  bool
}

var _ storage.Backend = (*FileStorage)(nil)

// New creates the root directory with 0700 permissions if needed.
func New(rootDir string) (*FileStorage, error) {
	if rootDir == "" {
		return nil, fmt.Errorf("file storage: root directory cannot be empty")
	}
	if err := os.MkdirAll(rootDir, defaultDirPerms); err != nil {
		return nil, fmt.Errorf("file storage: failed to create root directory: %w", err)
	}
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("file storage: %w", err)
	}
	return &FileStorage{rootDir: abs}, nil
}

// Root returns the absolute root directory.
func (f *FileStorage) Root() string {
	return f.rootDir
}

// Get retrieves the value for the given key.
func (f *FileStorage) Get(key string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return nil, storage.ErrClosed
	}
	path, err := f.keyToPath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("file storage: failed to read key %q: %w", key, err)
	}
	return data, nil
}

// Put writes value to a temporary file and renames it into place.
func (f *FileStorage) Put(key string, value []byte, opts *storage.Options) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return storage.ErrClosed
	}
	path, err := f.keyToPath(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, defaultDirPerms); err != nil {
		return fmt.Errorf("file storage: failed to create directory for key %q: %w", key, err)
	}

	perms := fs.FileMode(defaultFilePerms)
	if opts != nil && opts.Permissions != 0 {
		perms = opts.Permissions
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("file storage: failed to write key %q: %w", key, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file storage: failed to write key %q: %w", key, err)
	}
	if err := tmp.Chmod(perms); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file storage: failed to chmod key %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file storage: failed to write key %q: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("file storage: failed to write key %q: %w", key, err)
	}
	return nil
}

// Delete removes the file for key.
func (f *FileStorage) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return storage.ErrClosed
	}
	path, err := f.keyToPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("file storage: failed to delete key %q: %w", key, err)
	}
	return nil
}

// List returns all keys with the given prefix in sorted order.
// Temporary files left by an interrupted Put are skipped.
func (f *FileStorage) List(prefix string) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return nil, storage.ErrClosed
	}
	keys := make([]string, 0)
	err := filepath.WalkDir(f.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(f.rootDir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("file storage: failed to list keys: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Exists checks if a key exists.
func (f *FileStorage) Exists(key string) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return false, storage.ErrClosed
	}
	path, err := f.keyToPath(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("file storage: failed to check key %q: %w", key, err)
	}
	return true, nil
}

// Close marks the backend closed. Files remain on disk.
func (f *FileStorage) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *FileStorage) keyToPath(key string) (string, error) {
	if err := validateStorageKey(key); err != nil {
		return "", fmt.Errorf("%w: %q: %v", storage.ErrInvalidKey, key, err)
	}
	return filepath.Join(f.rootDir, filepath.FromSlash(key)), nil
}

// validateStorageKey allows nested paths but rejects anything that could
// resolve outside the root.
func validateStorageKey(key string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if strings.Contains(key, "\x00") {
		return errors.New("key contains null byte")
	}
	if strings.HasPrefix(key, "/") || filepath.IsAbs(key) {
		return errors.New("key cannot be an absolute path")
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return errors.New("key contains path traversal")
		}
	}
	return nil
}
