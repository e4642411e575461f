// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jeranaias/shopchat/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("storage: store is closed")

	// ErrCorrupt is returned when the backing file cannot be decoded.
	ErrCorrupt = errors.New("storage: corrupt store file")

	// ErrUnknownBackend is returned by Open for an unrecognized backend name.
	ErrUnknownBackend = errors.New("storage: unknown backend")
)

// =============================================================================
// KEY/VALUE INTERFACE
// =============================================================================

// KV is a string key/value store.
type KV interface {
	// Get returns the value for key. ok is false when the key does not exist.
	Get(key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Close releases the store.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open creates the backend named by backend. An empty path selects the default
// location under ~/.shopchat.
func Open(backend, path string) (KV, error) {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend == "" {
		backend = BackendFile
	}

	if path == "" && backend != BackendMemory {
		p, err := DefaultPath(backend)
		if err != nil {
			return nil, err
		}
		path = p
	}

	switch backend {
	case BackendFile:
		return NewFileKV(path)
	case BackendSQLite:
		return NewSQLiteKV(path)
	case BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// DefaultPath returns the default store location for a backend.
func DefaultPath(backend string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("storage: resolve home directory: %w", err)
	}
	name := "store.json"
	if backend == BackendSQLite {
		name = "store.db"
	}
	return filepath.Join(home, ".shopchat", name), nil
}

// =============================================================================
// FILE BACKEND
// =============================================================================

// FileKV keeps every key in one JSON object file.
type FileKV struct {
	mu     sync.Mutex
	path   string
	closed bool
}

// NewFileKV creates a file store at path. The file itself is created lazily on
// the first write.
func NewFileKV(path string) (*FileKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("storage: create directory: %w", err)
	}
	return &FileKV{path: path}, nil
}

// Path returns the backing file path.
func (f *FileKV) Path() string {
	return f.path
}

// Get implements KV.
func (f *FileKV) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return "", false, ErrClosed
	}

	data, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

// Set implements KV. A corrupt file is replaced rather than preserved.
func (f *FileKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}

	data, err := f.load()
	if err != nil {
		if !errors.Is(err, ErrCorrupt) {
			return err
		}
		data = make(map[string]string)
	}
	data[key] = value
	return f.save(data)
}

// Delete implements KV.
func (f *FileKV) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}

	data, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return f.save(data)
}

// Close implements KV.
func (f *FileKV) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *FileKV) load() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("storage: read %s: %w", f.path, err)
	}

	data := make(map[string]string)
	if len(strings.TrimSpace(string(raw))) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return data, nil
}

func (f *FileKV) save(data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode: %w", err)
	}
	// RELIABILITY: Atomic write with fsync prevents a torn store on crash
	if err := util.AtomicWriteFile(f.path, raw, 0600); err != nil {
		return fmt.Errorf("storage: write %s: %w", f.path, err)
	}
	return nil
}

// =============================================================================
// MEMORY BACKEND
// =============================================================================

// MemoryKV is a process-local store.
type MemoryKV struct {
	mu     sync.RWMutex
	data   map[string]string
	closed bool
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

// Get implements KV.
func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements KV.
func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.data[key] = value
	return nil
}

// Delete implements KV.
func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.data, key)
	return nil
}

// Close implements KV.
func (m *MemoryKV) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
