package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/autosource/supplier-scout/internal/models"
)

// JSONStore serializes supplier records to one indented UTF-8 JSON artifact.
// Each persist fully overwrites the previous artifact; there is no append or
// merge. Concurrent runs targeting the same path must be serialized by the
// caller (see RunLock).
type JSONStore struct {
	path string
	mu   sync.Mutex
}

func NewJSONStore(path string) (*JSONStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &JSONStore{path: path}, nil
}

func (s *JSONStore) Persist(records []models.Supplier) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if records == nil {
		records = []models.Supplier{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return "", fmt.Errorf("failed to marshal records: %w", err)
	}

	// Write to a temp file first, then rename, so a crash mid-write never
	// leaves a truncated artifact.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return "", fmt.Errorf("failed to replace artifact: %w", err)
	}

	return s.path, nil
}

func (s *JSONStore) Path() string {
	return s.path
}
