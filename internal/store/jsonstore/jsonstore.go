package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/idilsaglam/taskdeck/internal/store"
)

// JSON-backed storage. Single file, human-readable, portable.
// No locking; fine for a local single-user CLI.

const dataFileName = "taskdeck.json"

// Store keeps every key of the fixed key set in one JSON object on disk.
type Store struct {
	path string
}

// New returns a Store rooted at dir. The directory is created on first write.
func New(dir string) *Store {
	return &Store{path: filepath.Join(dir, dataFileName)}
}

// Path is the data file location.
func (s *Store) Path() string { return s.path }

func (s *Store) Get(_ context.Context, k store.Key) ([]byte, error) {
	if !store.ValidKey(k) {
		return nil, fmt.Errorf("%w: %s", store.ErrUnknownKey, k)
	}
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	v, ok := doc[string(k)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return v, nil
}

func (s *Store) Put(_ context.Context, k store.Key, v []byte) error {
	if !store.ValidKey(k) {
		return fmt.Errorf("%w: %s", store.ErrUnknownKey, k)
	}
	if !json.Valid(v) {
		return fmt.Errorf("put %s: value is not JSON", k)
	}
	doc, err := s.loadForWrite()
	if err != nil {
		return err
	}
	doc[string(k)] = json.RawMessage(v)
	return s.save(doc)
}

func (s *Store) Delete(_ context.Context, k store.Key) error {
	if !store.ValidKey(k) {
		return fmt.Errorf("%w: %s", store.ErrUnknownKey, k)
	}
	doc, err := s.loadForWrite()
	if err != nil {
		return err
	}
	if _, ok := doc[string(k)]; !ok {
		return store.ErrNotFound
	}
	delete(doc, string(k))
	return s.save(doc)
}

func (s *Store) load() (map[string]json.RawMessage, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w: %w", store.ErrCorrupt, err)
	}
	// a top-level null decodes into a nil map without error
	if doc == nil {
		return nil, fmt.Errorf("json unmarshal: %w: not an object", store.ErrCorrupt)
	}
	return doc, nil
}

// loadForWrite starts from an empty document when the file is unreadable JSON,
// so a corrupt file is replaced by the next write instead of blocking it.
func (s *Store) loadForWrite() (map[string]json.RawMessage, error) {
	doc, err := s.load()
	if errors.Is(err, store.ErrCorrupt) {
		return map[string]json.RawMessage{}, nil
	}
	return doc, err
}

// save writes a temp file next to the target and renames it into place.
func (s *Store) save(doc map[string]json.RawMessage) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	tmp, err := os.CreateTemp(dir, dataFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
