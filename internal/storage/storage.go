package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cookie is a persisted session cookie together with the URL of the
// response that set it.
type Cookie struct {
	URL      string    `json:"url"`
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain,omitempty"`
	Path     string    `json:"path,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"httpOnly,omitempty"`
}

// Storage defines the interface for persisting session cookies.
type Storage interface {
	Load() ([]Cookie, error)
	Save(cookies []Cookie) error
	Close() error
}

// JSONStorage implements Storage using a JSON file.
type JSONStorage struct {
	path string
}

// NewJSONStorage creates a new JSONStorage with the given file path.
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Path returns the storage file path.
func (s *JSONStorage) Path() string {
	return s.path
}

// Load reads the cookies from the JSON file.
// Returns an empty list if the file doesn't exist.
func (s *JSONStorage) Load() ([]Cookie, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Cookie{}, nil
		}
		return nil, err
	}

	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if cookies == nil {
		cookies = []Cookie{}
	}
	return cookies, nil
}

// Save writes the cookies to the JSON file.
// Creates the directory if it doesn't exist. The file is private to the user.
func (s *JSONStorage) Save(cookies []Cookie) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	if cookies == nil {
		cookies = []Cookie{}
	}
	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0600)
}

// Close is a no-op for the JSON backend.
func (s *JSONStorage) Close() error {
	return nil
}

// Open opens the storage backend named by kind ("sqlite" or "json").
func Open(kind, path string) (Storage, error) {
	switch kind {
	case "", "sqlite":
		return NewSQLiteStorage(path)
	case "json":
		return NewJSONStorage(path), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", kind)
	}
}
