// Package storage provides the local key-value store the portfolio is persisted in.
package storage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when nothing is stored under a key.
var ErrNotFound = errors.New("key not found")

// Store is a small key-value store
type Store interface {
	// Get retrieves the value stored under key
	Get(key string) ([]byte, error)

	// Set stores value under key, replacing any previous value
	Set(key string, value []byte) error
}

const (
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Open returns a store for the provided backend spec.
// Examples:
//   - "file:.folio"
//   - "memory"
//
// A spec without a backend prefix is treated as a directory for the file backend.
func Open(spec string) (Store, error) {
	backend, arg := parseSpec(spec)

	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		if arg == "" {
			arg = ".folio"
		}
		return NewFileStore(arg)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", backend)
	}
}

func parseSpec(spec string) (backend, arg string) {
	if spec == "" {
		return BackendFile, ""
	}

	if !strings.Contains(spec, ":") {
		backend = strings.ToLower(spec)
		switch backend {
		case BackendMemory, BackendFile:
			return backend, ""
		default:
			return BackendFile, spec
		}
	}

	parts := strings.SplitN(spec, ":", 2)
	return strings.ToLower(parts[0]), parts[1]
}
