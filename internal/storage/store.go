package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Fixed keys under which the application persists its blobs.
const (
	PreferencesKey = "nutrigenie_prefs"
	FavoritesKey   = "nutrigenie_favorites"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// Store is a namespaced, durable key-value store holding opaque JSON blobs.
// A namespace is the equivalent of one browser's local storage.
// Writes are atomic per key; there are no cross-key transactions.
type Store interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Put(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
}

// validateName rejects names that cannot be used as a namespace or key.
// The file backend maps names to path segments, so separators are refused
// for every backend to keep them interchangeable.
func validateName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("storage: empty %s", kind)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("storage: invalid %s %q", kind, name)
	}
	return nil
}

// ValidateNamespace reports whether name can be used as a namespace by every
// backend.
func ValidateNamespace(name string) error {
	return validateName("namespace", name)
}

func validate(namespace, key string) error {
	if err := validateName("namespace", namespace); err != nil {
		return err
	}
	return validateName("key", key)
}
