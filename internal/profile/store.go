package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"nutrigenie/internal/storage"
)

// Store loads and saves Preferences under the fixed preferences key.
type Store struct {
	kv storage.Store
}

func NewStore(kv storage.Store) *Store {
	return &Store{kv: kv}
}

// LoadPreferences never fails: an absent blob yields defaults, and a blob
// that cannot be read or parsed is logged and replaced by defaults. Fields
// missing from a stored blob keep their default values.
func (s *Store) LoadPreferences(ctx context.Context, namespace string) Preferences {
	data, err := s.kv.Get(ctx, namespace, storage.PreferencesKey)
	if errors.Is(err, storage.ErrNotFound) {
		return DefaultPreferences()
	}
	if err != nil {
		log.Printf("Warning: could not read preferences for %s, using defaults: %v", namespace, err)
		return DefaultPreferences()
	}

	prefs := DefaultPreferences()
	if err := json.Unmarshal(data, &prefs); err != nil {
		log.Printf("Warning: corrupt preferences for %s, using defaults: %v", namespace, err)
		return DefaultPreferences()
	}

	prefs = prefs.Normalize()
	if !IsDiet(prefs.DietType) {
		log.Printf("Warning: unknown diet %q stored for %s, using default", prefs.DietType, namespace)
		prefs.DietType = DefaultPreferences().DietType
	}
	return prefs
}

// SavePreferences normalizes and validates p, persists it and returns the
// value actually stored.
func (s *Store) SavePreferences(ctx context.Context, namespace string, p Preferences) (Preferences, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return Preferences{}, err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to marshal preferences: %w", err)
	}
	if err := s.kv.Put(ctx, namespace, storage.PreferencesKey, data); err != nil {
		return Preferences{}, fmt.Errorf("failed to save preferences: %w", err)
	}
	return p, nil
}
