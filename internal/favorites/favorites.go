package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"nutrigenie/internal/planner"
	"nutrigenie/internal/storage"
)

// Store keeps a user's saved meals under the fixed favorites key. Meals
// are identified by title: two meals with the same title are one favorite.
type Store struct {
	kv storage.Store
}

func NewStore(kv storage.Store) *Store {
	return &Store{kv: kv}
}

// Load returns the saved meals in the order they were added. It never
// fails: a missing or corrupt blob yields an empty set.
func (s *Store) Load(ctx context.Context, namespace string) []planner.Meal {
	data, err := s.kv.Get(ctx, namespace, storage.FavoritesKey)
	if errors.Is(err, storage.ErrNotFound) {
		return []planner.Meal{}
	}
	if err != nil {
		log.Printf("Warning: could not read favorites for %s: %v", namespace, err)
		return []planner.Meal{}
	}

	var meals []planner.Meal
	if err := json.Unmarshal(data, &meals); err != nil {
		log.Printf("Warning: corrupt favorites for %s, starting empty: %v", namespace, err)
		return []planner.Meal{}
	}
	if meals == nil {
		return []planner.Meal{}
	}
	return meals
}

// Contains reports whether a meal with title is saved.
func (s *Store) Contains(ctx context.Context, namespace, title string) bool {
	return indexOf(s.Load(ctx, namespace), title) >= 0
}

// Toggle removes meal when a meal with the same title is saved and adds it
// otherwise. It persists the new set and reports whether meal is now saved.
func (s *Store) Toggle(ctx context.Context, namespace string, meal planner.Meal) (bool, error) {
	if meal.Title == "" {
		return false, fmt.Errorf("cannot save a meal without a title")
	}

	meals := s.Load(ctx, namespace)
	saved := false
	if i := indexOf(meals, meal.Title); i >= 0 {
		meals = append(meals[:i], meals[i+1:]...)
	} else {
		meals = append(meals, meal)
		saved = true
	}

	data, err := json.Marshal(meals)
	if err != nil {
		return false, fmt.Errorf("failed to marshal favorites: %w", err)
	}
	if err := s.kv.Put(ctx, namespace, storage.FavoritesKey, data); err != nil {
		return false, fmt.Errorf("failed to save favorites: %w", err)
	}
	return saved, nil
}

// Titles returns the set of saved titles for quick membership checks.
func Titles(meals []planner.Meal) map[string]bool {
	titles := make(map[string]bool, len(meals))
	for _, m := range meals {
		titles[m.Title] = true
	}
	return titles
}

func indexOf(meals []planner.Meal, title string) int {
	for i, m := range meals {
		if m.Title == title {
			return i
		}
	}
	return -1
}
