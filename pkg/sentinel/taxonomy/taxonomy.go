// Package taxonomy holds the set of accepted topic names.
//
// Topics are keyed by their normalized form but displayed with the
// casing they were first added under. The set only grows during a run;
// the sole removal path is the promotion transaction rolling back a
// partially applied addition.
package taxonomy

import (
	"fmt"
	"sort"

	"github.com/cognicore/sentinel/pkg/sentinel/internalerr"
	"github.com/cognicore/sentinel/pkg/sentinel/normalize"
)

// Store is the ground truth topic set.
type Store struct {
	byKey map[string]string // normalized key -> display name
	order []string          // keys in insertion order
}

// New creates a Store seeded with the given topics. Later duplicates
// (after normalization) are ignored, first casing wins.
func New(topics ...string) *Store {
	s := &Store{byKey: make(map[string]string)}
	for _, t := range topics {
		// Duplicate or blank seeds are benign.
		_ = s.Add(t)
	}
	return s
}

// Add inserts a topic. The display name keeps the given casing (cleaned).
// Returns internalerr.ErrDuplicateTopic if an equivalent name is present.
func (s *Store) Add(name string) error {
	key := normalize.Key(name)
	if key == "" {
		return fmt.Errorf("taxonomy: %w", internalerr.ErrEmptySuggestion)
	}
	if _, ok := s.byKey[key]; ok {
		return fmt.Errorf("taxonomy: %q: %w", name, internalerr.ErrDuplicateTopic)
	}
	s.byKey[key] = normalize.Clean(name)
	s.order = append(s.order, key)
	return nil
}

// Contains reports whether an equivalent topic is present.
func (s *Store) Contains(name string) bool {
	_, ok := s.byKey[normalize.Key(name)]
	return ok
}

// Resolve returns the display name for a topic equivalent to name.
func (s *Store) Resolve(name string) (string, bool) {
	display, ok := s.byKey[normalize.Key(name)]
	return display, ok
}

// Remove deletes a topic. Only the promotion transaction uses this, to
// undo an Add when a later step fails.
func (s *Store) Remove(name string) {
	key := normalize.Key(name)
	if _, ok := s.byKey[key]; !ok {
		return
	}
	delete(s.byKey, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// All returns display names in insertion order.
func (s *Store) All() []string {
	out := make([]string, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.byKey[key])
	}
	return out
}

// Sorted returns display names in lexical order.
func (s *Store) Sorted() []string {
	out := s.All()
	sort.Strings(out)
	return out
}

// Len returns the number of topics.
func (s *Store) Len() int { return len(s.byKey) }
