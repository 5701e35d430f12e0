/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package words

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Seednode/wordimposter/internal/storage"
)

// CustomCategoriesKey is the storage key holding custom categories.
const CustomCategoriesKey = "wordImposterCustomCategories"

// Store merges the built-in catalog with custom categories persisted in a
// key-value store. Custom categories are cached in memory, so a failing
// backend only costs persistence, never the running session.
type Store struct {
	kv            storage.KV
	logf          storage.Logf
	now           func() time.Time
	maxNameLength int

	mu     sync.RWMutex
	custom map[string]Category
}

// Option configures a Store.
type Option func(*Store)

// WithLogger routes persistence failures to logf.
func WithLogger(logf storage.Logf) Option {
	return func(s *Store) {
		s.logf = logf
	}
}

// WithClock overrides the clock used to generate category keys.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithMaxNameLength bounds custom category names. Values below 1 disable
// the bound.
func WithMaxNameLength(n int) Option {
	return func(s *Store) {
		s.maxNameLength = n
	}
}

// NewStore loads custom categories from kv. A nil kv keeps custom
// categories in memory only.
func NewStore(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:            kv,
		now:           time.Now,
		maxNameLength: MaxNameLength,
		custom:        make(map[string]Category),
	}

	for _, opt := range opts {
		opt(s)
	}

	var saved map[string]Category
	if storage.LoadJSON(kv, CustomCategoriesKey, &saved, s.logf) {
		for key, c := range saved {
			c.IsCustom = true
			s.custom[key] = c
		}
	}

	return s
}

// All returns every category by key. Custom categories replace built-ins
// that share their key.
func (s *Store) All() map[string]Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make(map[string]Category, len(builtins)+len(s.custom))
	for _, e := range builtins {
		all[e.Key] = Category{Name: e.Name, Sets: e.Sets}.clone()
	}
	for key, c := range s.custom {
		all[key] = c.clone()
	}

	return all
}

// Keys returns the merged category keys: built-ins in catalog order, then
// custom keys sorted.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := BuiltinKeys()
	extra := make([]string, 0, len(s.custom))
	for key := range s.custom {
		if !slices.Contains(keys, key) {
			extra = append(extra, key)
		}
	}
	slices.Sort(extra)

	return append(keys, extra...)
}

// Get returns the category at key.
func (s *Store) Get(key string) (Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.custom[key]; ok {
		return c.clone(), true
	}
	for _, e := range builtins {
		if e.Key == key {
			return Category{Name: e.Name, Sets: e.Sets}.clone(), true
		}
	}

	return Category{}, false
}

// Custom returns only the user-authored categories.
func (s *Store) Custom() map[string]Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	custom := make(map[string]Category, len(s.custom))
	for key, c := range s.custom {
		custom[key] = c.clone()
	}
	return custom
}

// IsCustom reports whether key names a custom category.
func (s *Store) IsCustom(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.custom[key]
	return ok
}

// Add inserts or overwrites the custom category at key.
func (s *Store) Add(key, name string, sets [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.custom[key] = Category{Name: name, Sets: sets, IsCustom: true}.clone()
	s.saveLocked()
}

// Update replaces the custom category at key. It does nothing when key is
// not a custom category.
func (s *Store) Update(key, name string, sets [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.custom[key]; !ok {
		return
	}
	s.custom[key] = Category{Name: name, Sets: sets, IsCustom: true}.clone()
	s.saveLocked()
}

// Delete removes the custom category at key, if any.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.custom[key]; !ok {
		return
	}
	delete(s.custom, key)
	s.saveLocked()
}

func (s *Store) saveLocked() {
	storage.SaveJSON(s.kv, CustomCategoriesKey, maps.Clone(s.custom), s.logf)
}
