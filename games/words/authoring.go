/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package words

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Seednode/wordimposter/internal/fold"
)

const (
	// MaxNameLength is the default bound on custom category names.
	MaxNameLength = 30

	// MinSetSize is the fewest words a set needs to yield two roles.
	MinSetSize = 2
)

var (
	ErrNameRequired = errors.New("please enter a category name")
	ErrNameTooLong  = errors.New("category name is too long")
	ErrNoValidSets  = errors.New("please add at least one word set (min 2 words per set)")
	ErrNotCustom    = errors.New("category is not a custom category")
)

// ParseSets reads one word-set per line, words separated by commas. Words
// are trimmed, blanks and case-insensitive repeats within a line are
// dropped, and lines left with fewer than two words are skipped.
func ParseSets(text string) [][]string {
	var sets [][]string

	for line := range strings.SplitSeq(text, "\n") {
		seen := make(map[string]bool)
		var set []string

		for word := range strings.SplitSeq(line, ",") {
			word = strings.TrimSpace(word)
			if word == "" {
				continue
			}
			folded := fold.Key(word)
			if seen[folded] {
				continue
			}
			seen[folded] = true
			set = append(set, word)
		}

		if len(set) >= MinSetSize {
			sets = append(sets, set)
		}
	}

	return sets
}

// FormatSets is the inverse of ParseSets, used to prefill edit forms.
func FormatSets(sets [][]string) string {
	lines := make([]string, len(sets))
	for i, set := range sets {
		lines[i] = strings.Join(set, ", ")
	}
	return strings.Join(lines, "\n")
}

// ValidateName trims name and checks it against max characters. A max
// below 1 disables the length check.
func ValidateName(name string, max int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}
	if max > 0 && utf8.RuneCountInString(name) > max {
		return "", fmt.Errorf("%w (max %d characters)", ErrNameTooLong, max)
	}
	return name, nil
}

// NewKey derives a storage key from a category name: lowercased, every
// character outside [a-z0-9] replaced by an underscore, and suffixed with
// the creation time in nanoseconds.
func NewKey(name string, now time.Time) string {
	var b strings.Builder

	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}

	fmt.Fprintf(&b, "_%d", now.UnixNano())

	return b.String()
}

// Create validates a new custom category and stores it under a fresh key.
func (s *Store) Create(name, text string) (string, error) {
	name, sets, err := s.validate(name, text)
	if err != nil {
		return "", err
	}

	now := s.now()
	key := NewKey(name, now)
	for s.exists(key) {
		now = now.Add(time.Nanosecond)
		key = NewKey(name, now)
	}

	s.Add(key, name, sets)

	return key, nil
}

// Edit validates and replaces the custom category at key, keeping the key.
func (s *Store) Edit(key, name, text string) error {
	if !s.IsCustom(key) {
		return ErrNotCustom
	}

	name, sets, err := s.validate(name, text)
	if err != nil {
		return err
	}

	s.Update(key, name, sets)

	return nil
}

// Remove deletes a custom category, rejecting built-in or unknown keys.
func (s *Store) Remove(key string) error {
	if !s.IsCustom(key) {
		return ErrNotCustom
	}

	s.Delete(key)

	return nil
}

func (s *Store) validate(name, text string) (string, [][]string, error) {
	name, err := ValidateName(name, s.maxNameLength)
	if err != nil {
		return "", nil, err
	}

	sets := ParseSets(text)
	if len(sets) == 0 {
		return "", nil, ErrNoValidSets
	}

	return name, sets, nil
}

func (s *Store) exists(key string) bool {
	_, ok := s.Get(key)
	return ok
}
