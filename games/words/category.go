/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package words owns the word categories the game draws from: the
// built-in catalog, user-authored custom categories, and the selector that
// turns them into a main word and an imposter word.
package words

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
)

// Category is a named collection of word-sets sharing a theme. Every
// word-set holds at least two distinct words.
type Category struct {
	Name     string     `json:"name"`
	Sets     [][]string `json:"sets"`
	IsCustom bool       `json:"isCustom"`
}

func (c Category) clone() Category {
	sets := make([][]string, len(c.Sets))
	for i, set := range c.Sets {
		sets[i] = slices.Clone(set)
	}
	c.Sets = sets
	return c
}

type catalogEntry struct {
	Key  string     `json:"key"`
	Name string     `json:"name"`
	Sets [][]string `json:"sets"`
}

//go:embed data/categories.json
var catalogJSON []byte

// builtins is decoded once; the catalog order is preserved so seeded
// selection is reproducible.
var builtins = mustParseCatalog(catalogJSON)

func mustParseCatalog(data []byte) []catalogEntry {
	entries, err := parseCatalog(data)
	if err != nil {
		panic(err)
	}
	return entries
}

func parseCatalog(data []byte) ([]catalogEntry, error) {
	var entries []catalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse built-in categories: %w", err)
	}

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Key == "" || seen[e.Key] {
			return nil, fmt.Errorf("built-in category key %q is empty or duplicated", e.Key)
		}
		seen[e.Key] = true

		for i, set := range e.Sets {
			if len(set) < MinSetSize {
				return nil, fmt.Errorf("built-in category %q set %d has fewer than %d words", e.Key, i, MinSetSize)
			}
		}
	}

	return entries, nil
}

// BuiltinKeys returns the built-in category keys in catalog order.
func BuiltinKeys() []string {
	keys := make([]string, len(builtins))
	for i, e := range builtins {
		keys[i] = e.Key
	}
	return keys
}
