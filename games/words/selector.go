/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package words

import (
	"slices"

	"github.com/Seednode/wordimposter/internal/random"
)

// Fallback values used when no category can supply a word-set.
const (
	FallbackCategoryName = "Unknown"
	FallbackMainWord     = "Word1"
	FallbackImposterWord = "Word2"
)

// Selection is the word pair dealt for one game.
type Selection struct {
	// CategoryKey is empty for the fallback selection.
	CategoryKey  string   `json:"categoryKey"`
	CategoryName string   `json:"categoryName"`
	MainWord     string   `json:"mainWord"`
	ImposterWord string   `json:"imposterWord"`
	SetWords     []string `json:"setWords"`
}

// Fallback returns the selection used when nothing is eligible.
func Fallback() Selection {
	return Selection{
		CategoryName: FallbackCategoryName,
		MainWord:     FallbackMainWord,
		ImposterWord: FallbackImposterWord,
		SetWords:     []string{FallbackMainWord, FallbackImposterWord},
	}
}

// HasCategory reports whether the selection came from a real category.
func (s Selection) HasCategory() bool {
	return s.CategoryKey != ""
}

// WordFor returns the word shown to a player with the given role.
func (s Selection) WordFor(isImposter bool) string {
	if isImposter {
		return s.ImposterWord
	}
	return s.MainWord
}

// Catalog is what the selector reads categories from.
type Catalog interface {
	All() map[string]Category
	Keys() []string
}

// Selector picks a category, a word-set within it, and the two words.
type Selector struct {
	catalog Catalog
	rng     random.Source
}

// NewSelector creates a selector over catalog using rng.
func NewSelector(catalog Catalog, rng random.Source) *Selector {
	return &Selector{
		catalog: catalog,
		rng:     rng,
	}
}

// Select draws a selection restricted to the given category keys. An empty
// restriction makes every category eligible; a restriction naming no
// existing category yields the fallback.
func (s *Selector) Select(restrict []string) Selection {
	all := s.catalog.All()

	eligible := make([]string, 0, len(restrict))
	for _, key := range restrict {
		if _, ok := all[key]; ok && !slices.Contains(eligible, key) {
			eligible = append(eligible, key)
		}
	}
	if len(restrict) == 0 {
		for _, key := range s.catalog.Keys() {
			if _, ok := all[key]; ok {
				eligible = append(eligible, key)
			}
		}
	}

	if len(eligible) == 0 {
		return Fallback()
	}

	key := eligible[s.rng.IntN(len(eligible))]
	category := all[key]
	if len(category.Sets) == 0 {
		return Fallback()
	}

	set := category.Sets[s.rng.IntN(len(category.Sets))]
	if len(set) == 0 {
		return Fallback()
	}

	shuffled := slices.Clone(set)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	sel := Selection{
		CategoryKey:  key,
		CategoryName: category.Name,
		MainWord:     shuffled[0],
		ImposterWord: shuffled[0],
		SetWords:     slices.Clone(set),
	}
	// Single-word sets can only come from unvalidated data; both roles
	// then share the word.
	if len(shuffled) > 1 {
		sel.ImposterWord = shuffled[1]
	}

	return sel
}
